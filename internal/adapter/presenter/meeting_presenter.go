package presenter

import (
	"github.com/johnquangdev/meeting-processor/internal/adapter/dto/common"
	meetingDTO "github.com/johnquangdev/meeting-processor/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/meeting-processor/internal/usecase/meeting"
)

// ToMeetingResponse converts a MeetingRecord entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.MeetingRecord) *meetingDTO.MeetingResponse {
	if m == nil {
		return nil
	}

	tasks := make([]*meetingDTO.TaskResponse, len(m.Tasks))
	for i, t := range m.Tasks {
		tasks[i] = ToTaskResponse(t)
	}

	return &meetingDTO.MeetingResponse{
		ConferenceID:    m.ConferenceID,
		Title:           m.Title,
		Transcript:      m.Transcript,
		Summary:         m.Summary,
		Tasks:           tasks,
		IssueKeys:       nonNil(m.IssueKeys),
		Participants:    nonNil(m.Participants),
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		Processed:       m.Processed,
		ProcessingError: m.ProcessingError,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToTaskResponse converts a Task to its wire shape
func ToTaskResponse(t entities.Task) *meetingDTO.TaskResponse {
	resp := &meetingDTO.TaskResponse{
		Title:    t.Title,
		Assignee: t.Assignee,
	}
	if t.DueDate != nil {
		d := t.DueDate.String()
		resp.DueDate = &d
	}
	return resp
}

// ToProcessMeetingResponse converts a guarded run result
func ToProcessMeetingResponse(res *meetingUsecase.Result) *meetingDTO.ProcessMeetingResponse {
	if res == nil {
		return nil
	}
	return &meetingDTO.ProcessMeetingResponse{
		Outcome: string(res.Outcome),
		Meeting: ToMeetingResponse(res.Meeting),
	}
}

// ToMeetingListResponse converts a page of records. Transcripts are left out
// of listings.
func ToMeetingListResponse(meetings []*entities.MeetingRecord, total int64, page, pageSize int) *meetingDTO.MeetingListResponse {
	items := make([]*meetingDTO.MeetingResponse, len(meetings))
	for i, m := range meetings {
		items[i] = ToMeetingResponse(m)
		if items[i] != nil {
			items[i].Transcript = ""
		}
	}

	return &meetingDTO.MeetingListResponse{
		Meetings:   items,
		Pagination: common.NewPagination(page, pageSize, total),
	}
}

// ToProcessingLogListResponse converts the audit trail of one meeting
func ToProcessingLogListResponse(conferenceID string, logs []*entities.ProcessingLogEntry) *meetingDTO.ProcessingLogListResponse {
	items := make([]*meetingDTO.ProcessingLogResponse, 0, len(logs))
	for _, l := range logs {
		if l == nil {
			continue
		}
		items = append(items, &meetingDTO.ProcessingLogResponse{
			ID:        l.ID.String(),
			Step:      string(l.Step),
			Status:    string(l.Status),
			Message:   l.Message,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		})
	}
	return &meetingDTO.ProcessingLogListResponse{
		ConferenceID: conferenceID,
		Logs:         items,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
