package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-processor/internal/adapter/dto/common"
)

// TaskResponse is one extracted action item
type TaskResponse struct {
	Title    string  `json:"title"`
	Assignee *string `json:"assignee"`
	DueDate  *string `json:"due_date"`
}

// MeetingResponse represents a stored meeting record
type MeetingResponse struct {
	ConferenceID    string          `json:"conference_id"`
	Title           string          `json:"title"`
	Transcript      string          `json:"transcript,omitempty"`
	Summary         *string         `json:"summary"`
	Tasks           []*TaskResponse `json:"tasks"`
	IssueKeys       []string        `json:"issue_keys"`
	Participants    []string        `json:"participants"`
	StartTime       *time.Time      `json:"start_time,omitempty"`
	EndTime         *time.Time      `json:"end_time,omitempty"`
	Processed       bool            `json:"processed"`
	ProcessingError *string         `json:"processing_error"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProcessMeetingResponse reports what a process or reprocess request did.
// Meeting is null when the outcome is in_flight.
type ProcessMeetingResponse struct {
	Outcome string           `json:"outcome"`
	Meeting *MeetingResponse `json:"meeting"`
}

// MeetingListResponse represents a paginated list of meetings
type MeetingListResponse struct {
	Meetings   []*MeetingResponse         `json:"meetings"`
	Pagination *common.PaginationResponse `json:"pagination"`
}

// ProcessingLogResponse is one audit trail entry
type ProcessingLogResponse struct {
	ID        string                 `json:"id"`
	Step      string                 `json:"step"`
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ProcessingLogListResponse is the audit trail of one meeting
type ProcessingLogListResponse struct {
	ConferenceID string                   `json:"conference_id"`
	Logs         []*ProcessingLogResponse `json:"logs"`
}
