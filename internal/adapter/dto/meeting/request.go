package meeting

// ProcessMeetingRequest is the manual trigger payload
type ProcessMeetingRequest struct {
	ConferenceID string   `json:"conference_id" validate:"required,notblank,max=255"`
	Transcript   string   `json:"transcript" validate:"required,notblank"`
	MeetingTitle string   `json:"meeting_title" validate:"max=500"`
	Participants []string `json:"participants" validate:"omitempty,dive,max=255"`
}

// ListMeetingsRequest represents query parameters for listing meetings
type ListMeetingsRequest struct {
	Processed string `query:"processed" validate:"omitempty,oneof=true false"`
	Page      int    `query:"page" validate:"min=1"`
	PageSize  int    `query:"page_size" validate:"min=1,max=100"`
}

// ProcessedFilter returns the processed filter, nil when not given
func (r ListMeetingsRequest) ProcessedFilter() *bool {
	if r.Processed == "" {
		return nil
	}
	v := r.Processed == "true"
	return &v
}
