package entities

import (
	"strings"
	"time"
)

// MeetingRecord is the durable result of processing one meeting
type MeetingRecord struct {
	ConferenceID    string     `json:"conference_id" gorm:"type:varchar(255);primaryKey"`
	Title           string     `json:"title" gorm:"type:varchar(500)"`
	Transcript      string     `json:"transcript" gorm:"type:text"`
	Summary         *string    `json:"summary" gorm:"type:text"`
	Tasks           []Task     `json:"tasks" gorm:"type:jsonb;serializer:json;not null"`
	IssueKeys       []string   `json:"issue_keys" gorm:"type:jsonb;serializer:json;not null"`
	Participants    []string   `json:"participants" gorm:"type:jsonb;serializer:json;not null"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Processed       bool       `json:"processed" gorm:"not null;default:false;index"`
	ProcessingError *string    `json:"processing_error" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (MeetingRecord) TableName() string {
	return "meetings"
}

// NewMeetingRecord creates an unprocessed record with empty artifact slices
func NewMeetingRecord(conferenceID, title, transcript string, participants []string) *MeetingRecord {
	return &MeetingRecord{
		ConferenceID: conferenceID,
		Title:        title,
		Transcript:   transcript,
		Tasks:        []Task{},
		IssueKeys:    []string{},
		Participants: NormalizeParticipants(participants),
	}
}

// NormalizeParticipants trims names and drops blanks and duplicates,
// keeping first-seen order.
func NormalizeParticipants(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Candidate is an ended meeting whose transcript is ready for processing
type Candidate struct {
	ConferenceID string     `json:"conference_id"`
	Title        string     `json:"title"`
	Transcript   string     `json:"transcript"`
	Participants []string   `json:"participants"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

// Validate checks the fields a pipeline run cannot do without
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.ConferenceID) == "" {
		return ErrInvalidConferenceID
	}
	if strings.TrimSpace(c.Transcript) == "" {
		return ErrEmptyTranscript
	}
	return nil
}

// Record builds the in-memory record a pipeline run starts from
func (c Candidate) Record() *MeetingRecord {
	m := NewMeetingRecord(c.ConferenceID, c.Title, c.Transcript, c.Participants)
	m.StartTime = c.StartTime
	m.EndTime = c.EndTime
	return m
}

// CandidateFromRecord rebuilds the pipeline input of a stored meeting
func CandidateFromRecord(m *MeetingRecord) Candidate {
	return Candidate{
		ConferenceID: m.ConferenceID,
		Title:        m.Title,
		Transcript:   m.Transcript,
		Participants: m.Participants,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
	}
}
