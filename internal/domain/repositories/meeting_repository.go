package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
)

// MeetingFilters holds filtering options for listing meetings
type MeetingFilters struct {
	Processed *bool
	Limit     int
	Offset    int
}

// MeetingRepository is the persistence contract for meeting records
type MeetingRepository interface {
	// UpsertMeeting inserts or updates the record keyed by conference_id.
	// A record already stored with processed = true is left untouched and
	// entities.ErrMeetingProcessed is returned.
	UpsertMeeting(ctx context.Context, meeting *entities.MeetingRecord) error

	// GetMeeting returns nil, nil when no record exists
	GetMeeting(ctx context.Context, conferenceID string) (*entities.MeetingRecord, error)

	// IsProcessed reports the durable processed flag; false for unknown ids
	IsProcessed(ctx context.Context, conferenceID string) (bool, error)

	// ResetMeeting clears the processed flag so the record can be rewritten
	ResetMeeting(ctx context.Context, conferenceID string) error

	// ListMeetings returns records ordered by updated_at descending
	ListMeetings(ctx context.Context, filters MeetingFilters) ([]*entities.MeetingRecord, int64, error)
}

// ProcessingLogRepository is the append-only audit sink
type ProcessingLogRepository interface {
	AppendLog(ctx context.Context, entry *entities.ProcessingLogEntry) error

	// ListLogs returns entries ordered by created_at ascending
	ListLogs(ctx context.Context, conferenceID string) ([]*entities.ProcessingLogEntry, error)
}
