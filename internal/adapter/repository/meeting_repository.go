package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-processor/internal/domain/repositories"
)

type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a meeting repository backed by GORM
func NewMeetingRepository(db *gorm.DB) repo.MeetingRepository {
	return &meetingRepository{db: db}
}

// upsertMeetingSQL refuses to overwrite a row already marked processed;
// ResetMeeting is the only way back.
const upsertMeetingSQL = `INSERT INTO meetings (conference_id, title, transcript, summary, tasks, issue_keys, participants, start_time, end_time, processed, processing_error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?::jsonb, ?::jsonb, ?::jsonb, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (conference_id) DO UPDATE SET
		title = EXCLUDED.title,
		transcript = EXCLUDED.transcript,
		summary = EXCLUDED.summary,
		tasks = EXCLUDED.tasks,
		issue_keys = EXCLUDED.issue_keys,
		participants = EXCLUDED.participants,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		processed = EXCLUDED.processed,
		processing_error = EXCLUDED.processing_error,
		updated_at = EXCLUDED.updated_at
	WHERE meetings.processed = false`

func (r *meetingRepository) UpsertMeeting(ctx context.Context, m *entities.MeetingRecord) error {
	if m == nil {
		return errors.New("meeting cannot be nil")
	}

	tasks, err := json.Marshal(nonNilTasks(m.Tasks))
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	issueKeys, err := json.Marshal(nonNilStrings(m.IssueKeys))
	if err != nil {
		return fmt.Errorf("failed to encode issue keys: %w", err)
	}
	participants, err := json.Marshal(nonNilStrings(m.Participants))
	if err != nil {
		return fmt.Errorf("failed to encode participants: %w", err)
	}

	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	res := r.db.WithContext(ctx).Exec(upsertMeetingSQL,
		m.ConferenceID, m.Title, m.Transcript, m.Summary,
		string(tasks), string(issueKeys), string(participants),
		m.StartTime, m.EndTime, m.Processed, m.ProcessingError,
		m.CreatedAt, m.UpdatedAt,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", entities.ErrMeetingProcessed, m.ConferenceID)
	}
	return nil
}

func (r *meetingRepository) GetMeeting(ctx context.Context, conferenceID string) (*entities.MeetingRecord, error) {
	var m entities.MeetingRecord
	if err := r.db.WithContext(ctx).Where("conference_id = ?", conferenceID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *meetingRepository) IsProcessed(ctx context.Context, conferenceID string) (bool, error) {
	var processed []bool
	err := r.db.WithContext(ctx).
		Model(&entities.MeetingRecord{}).
		Where("conference_id = ?", conferenceID).
		Limit(1).
		Pluck("processed", &processed).Error
	if err != nil {
		return false, err
	}
	return len(processed) == 1 && processed[0], nil
}

func (r *meetingRepository) ResetMeeting(ctx context.Context, conferenceID string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.MeetingRecord{}).
		Where("conference_id = ?", conferenceID).
		Updates(map[string]interface{}{
			"processed":  false,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", entities.ErrMeetingNotFound, conferenceID)
	}
	return nil
}

func (r *meetingRepository) ListMeetings(ctx context.Context, filters repo.MeetingFilters) ([]*entities.MeetingRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.MeetingRecord{})
	if filters.Processed != nil {
		query = query.Where("processed = ?", *filters.Processed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var meetings []*entities.MeetingRecord
	if err := query.Order("updated_at DESC").Find(&meetings).Error; err != nil {
		return nil, 0, err
	}
	return meetings, total, nil
}

func nonNilTasks(in []entities.Task) []entities.Task {
	if in == nil {
		return []entities.Task{}
	}
	return in
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
