package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-processor/internal/domain/repositories"
)

// MemoryMeetingRepository keeps meetings in process memory. It backs
// STORE_DRIVER=memory and the usecase tests.
type MemoryMeetingRepository struct {
	mu       sync.RWMutex
	meetings map[string]*entities.MeetingRecord
}

// NewMemoryMeetingRepository creates an empty in-memory meeting repository
func NewMemoryMeetingRepository() *MemoryMeetingRepository {
	return &MemoryMeetingRepository{meetings: make(map[string]*entities.MeetingRecord)}
}

var _ repo.MeetingRepository = (*MemoryMeetingRepository)(nil)

func (r *MemoryMeetingRepository) UpsertMeeting(ctx context.Context, m *entities.MeetingRecord) error {
	if m == nil {
		return errors.New("meeting cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := r.meetings[m.ConferenceID]
	if ok && existing.Processed {
		return fmt.Errorf("%w: %s", entities.ErrMeetingProcessed, m.ConferenceID)
	}
	if ok {
		m.CreatedAt = existing.CreatedAt
	} else if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	r.meetings[m.ConferenceID] = copyMeeting(m)
	return nil
}

func (r *MemoryMeetingRepository) GetMeeting(ctx context.Context, conferenceID string) (*entities.MeetingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meetings[conferenceID]
	if !ok {
		return nil, nil
	}
	return copyMeeting(m), nil
}

func (r *MemoryMeetingRepository) IsProcessed(ctx context.Context, conferenceID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meetings[conferenceID]
	return ok && m.Processed, nil
}

func (r *MemoryMeetingRepository) ResetMeeting(ctx context.Context, conferenceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetings[conferenceID]
	if !ok {
		return fmt.Errorf("%w: %s", entities.ErrMeetingNotFound, conferenceID)
	}
	m.Processed = false
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryMeetingRepository) ListMeetings(ctx context.Context, filters repo.MeetingFilters) ([]*entities.MeetingRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entities.MeetingRecord
	for _, m := range r.meetings {
		if filters.Processed != nil && m.Processed != *filters.Processed {
			continue
		}
		matched = append(matched, copyMeeting(m))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := int64(len(matched))
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return []*entities.MeetingRecord{}, total, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

// Count returns the number of stored meetings
func (r *MemoryMeetingRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meetings)
}

func copyMeeting(m *entities.MeetingRecord) *entities.MeetingRecord {
	c := *m
	c.Tasks = append([]entities.Task{}, nonNilTasks(m.Tasks)...)
	c.IssueKeys = append([]string{}, nonNilStrings(m.IssueKeys)...)
	c.Participants = append([]string{}, nonNilStrings(m.Participants)...)
	return &c
}

// MemoryLogRepository is an in-memory append-only audit log
type MemoryLogRepository struct {
	mu      sync.Mutex
	entries []*entities.ProcessingLogEntry
}

// NewMemoryLogRepository creates an empty in-memory audit log
func NewMemoryLogRepository() *MemoryLogRepository {
	return &MemoryLogRepository{}
}

var _ repo.ProcessingLogRepository = (*MemoryLogRepository)(nil)

func (r *MemoryLogRepository) AppendLog(ctx context.Context, entry *entities.ProcessingLogEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *entry
	r.entries = append(r.entries, &c)
	return nil
}

// ListLogs returns entries in append order, which matches created_at order
// for a single writer.
func (r *MemoryLogRepository) ListLogs(ctx context.Context, conferenceID string) ([]*entities.ProcessingLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entities.ProcessingLogEntry, 0)
	for _, e := range r.entries {
		if e.ConferenceID == conferenceID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}
