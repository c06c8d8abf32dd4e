package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/internal/domain/repositories"
)

type summarizeFunc func(ctx context.Context, transcript string) (string, error)

func (f summarizeFunc) Summarize(ctx context.Context, transcript string) (string, error) {
	return f(ctx, transcript)
}

type extractFunc func(ctx context.Context, transcript, summary string) (string, error)

func (f extractFunc) ExtractTasks(ctx context.Context, transcript, summary string) (string, error) {
	return f(ctx, transcript, summary)
}

// fakeTracker hands out sequential keys and fails the task indexes in failOn
type fakeTracker struct {
	mu       sync.Mutex
	failOn   map[int]bool
	panicOn  map[int]bool
	requests []IssueRequest
}

func (f *fakeTracker) CreateIssue(ctx context.Context, req IssueRequest) (string, error) {
	f.mu.Lock()
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.panicOn[idx] {
		panic("tracker exploded")
	}
	if f.failOn[idx] {
		return "", fmt.Errorf("jira returned status 500")
	}
	return fmt.Sprintf("MEET-%d", idx+1), nil
}

// faultyMeetings fails every upsert with err, or with the context error when
// the upsert context is already done.
type faultyMeetings struct {
	repositories.MeetingRepository
	err error
}

func (f *faultyMeetings) UpsertMeeting(ctx context.Context, m *entities.MeetingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	return f.MeetingRepository.UpsertMeeting(ctx, m)
}
