package jobcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyConferenceID KeyContext = "conference_id"
	keyTrigger      KeyContext = "trigger"
	keyWorkerID     KeyContext = "worker_id"
	keyRunStartTime KeyContext = "run_start_time"
)

// Trigger names the path that started a pipeline run
const (
	TriggerScheduler = "scheduler"
	TriggerManual    = "manual"
	TriggerReprocess = "reprocess"
)

// RunMetadata holds metadata for one pipeline run
type RunMetadata struct {
	RunID        uuid.UUID
	ConferenceID string
	Trigger      string
	WorkerID     int
	StartTime    time.Time
}

// RunBegin derives a run context carrying metadata. Cancellation of parent
// is not inherited, so a started run always reaches STORE. maxDuration
// bounds the whole run; zero means unbounded.
func RunBegin(parentCtx context.Context, conferenceID, trigger string, workerID int, maxDuration time.Duration) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(parentCtx)
	cancel := context.CancelFunc(func() {})
	if maxDuration > 0 {
		ctx, cancel = context.WithTimeout(ctx, maxDuration)
	}

	ctx = context.WithValue(ctx, keyRunID, uuid.New())
	ctx = context.WithValue(ctx, keyConferenceID, conferenceID)
	ctx = context.WithValue(ctx, keyTrigger, trigger)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())

	return ctx, cancel
}

// RunEnd executes runFunc exactly once, converting a panic into an error
func RunEnd(ctx context.Context, runFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before run: %w", ctx.Err())
	}

	return runFunc(ctx)
}

// GetRunID extracts run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetConferenceID extracts the conference id from context
func GetConferenceID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(keyConferenceID).(string)
	return id, ok
}

// GetTrigger extracts the trigger name from context
func GetTrigger(ctx context.Context) (string, bool) {
	trigger, ok := ctx.Value(keyTrigger).(string)
	return trigger, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRunStartTime extracts run start time from context
func GetRunStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyRunStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	conferenceID, _ := GetConferenceID(ctx)
	trigger, _ := GetTrigger(ctx)
	startTime, _ := GetRunStartTime(ctx)

	return &RunMetadata{
		RunID:        runID,
		ConferenceID: conferenceID,
		Trigger:      trigger,
		WorkerID:     GetWorkerID(ctx),
		StartTime:    startTime,
	}
}
