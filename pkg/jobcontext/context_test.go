package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBegin_Metadata(t *testing.T) {
	ctx, cancel := RunBegin(context.Background(), "conf-1", TriggerScheduler, 3, time.Minute)
	defer cancel()

	md := GetRunMetadata(ctx)
	assert.NotEqual(t, uuid.Nil, md.RunID)
	assert.Equal(t, "conf-1", md.ConferenceID)
	assert.Equal(t, TriggerScheduler, md.Trigger)
	assert.Equal(t, 3, md.WorkerID)
	assert.False(t, md.StartTime.IsZero())

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestRunBegin_IgnoresParentCancellation(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := RunBegin(parent, "conf-1", TriggerManual, 0, 0)
	defer cancel()

	cancelParent()
	assert.NoError(t, ctx.Err())
}

func TestRunEnd_RecoversPanic(t *testing.T) {
	err := RunEnd(context.Background(), func(context.Context) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered: boom")
}

func TestRunEnd_RunsOnce(t *testing.T) {
	calls := 0
	want := errors.New("failed")
	err := RunEnd(context.Background(), func(context.Context) error {
		calls++
		return want
	})
	assert.ErrorIs(t, err, want)
	assert.Equal(t, 1, calls)
}

func TestRunEnd_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RunEnd(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestGetWorkerID_Default(t *testing.T) {
	assert.Equal(t, -1, GetWorkerID(context.Background()))
}
