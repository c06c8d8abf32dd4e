package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-processor/internal/domain/repositories"
	"github.com/johnquangdev/meeting-processor/internal/infrastructure/cache"
)

func strPtr(s string) *string { return &s }

func TestMemoryMeetingRepository_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryMeetingRepository()

	m := entities.NewMeetingRecord("conf-1", "Sync", "hello", []string{"a"})
	require.NoError(t, r.UpsertMeeting(ctx, m))

	got, err := r.GetMeeting(ctx, "conf-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sync", got.Title)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := r.GetMeeting(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryMeetingRepository_ProcessedIsImmutable(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryMeetingRepository()

	m := entities.NewMeetingRecord("conf-1", "Sync", "hello", nil)
	m.Summary = strPtr("first")
	m.Processed = true
	require.NoError(t, r.UpsertMeeting(ctx, m))

	again := entities.NewMeetingRecord("conf-1", "Sync", "hello", nil)
	again.Summary = strPtr("second")
	err := r.UpsertMeeting(ctx, again)
	assert.ErrorIs(t, err, entities.ErrMeetingProcessed)

	got, _ := r.GetMeeting(ctx, "conf-1")
	assert.Equal(t, "first", *got.Summary)

	require.NoError(t, r.ResetMeeting(ctx, "conf-1"))
	require.NoError(t, r.UpsertMeeting(ctx, again))
	got, _ = r.GetMeeting(ctx, "conf-1")
	assert.Equal(t, "second", *got.Summary)
}

func TestMemoryMeetingRepository_ResetUnknown(t *testing.T) {
	err := NewMemoryMeetingRepository().ResetMeeting(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
}

func TestMemoryMeetingRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryMeetingRepository()
	require.NoError(t, r.UpsertMeeting(ctx, entities.NewMeetingRecord("conf-1", "", "t", nil)))

	got, _ := r.GetMeeting(ctx, "conf-1")
	got.IssueKeys = append(got.IssueKeys, "X-1")

	again, _ := r.GetMeeting(ctx, "conf-1")
	assert.Empty(t, again.IssueKeys)
}

func TestMemoryMeetingRepository_List(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryMeetingRepository()
	for i, id := range []string{"a", "b", "c"} {
		m := entities.NewMeetingRecord(id, "", "t", nil)
		m.Processed = i%2 == 0
		require.NoError(t, r.UpsertMeeting(ctx, m))
		time.Sleep(time.Millisecond)
	}

	all, total, err := r.ListMeetings(ctx, repo.MeetingFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "c", all[0].ConferenceID)

	processed := true
	done, total, err := r.ListMeetings(ctx, repo.MeetingFilters{Processed: &processed, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, done, 1)

	page, _, err := r.ListMeetings(ctx, repo.MeetingFilters{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryLogRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryLogRepository()

	require.NoError(t, r.AppendLog(ctx, entities.NewProcessingLogEntry("conf-1", entities.StageSummarize, entities.LogStatusSuccess, "ok", nil)))
	require.NoError(t, r.AppendLog(ctx, entities.NewProcessingLogEntry("conf-2", entities.StageSummarize, entities.LogStatusFailed, "boom", nil)))
	require.NoError(t, r.AppendLog(ctx, entities.NewProcessingLogEntry("conf-1", entities.StageExtract, entities.LogStatusSuccess, "ok", map[string]interface{}{"tasks": 1})))

	logs, err := r.ListLogs(ctx, "conf-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, entities.StageSummarize, logs[0].Step)
	assert.Equal(t, entities.StageExtract, logs[1].Step)

	err = r.AppendLog(ctx, entities.NewProcessingLogEntry("conf-1", entities.Stage("PUBLISH"), entities.LogStatusSuccess, "", nil))
	assert.ErrorIs(t, err, entities.ErrInvalidProcessingStep)
}

type countingRepo struct {
	*MemoryMeetingRepository
	isProcessedCalls int
}

func (c *countingRepo) IsProcessed(ctx context.Context, id string) (bool, error) {
	c.isProcessedCalls++
	return c.MemoryMeetingRepository.IsProcessed(ctx, id)
}

type failingCache struct{}

func (failingCache) IsCompleted(context.Context, string) (bool, error) {
	return false, errors.New("down")
}
func (failingCache) MarkCompleted(context.Context, string) error { return errors.New("down") }
func (failingCache) Forget(context.Context, string) error        { return errors.New("down") }

func TestCachedMeetingRepository_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{MemoryMeetingRepository: NewMemoryMeetingRepository()}
	store := cache.NewMemoryStore(time.Hour)
	defer store.Close()
	r := NewCachedMeetingRepository(inner, store, nil)

	m := entities.NewMeetingRecord("conf-1", "", "t", nil)
	m.Processed = true
	require.NoError(t, r.UpsertMeeting(ctx, m))

	done, err := r.IsProcessed(ctx, "conf-1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Zero(t, inner.isProcessedCalls)

	require.NoError(t, r.ResetMeeting(ctx, "conf-1"))
	done, err = r.IsProcessed(ctx, "conf-1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, inner.isProcessedCalls)
}

func TestCachedMeetingRepository_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryMeetingRepository()
	r := NewCachedMeetingRepository(inner, failingCache{}, nil)

	m := entities.NewMeetingRecord("conf-1", "", "t", nil)
	m.Processed = true
	require.NoError(t, r.UpsertMeeting(ctx, m))

	done, err := r.IsProcessed(ctx, "conf-1")
	require.NoError(t, err)
	assert.True(t, done)
}
