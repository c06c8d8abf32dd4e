package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-processor/internal/domain/repositories"
	"github.com/johnquangdev/meeting-processor/internal/infrastructure/cache"
)

// cachedMeetingRepository answers IsProcessed from a completion cache before
// falling back to the wrapped repository. Cache failures degrade to the
// database path and are only logged.
type cachedMeetingRepository struct {
	repo.MeetingRepository
	cache  cache.CompletionCache
	logger *zap.Logger
}

// NewCachedMeetingRepository decorates inner with a completion cache
func NewCachedMeetingRepository(inner repo.MeetingRepository, c cache.CompletionCache, logger *zap.Logger) repo.MeetingRepository {
	return &cachedMeetingRepository{MeetingRepository: inner, cache: c, logger: logger}
}

func (r *cachedMeetingRepository) IsProcessed(ctx context.Context, conferenceID string) (bool, error) {
	hit, err := r.cache.IsCompleted(ctx, conferenceID)
	if err != nil {
		r.warn("completion cache read failed", conferenceID, err)
	} else if hit {
		return true, nil
	}

	processed, err := r.MeetingRepository.IsProcessed(ctx, conferenceID)
	if err != nil {
		return false, err
	}
	if processed {
		if err := r.cache.MarkCompleted(ctx, conferenceID); err != nil {
			r.warn("completion cache write failed", conferenceID, err)
		}
	}
	return processed, nil
}

func (r *cachedMeetingRepository) UpsertMeeting(ctx context.Context, m *entities.MeetingRecord) error {
	if err := r.MeetingRepository.UpsertMeeting(ctx, m); err != nil {
		return err
	}
	if m.Processed {
		if err := r.cache.MarkCompleted(ctx, m.ConferenceID); err != nil {
			r.warn("completion cache write failed", m.ConferenceID, err)
		}
	}
	return nil
}

// ResetMeeting drops the cache mark first so a concurrent IsProcessed cannot
// re-populate it from a stale row after the reset.
func (r *cachedMeetingRepository) ResetMeeting(ctx context.Context, conferenceID string) error {
	if err := r.cache.Forget(ctx, conferenceID); err != nil {
		r.warn("completion cache delete failed", conferenceID, err)
	}
	if err := r.MeetingRepository.ResetMeeting(ctx, conferenceID); err != nil {
		return err
	}
	if err := r.cache.Forget(ctx, conferenceID); err != nil {
		r.warn("completion cache delete failed", conferenceID, err)
	}
	return nil
}

func (r *cachedMeetingRepository) warn(msg, conferenceID string, err error) {
	if r.logger != nil {
		r.logger.Warn(msg, zap.String("conference_id", conferenceID), zap.Error(err))
	}
}
