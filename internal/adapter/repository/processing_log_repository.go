package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-processor/internal/domain/repositories"
)

type processingLogRepository struct {
	db *gorm.DB
}

// NewProcessingLogRepository creates an append-only audit log backed by GORM
func NewProcessingLogRepository(db *gorm.DB) repo.ProcessingLogRepository {
	return &processingLogRepository{db: db}
}

func (r *processingLogRepository) AppendLog(ctx context.Context, entry *entities.ProcessingLogEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *processingLogRepository) ListLogs(ctx context.Context, conferenceID string) ([]*entities.ProcessingLogEntry, error) {
	var entries []*entities.ProcessingLogEntry
	err := r.db.WithContext(ctx).
		Where("conference_id = ?", conferenceID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func validateEntry(entry *entities.ProcessingLogEntry) error {
	if entry == nil {
		return errors.New("log entry cannot be nil")
	}
	if entry.ConferenceID == "" {
		return entities.ErrInvalidConferenceID
	}
	if !entry.Step.Valid() {
		return fmt.Errorf("%w: %q", entities.ErrInvalidProcessingStep, entry.Step)
	}
	return nil
}
