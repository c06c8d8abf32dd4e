package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/internal/domain/repositories"
)

// auditLog appends stage transitions to the processing log. Append failures
// are logged and swallowed so the audit sink can never abort a run.
type auditLog struct {
	repo   repositories.ProcessingLogRepository
	logger *zap.Logger
}

func (a *auditLog) record(ctx context.Context, conferenceID string, stage entities.Stage, status entities.LogStatus, message string, metadata map[string]interface{}) {
	entry := entities.NewProcessingLogEntry(conferenceID, stage, status, message, metadata)

	if a.logger != nil {
		fields := []zap.Field{
			zap.String("conference_id", conferenceID),
			zap.String("step", string(stage)),
			zap.String("status", string(status)),
			zap.String("message", message),
		}
		switch status {
		case entities.LogStatusFailed:
			a.logger.Warn("pipeline.stage", fields...)
		default:
			a.logger.Info("pipeline.stage", fields...)
		}
	}

	if a.repo == nil {
		return
	}
	if err := a.repo.AppendLog(context.WithoutCancel(ctx), entry); err != nil && a.logger != nil {
		a.logger.Error("failed to append processing log",
			zap.String("conference_id", conferenceID),
			zap.String("step", string(stage)),
			zap.Error(err),
		)
	}
}
