package presenter

import (
	schedulerDTO "github.com/johnquangdev/meeting-processor/internal/adapter/dto/scheduler"
	"github.com/johnquangdev/meeting-processor/internal/usecase/scheduler"
)

// ToSchedulerStatusResponse converts a scheduler status snapshot
func ToSchedulerStatusResponse(s scheduler.Status) *schedulerDTO.StatusResponse {
	return &schedulerDTO.StatusResponse{
		Running:       s.Running,
		Ticking:       s.Ticking,
		LastTickTime:  s.LastTickTime,
		NextTickTime:  s.NextTickTime,
		LastError:     s.LastError,
		PollInterval:  s.PollInterval.String(),
		MaxConcurrent: s.MaxConcurrent,
		InFlight:      s.InFlight,
		TotalTicks:    s.TotalTicks,
	}
}
