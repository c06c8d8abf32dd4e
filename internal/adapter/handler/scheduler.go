package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/errors"
	schedulerDTO "github.com/johnquangdev/meeting-processor/internal/adapter/dto/scheduler"
	"github.com/johnquangdev/meeting-processor/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-processor/internal/usecase/scheduler"
)

// SchedulerController is the control surface of the polling scheduler
type SchedulerController interface {
	Start()
	Stop()
	Trigger() bool
	Status() scheduler.Status
	ClearCache() int
}

// Scheduler handles scheduler control requests
type Scheduler struct {
	scheduler SchedulerController
	logger    *zap.Logger
}

// NewSchedulerHandler creates a new scheduler handler. A nil controller makes
// every route answer 503.
func NewSchedulerHandler(s SchedulerController, logger *zap.Logger) *Scheduler {
	return &Scheduler{scheduler: s, logger: logger}
}

// Start handles POST /scheduler/start
// @Summary      Start scheduler
// @Tags         Scheduler
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  scheduler.StatusResponse
// @Failure      503  {object}  common.ErrorResponse
// @Router       /scheduler/start [post]
func (h *Scheduler) Start(c echo.Context) error {
	if h.scheduler == nil {
		return HandleError(h.logger, c, errors.ErrSchedulerUnavailable())
	}
	h.scheduler.Start()
	return HandleSuccess(h.logger, c, presenter.ToSchedulerStatusResponse(h.scheduler.Status()))
}

// Stop handles POST /scheduler/stop. It returns after the running tick, if
// any, has finished.
// @Summary      Stop scheduler
// @Tags         Scheduler
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  scheduler.StatusResponse
// @Failure      503  {object}  common.ErrorResponse
// @Router       /scheduler/stop [post]
func (h *Scheduler) Stop(c echo.Context) error {
	if h.scheduler == nil {
		return HandleError(h.logger, c, errors.ErrSchedulerUnavailable())
	}
	h.scheduler.Stop()
	return HandleSuccess(h.logger, c, presenter.ToSchedulerStatusResponse(h.scheduler.Status()))
}

// Trigger handles POST /scheduler/trigger
// @Summary      Trigger a tick
// @Description  Starts one tick in the background. A tick already in progress absorbs the request.
// @Tags         Scheduler
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  scheduler.TriggerResponse
// @Failure      503  {object}  common.ErrorResponse
// @Router       /scheduler/trigger [post]
func (h *Scheduler) Trigger(c echo.Context) error {
	if h.scheduler == nil {
		return HandleError(h.logger, c, errors.ErrSchedulerUnavailable())
	}
	resp := schedulerDTO.TriggerResponse{Triggered: h.scheduler.Trigger(), Message: "tick started"}
	if !resp.Triggered {
		resp.Message = "tick already in progress"
	}
	return HandleSuccess(h.logger, c, resp)
}

// Status handles GET /scheduler/status
// @Summary      Scheduler status
// @Tags         Scheduler
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  scheduler.StatusResponse
// @Failure      503  {object}  common.ErrorResponse
// @Router       /scheduler/status [get]
func (h *Scheduler) Status(c echo.Context) error {
	if h.scheduler == nil {
		return HandleError(h.logger, c, errors.ErrSchedulerUnavailable())
	}
	return HandleSuccess(h.logger, c, presenter.ToSchedulerStatusResponse(h.scheduler.Status()))
}

// ClearCache handles POST /scheduler/clear-cache
// @Summary      Clear in-flight cache
// @Description  Drops every in-flight marker so stuck meetings become eligible again
// @Tags         Scheduler
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  scheduler.ClearCacheResponse
// @Failure      503  {object}  common.ErrorResponse
// @Router       /scheduler/clear-cache [post]
func (h *Scheduler) ClearCache(c echo.Context) error {
	if h.scheduler == nil {
		return HandleError(h.logger, c, errors.ErrSchedulerUnavailable())
	}
	cleared := h.scheduler.ClearCache()
	if h.logger != nil {
		h.logger.Warn("🧹 in-flight cache cleared", zap.Int("cleared", cleared))
	}
	return HandleSuccess(h.logger, c, schedulerDTO.ClearCacheResponse{Cleared: cleared})
}
