package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/errors"
	meetingDTO "github.com/johnquangdev/meeting-processor/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-processor/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-processor/internal/domain/repositories"
	meetingUsecase "github.com/johnquangdev/meeting-processor/internal/usecase/meeting"
)

// Meeting handles meeting processing and query requests
type Meeting struct {
	meetingService meetingUsecase.Service
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService meetingUsecase.Service, logger *zap.Logger) *Meeting {
	return &Meeting{
		meetingService: meetingService,
		logger:         logger,
	}
}

// ProcessMeeting handles POST /meetings/process
// @Summary      Process a meeting
// @Description  Runs the processing pipeline for a submitted transcript. Returns the stored record; a run that hit a stage failure still returns 200 with processing_error set.
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meeting.ProcessMeetingRequest  true  "Meeting to process"
// @Success      200      {object}  meeting.ProcessMeetingResponse  "processed or already_completed"
// @Success      202      {object}  meeting.ProcessMeetingResponse  "in_flight"
// @Failure      400      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse  "Persistence failed"
// @Router       /meetings/process [post]
func (h *Meeting) ProcessMeeting(c echo.Context) error {
	var req meetingDTO.ProcessMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	res, err := h.meetingService.Process(c.Request().Context(), meetingUsecase.ProcessInput{
		ConferenceID: req.ConferenceID,
		Transcript:   req.Transcript,
		MeetingTitle: req.MeetingTitle,
		Participants: req.Participants,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, req.ConferenceID))
	}
	return h.respondResult(c, res)
}

// ReprocessMeeting handles POST /meetings/:id/reprocess
// @Summary      Reprocess a meeting
// @Description  Clears the processed flag of a stored meeting and runs the pipeline again over its transcript
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conference ID"
// @Success      200  {object}  meeting.ProcessMeetingResponse
// @Success      202  {object}  meeting.ProcessMeetingResponse  "in_flight"
// @Failure      404  {object}  common.ErrorResponse
// @Failure      500  {object}  common.ErrorResponse
// @Router       /meetings/{id}/reprocess [post]
func (h *Meeting) ReprocessMeeting(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("conference id is required"))
	}

	res, err := h.meetingService.Reprocess(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, id))
	}
	return h.respondResult(c, res)
}

// GetMeeting handles GET /meetings/:id
// @Summary      Get meeting
// @Description  Gets the stored record of one meeting
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conference ID"
// @Success      200  {object}  meeting.MeetingResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id} [get]
func (h *Meeting) GetMeeting(c echo.Context) error {
	id := c.Param("id")
	m, err := h.meetingService.GetMeeting(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, id))
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(m))
}

// ListMeetings handles GET /meetings
// @Summary      List meetings
// @Description  Gets a paginated list of meetings, most recently updated first
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int   false  "Page number (default: 1)"
// @Param        page_size  query     int   false  "Items per page (default: 20)"
// @Param        processed  query     bool  false  "Filter by processed flag"
// @Success      200        {object}  meeting.MeetingListResponse
// @Failure      400        {object}  common.ErrorResponse
// @Router       /meetings [get]
func (h *Meeting) ListMeetings(c echo.Context) error {
	var req meetingDTO.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	// Set defaults
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	filters := repositories.MeetingFilters{
		Processed: req.ProcessedFilter(),
		Limit:     req.PageSize,
		Offset:    (req.Page - 1) * req.PageSize,
	}
	meetings, total, err := h.meetingService.ListMeetings(c.Request().Context(), filters)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list meetings", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingListResponse(meetings, total, req.Page, req.PageSize))
}

// ListLogs handles GET /meetings/:id/logs
// @Summary      Meeting audit trail
// @Description  Gets the processing log entries of a meeting in the order they were written
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conference ID"
// @Success      200  {object}  meeting.ProcessingLogListResponse
// @Router       /meetings/{id}/logs [get]
func (h *Meeting) ListLogs(c echo.Context) error {
	id := c.Param("id")
	logs, err := h.meetingService.ListLogs(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list processing logs", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToProcessingLogListResponse(id, logs))
}

func (h *Meeting) respondResult(c echo.Context, res *meetingUsecase.Result) error {
	status := http.StatusOK
	if res.Outcome == meetingUsecase.OutcomeInFlight {
		status = http.StatusAccepted
	}
	return HandleSuccessWithStatus(h.logger, c, status, presenter.ToProcessMeetingResponse(res))
}
