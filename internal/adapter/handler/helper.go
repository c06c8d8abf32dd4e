package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/errors"
	"github.com/johnquangdev/meeting-processor/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/meeting-processor/internal/usecase/errors"
	"github.com/johnquangdev/meeting-processor/internal/usecase/pipeline"
)

// getRequestID tries to read X-Request-ID from the request or the response
// header set by the RequestID middleware
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized 200 success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return HandleSuccessWithStatus(logger, c, http.StatusOK, data)
}

// HandleSuccessWithStatus writes a standardized success response with status
func HandleSuccessWithStatus(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := common.SuccessResponse{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			level := logger.Warn
			if appErr.HTTPCode >= http.StatusInternalServerError {
				level = logger.Error
			}
			level("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Stringer("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := common.ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := common.ErrorResponse{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// ErrorHandler renders errors returned by handlers and middleware. AppErrors
// keep their code; echo's own errors (404 route, 405, bind failures) are
// mapped onto the same body shape.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			he     *echo.HTTPError
			appErr errors.AppError
		)
		switch {
		case stdErrors.As(err, &appErr):
		case stdErrors.As(err, &he):
			code := errors.ErrorCode_INTERNAL
			switch he.Code {
			case http.StatusNotFound:
				code = errors.ErrorCode_NOT_FOUND
			case http.StatusBadRequest:
				code = errors.ErrorCode_INVALID_PAYLOAD
			case http.StatusUnauthorized:
				code = errors.ErrorCode_UNAUTHENTICATED
			case http.StatusForbidden:
				code = errors.ErrorCode_PERMISSION_DENIED
			}
			err = errors.AppError{
				Raw:      he.Internal,
				HTTPCode: he.Code,
				Code:     code,
				Message:  http.StatusText(he.Code),
			}
		default:
			err = errors.ErrInternal(err)
		}

		if herr := HandleError(logger, c, err); herr != nil && logger != nil {
			logger.Error("failed to write error response", zap.Error(herr))
		}
	}
}

// toAppError maps use case errors onto the HTTP error catalogue
func toAppError(err error, conferenceID string) error {
	var appErr errors.AppError
	switch {
	case stdErrors.As(err, &appErr):
		return err
	case stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrMeetingNotFound),
		stdErrors.Is(err, entities.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(conferenceID)
	case stdErrors.Is(err, usecaseErrors.ErrNoTranscript):
		return errors.ErrInvalidArgument("meeting has no stored transcript").WithDetail("conference_id", conferenceID)
	case pipeline.IsPersistenceError(err):
		return errors.ErrPersistenceFailed(conferenceID, err)
	default:
		return errors.ErrProcessingFailed(conferenceID, err)
	}
}
