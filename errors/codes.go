package errors

// ErrorCode is the machine-readable code carried by every AppError
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1003
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1004
	ErrorCode_PERMISSION_DENIED ErrorCode = 1005

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN     ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED     ErrorCode = 2001
	ErrorCode_AUTH_INVALID_SIGNATURE ErrorCode = 2002

	// Meeting processing
	ErrorCode_MEETING_NOT_FOUND          ErrorCode = 3000
	ErrorCode_MEETING_PERSISTENCE_FAILED ErrorCode = 3001
	ErrorCode_MEETING_PROCESSING_FAILED  ErrorCode = 3002

	// Scheduler
	ErrorCode_SCHEDULER_UNAVAILABLE ErrorCode = 4000

	// Integrations
	ErrorCode_INTEGRATION_NOT_CONFIGURED ErrorCode = 5000

	// Database
	ErrorCode_DB_QUERY_FAILED ErrorCode = 6000
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_SIGNATURE:     "AUTH_INVALID_SIGNATURE",
	ErrorCode_MEETING_NOT_FOUND:          "MEETING_NOT_FOUND",
	ErrorCode_MEETING_PERSISTENCE_FAILED: "MEETING_PERSISTENCE_FAILED",
	ErrorCode_MEETING_PROCESSING_FAILED:  "MEETING_PROCESSING_FAILED",
	ErrorCode_SCHEDULER_UNAVAILABLE:      "SCHEDULER_UNAVAILABLE",
	ErrorCode_INTEGRATION_NOT_CONFIGURED: "INTEGRATION_NOT_CONFIGURED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
