package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// Meeting errors
var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrNoTranscript    = errors.New("meeting has no transcript")
)
