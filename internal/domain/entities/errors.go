package entities

import "errors"

// Domain errors
var (
	// Meeting errors
	ErrMeetingNotFound       = errors.New("meeting not found")
	ErrMeetingProcessed      = errors.New("meeting already processed")
	ErrInvalidConferenceID   = errors.New("invalid conference id")
	ErrEmptyTranscript       = errors.New("transcript is empty")
	ErrTaskTitleRequired     = errors.New("task title is required")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidProcessingStep = errors.New("invalid processing log step")
)
