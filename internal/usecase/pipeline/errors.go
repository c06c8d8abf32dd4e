package pipeline

import (
	"errors"
	"fmt"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
)

// CollaboratorError is a failed call to an external stage collaborator. It is
// fatal to the run only when raised by SUMMARIZE.
type CollaboratorError struct {
	Stage entities.Stage
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// ParseError is extractor output that does not fit the task schema. It never
// aborts a run; the stage continues with an empty task list.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed extraction output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PersistenceError is a STORE failure, the only error a run returns
type PersistenceError struct {
	ConferenceID string
	Err          error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store meeting %s: %v", e.ConferenceID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistenceError reports whether err carries a PersistenceError
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// StageError is one failure recorded in the execution context
type StageError struct {
	Stage entities.Stage
	Err   error
	Fatal bool
}
