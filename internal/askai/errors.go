package askai

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrEmptyQuestion = errors.New("no question provided")
	ErrSynthesis     = errors.New("failed to process the question with AI")
	ErrInvalidQuery  = errors.New("the AI generated an invalid query")
	ErrExecution     = errors.New("query execution failed")
	// ErrAnalysis never leaves the pipeline; the fallback text replaces it.
	ErrAnalysis = errors.New("analysis generation failed")
)

// Error carries the failure kind plus the SQL involved, when there was one.
type Error struct {
	Kind  error
	SQL   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return e.Kind.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// SQLOf returns the SQL attached to err, if any.
func SQLOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.SQL
	}
	return ""
}

// CauseMessage returns the text of the underlying cause, or the error itself.
func CauseMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Cause.Error()
	}
	return err.Error()
}
