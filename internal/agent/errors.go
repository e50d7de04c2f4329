package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse is returned when the model text does not follow
	// the two-line Action / Action Input format.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrCanceled is returned when a middleware or the context stops the
	// turn loop before a final answer.
	ErrCanceled = errors.New("turn loop canceled")

	ErrEmptyPrompt = errors.New("empty prompt")
)

// ProviderError wraps a failed completion call. It is never retried.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return "provider error: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// UnknownActionError reports an action that names no registered skill.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Action)
}
