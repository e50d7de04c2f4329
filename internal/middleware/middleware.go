package middleware

import (
	"context"
)

type EventName string

const (
	EventBeforeCompletion EventName = "before_completion"
	EventAfterCompletion  EventName = "after_completion"
	EventObservation      EventName = "observation"
)

// LLMParams are per-call knobs forwarded to the completion adapter.
type LLMParams struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
}

type Decision struct {
	Cancel      bool   // stop the turn loop
	Reason      string // for logs
	ReplaceText *string

	// Optional: change request + continue
	OverrideParams *LLMParams
}

type Event struct {
	Name    EventName
	Session string
	Turn    int // 1-based turn number within the current turn loop

	LLMText     string     // for after_completion
	Action      string     // for observation
	ActionInput string     // for observation
	Observation string     // for observation
	Params      *LLMParams // mutable, for before_completion
	Context     map[string]any
}

type Middleware interface {
	ID() string
	Priority() int
	OnEvent(ctx context.Context, e *Event) (Decision, error)
}

// EventFilter is an optional extension for middlewares that only care about
// some events. Events it does not handle never reach OnEvent and leave no
// trace in results or debug logs.
type EventFilter interface {
	Handles(name EventName) bool
}

// ConditionalMiddleware is an optional extension that allows a middleware to be
// dynamically enabled/disabled per event.
//
// If a middleware implements this interface and returns false, it will be
// skipped during dispatch (but still recorded in results with a "skipped"
// reason).
type ConditionalMiddleware interface {
	ShouldLoad(ctx context.Context, e *Event) bool
}
