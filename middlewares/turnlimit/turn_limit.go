package turnlimit

import (
	"context"
	"fmt"

	mw "reactcalc/internal/middleware"
)

func init() {
	mw.Register(Limiter{})
}

// ContextKey holds the maximum number of completion calls per turn loop in
// Event.Context (int). Zero or absent means unlimited.
const ContextKey = "max_turns"

// Limiter stops a turn loop that keeps calling tools without answering.
type Limiter struct{}

func (Limiter) ID() string    { return "turn_limit" }
func (Limiter) Priority() int { return 100 } // before token_budget spends anything

func (Limiter) Handles(name mw.EventName) bool { return name == mw.EventBeforeCompletion }

func (Limiter) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	limit, ok := e.Context[ContextKey].(int)
	if !ok || limit <= 0 || e.Turn <= limit {
		return mw.Decision{}, nil
	}
	return mw.Decision{
		Cancel: true,
		Reason: fmt.Sprintf("turn limit of %d reached", limit),
	}, nil
}
