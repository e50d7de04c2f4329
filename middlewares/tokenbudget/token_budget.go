package tokenbudget

import (
	"context"

	mw "reactcalc/internal/middleware"
)

func init() {
	// Auto-register middleware so it is picked up via middlewares/autoload.
	mw.Register(BudgetLimiter{})
}

// ContextKey holds the per-completion token cap in Event.Context (int).
const ContextKey = "token_budget"

// BudgetLimiter caps MaxTokens for each completion call when a budget is
// provided in Event.Context["token_budget"]. It prefers the smaller of the
// existing MaxTokens and the budget.
type BudgetLimiter struct{}

func (BudgetLimiter) ID() string    { return "token_budget" }
func (BudgetLimiter) Priority() int { return 90 }

func (BudgetLimiter) Handles(name mw.EventName) bool { return name == mw.EventBeforeCompletion }

func (BudgetLimiter) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	budget, ok := e.Context[ContextKey].(int)
	if !ok || budget <= 0 {
		return mw.Decision{}, nil
	}

	// Copy params so downstream can mutate safely.
	params := &mw.LLMParams{}
	if e.Params != nil {
		*params = *e.Params
	}

	if params.MaxTokens == 0 || params.MaxTokens > budget {
		params.MaxTokens = budget
		return mw.Decision{
			OverrideParams: params,
			Reason:         "token_budget: capped MaxTokens",
		}, nil
	}

	return mw.Decision{}, nil
}
