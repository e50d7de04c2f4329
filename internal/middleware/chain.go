package middleware

import (
	"cmp"
	"context"
	"io"
	"slices"
	"sync"
)

// Chain executes middlewares in descending Priority() order.
// If priorities are equal, registration order is preserved.
type Chain struct {
	mu  sync.RWMutex
	mws []Middleware

	debugMu sync.Mutex
	debugW  io.Writer
}

type DecisionResult struct {
	MiddlewareID string
	Priority     int
	Skipped      bool
	Decision     Decision
}

func NewChain(mws ...Middleware) *Chain {
	c := &Chain{}
	for _, mw := range mws {
		c.Use(mw)
	}
	return c
}

// SetDebugWriter enables JSONL debug logging for dispatch decisions.
// If w is nil, logging is disabled.
func (c *Chain) SetDebugWriter(w io.Writer) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	c.debugW = w
}

func (c *Chain) Use(mw Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mws = append(c.mws, mw)
	slices.SortStableFunc(c.mws, func(a, b Middleware) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
}

func (c *Chain) List() []Middleware {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.mws)
}

// Dispatch offers e to every middleware that handles e.Name and stops at
// the first cancel decision. Decisions are applied to e as they arrive, so
// callers read the rewritten text and params back from e.
// A nil chain dispatches nothing.
func (c *Chain) Dispatch(ctx context.Context, e *Event) ([]DecisionResult, error) {
	var results []DecisionResult
	for _, mw := range c.List() {
		if f, ok := mw.(EventFilter); ok && !f.Handles(e.Name) {
			continue
		}

		r := DecisionResult{MiddlewareID: mw.ID(), Priority: mw.Priority()}
		before := eventText(e)

		if cmw, ok := mw.(ConditionalMiddleware); ok && !cmw.ShouldLoad(ctx, e) {
			r.Skipped = true
			r.Decision = Decision{Reason: "skipped (ShouldLoad=false)"}
			c.debugLog(e, r, before, before)
			results = append(results, r)
			continue
		}

		dec, err := mw.OnEvent(ctx, e)
		if err != nil {
			r.Decision = Decision{Reason: err.Error(), Cancel: true}
			c.debugLog(e, r, before, eventText(e))
			return nil, err
		}

		applyDecisionToEvent(e, dec)
		r.Decision = dec
		c.debugLog(e, r, before, eventText(e))

		// No-op decisions are kept too so the debug log and callers can see
		// every middleware that ran.
		results = append(results, r)
		if dec.Cancel {
			break
		}
	}
	return results, nil
}

// Canceled returns the decision that stopped a dispatch, if any.
func Canceled(results []DecisionResult) (DecisionResult, bool) {
	i := slices.IndexFunc(results, func(r DecisionResult) bool { return r.Decision.Cancel })
	if i < 0 {
		return DecisionResult{}, false
	}
	return results[i], true
}
