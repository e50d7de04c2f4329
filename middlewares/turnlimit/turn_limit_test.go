package turnlimit

import (
	"context"
	"testing"

	mw "reactcalc/internal/middleware"
)

func TestLimiter(t *testing.T) {
	tests := []struct {
		turn   int
		ctx    map[string]any
		cancel bool
	}{
		{turn: 1, ctx: map[string]any{ContextKey: 2}, cancel: false},
		{turn: 2, ctx: map[string]any{ContextKey: 2}, cancel: false},
		{turn: 3, ctx: map[string]any{ContextKey: 2}, cancel: true},
		{turn: 50, ctx: map[string]any{ContextKey: 0}, cancel: false},
		{turn: 50, ctx: nil, cancel: false},
	}
	for _, tt := range tests {
		ev := &mw.Event{Name: mw.EventBeforeCompletion, Turn: tt.turn, Context: tt.ctx}
		dec, err := Limiter{}.OnEvent(context.Background(), ev)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if dec.Cancel != tt.cancel {
			t.Errorf("turn %d ctx %v: expected cancel=%v, got %v", tt.turn, tt.ctx, tt.cancel, dec.Cancel)
		}
		if dec.Cancel && dec.Reason == "" {
			t.Errorf("expected a reason when canceling")
		}
	}
}

func TestLimiterOnlyHandlesCompletions(t *testing.T) {
	for _, name := range []mw.EventName{mw.EventAfterCompletion, mw.EventObservation} {
		if (Limiter{}).Handles(name) {
			t.Fatalf("limiter must not handle %s", name)
		}
	}
	if !(Limiter{}).Handles(mw.EventBeforeCompletion) {
		t.Fatalf("limiter must handle before_completion")
	}
}

func TestLimiterCancelsThroughChain(t *testing.T) {
	c := mw.NewChain(Limiter{})
	ctx := map[string]any{ContextKey: 1}

	results, err := c.Dispatch(context.Background(), &mw.Event{Name: mw.EventObservation, Turn: 5, Context: ctx})
	if err != nil || len(results) != 0 {
		t.Fatalf("observation events must not reach the limiter, got %v, %v", results, err)
	}

	results, err = c.Dispatch(context.Background(), &mw.Event{Name: mw.EventBeforeCompletion, Turn: 2, Context: ctx})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r, ok := mw.Canceled(results); !ok || r.MiddlewareID != "turn_limit" {
		t.Fatalf("expected turn_limit to cancel, got %+v", results)
	}
}
