package skills

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type echoSkill struct{ name string }

func (e echoSkill) Name() string        { return e.name }
func (e echoSkill) Description() string { return "echo" }
func (e echoSkill) Call(_ context.Context, input string) (string, error) {
	return input, nil
}

func TestDefaultManagerOrderAndLookup(t *testing.T) {
	m := Default()
	if got, want := m.Names(), []string{CalculatorName, ResponderName}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	calc, ok := m.Get("Calculator")
	if !ok || IsTerminal(calc) {
		t.Fatalf("expected non-terminal calculator, got %v (ok=%v)", calc, ok)
	}
	resp, ok := m.Get("Response To Human")
	if !ok || !IsTerminal(resp) {
		t.Fatalf("expected terminal responder, got %v (ok=%v)", resp, ok)
	}
	if _, ok := m.Get("calculator"); ok {
		t.Fatalf("lookup must be case-sensitive")
	}
}

func TestRegisterRejectsDuplicatesAndEmptyNames(t *testing.T) {
	m := NewManager()
	if err := m.Register(echoSkill{name: "Echo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Register(echoSkill{name: "Echo"}); !errors.Is(err, ErrDuplicateSkill) {
		t.Fatalf("expected ErrDuplicateSkill, got %v", err)
	}
	if err := m.Register(echoSkill{name: "  "}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if len(m.List()) != 1 {
		t.Fatalf("expected one skill, got %d", len(m.List()))
	}
}

func TestCalculator(t *testing.T) {
	calc := NewCalculator()
	tests := []struct {
		input    string
		expected string
	}{
		{input: "2 + 2", expected: "4"},
		{input: "10 * 5", expected: "50"},
		{input: "2 - 7", expected: "-5"},
		{input: "pow(2, 10)", expected: "1024.0"},
		{input: "2^10", expected: powerHint},
		{input: "2 ^ 3", expected: powerHint},
	}
	for _, tt := range tests {
		got, err := calc.Call(context.Background(), tt.input)
		if err != nil {
			t.Fatalf("Call(%q): unexpected error: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("Call(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestCalculatorFoldsErrorsIntoResult(t *testing.T) {
	calc := NewCalculator()
	for _, input := range []string{"2 +", "", "unknown_fn(3)"} {
		got, err := calc.Call(context.Background(), input)
		if err != nil {
			t.Fatalf("Call(%q): evaluator failures must not be errors, got %v", input, err)
		}
		if !strings.Contains(got, "error") {
			t.Errorf("Call(%q): expected an error description, got %q", input, got)
		}
	}
}

func TestResponderEchoes(t *testing.T) {
	got, err := Responder{}.Call(context.Background(), "42")
	if err != nil || got != "42" {
		t.Fatalf("expected 42, got %q (%v)", got, err)
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	m := Default()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic for a duplicate default skill")
		}
	}()
	m.mustRegister(NewCalculator())
}
