package gateway

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reactcalc/internal/chat"
	"reactcalc/internal/middleware"
)

type fakeAdapter struct {
	responses []string
	err       error
	calls     [][]chat.Message
	deadlines []bool
}

func (f *fakeAdapter) Complete(ctx context.Context, history []chat.Message, _ *middleware.LLMParams) (string, error) {
	f.calls = append(f.calls, history)
	_, ok := ctx.Deadline()
	f.deadlines = append(f.deadlines, ok)
	if f.err != nil {
		return "", f.err
	}
	if len(f.calls) > len(f.responses) {
		return "", errors.New("script exhausted")
	}
	return f.responses[len(f.calls)-1], nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"REACTCALC_PROVIDER", "REACTCALC_MODEL", "REACTCALC_BASE_URL",
		"REACTCALC_API_KEY", "REACTCALC_MAX_TURNS", "REACTCALC_DISABLED_MIDDLEWARES",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolveConfigDefaults(t *testing.T) {
	clearEnv(t)
	g := New(filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := g.ResolveConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "openai" || cfg.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxTurns != 0 {
		t.Fatalf("expected unlimited turns, got %d", cfg.MaxTurns)
	}
}

func TestResolveConfigLayers(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"provider":"ollama","model":"from-file","base_url":"http://file","max_turns":3}`)
	t.Setenv("REACTCALC_MODEL", "from-env")
	t.Setenv("REACTCALC_MAX_TURNS", "5")
	t.Setenv("REACTCALC_DISABLED_MIDDLEWARES", "turn_limit, token_budget")

	g := New(path, WithOverrides(Overrides{BaseURL: "http://flag", MaxTurns: 7, TokenBudget: -1}))
	cfg, err := g.ResolveConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "ollama" {
		t.Fatalf("expected provider from file, got %q", cfg.Provider)
	}
	if cfg.Model != "from-env" {
		t.Fatalf("expected model from env, got %q", cfg.Model)
	}
	if cfg.BaseURL != "http://flag" {
		t.Fatalf("expected base url from flag, got %q", cfg.BaseURL)
	}
	if cfg.MaxTurns != 7 {
		t.Fatalf("expected max turns from flag, got %d", cfg.MaxTurns)
	}
	disabled := cfg.DisabledMiddlewares()
	if len(disabled) != 2 || disabled[0] != "turn_limit" || disabled[1] != "token_budget" {
		t.Fatalf("unexpected disabled middlewares: %v", disabled)
	}
}

func TestResolveConfigRejectsBadInput(t *testing.T) {
	clearEnv(t)
	if _, err := New(writeConfig(t, "{not json")).ResolveConfig(); err == nil {
		t.Fatalf("expected error for malformed config file")
	}

	t.Setenv("REACTCALC_MAX_TURNS", "lots")
	if _, err := New("").ResolveConfig(); err == nil {
		t.Fatalf("expected error for non-numeric REACTCALC_MAX_TURNS")
	}
}

func TestRunAnswersAndReportsSteps(t *testing.T) {
	clearEnv(t)
	adapter := &fakeAdapter{responses: []string{
		"Action: Calculator\nAction Input: 2 + 2",
		"Action: Response To Human\nAction Input: 4",
	}}
	var out bytes.Buffer
	g := New("", WithAdapter(adapter), WithIO(strings.NewReader("What is 2 + 2?\n/exit\n"), &out))

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Calculator result: 4\n") {
		t.Fatalf("missing step line in output:\n%s", got)
	}
	if !strings.Contains(got, "Final response: 4\n") {
		t.Fatalf("missing final line in output:\n%s", got)
	}
	if len(adapter.calls) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(adapter.calls))
	}
}

func TestRunKeepsTranscriptUntilClear(t *testing.T) {
	clearEnv(t)
	answer := "Action: Response To Human\nAction Input: ok"
	adapter := &fakeAdapter{responses: []string{answer, answer, answer}}
	var out bytes.Buffer
	input := "first\nsecond\n/clear\nthird\n"
	g := New("", WithAdapter(adapter), WithIO(strings.NewReader(input), &out))

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(adapter.calls) != 3 {
		t.Fatalf("expected 3 completion calls, got %d", len(adapter.calls))
	}
	// system, first, answer, second
	if n := len(adapter.calls[1]); n != 4 {
		t.Fatalf("expected second prompt to extend the transcript, got %d messages", n)
	}
	if n := len(adapter.calls[2]); n != 2 {
		t.Fatalf("expected a fresh transcript after /clear, got %d messages", n)
	}
	if !strings.Contains(out.String(), "context cleared") {
		t.Fatalf("missing clear confirmation:\n%s", out.String())
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	clearEnv(t)
	adapter := &fakeAdapter{responses: []string{
		"I think the answer is 4",
		"Action: Response To Human\nAction Input: 4",
	}}
	var out bytes.Buffer
	g := New("", WithAdapter(adapter), WithIO(strings.NewReader("one\ntwo\n"), &out))

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Error: malformed response") {
		t.Fatalf("missing malformed line:\n%s", got)
	}
	if !strings.Contains(got, "Final response: 4") {
		t.Fatalf("expected the next prompt to be answered:\n%s", got)
	}
}

func TestExecuteProviderFailure(t *testing.T) {
	clearEnv(t)
	adapter := &fakeAdapter{err: errors.New("boom")}
	var out bytes.Buffer
	g := New("", WithAdapter(adapter), WithIO(strings.NewReader(""), &out))

	err := g.Execute(context.Background(), "What is 2 + 2?")
	if !errors.Is(err, ErrTurnFailed) {
		t.Fatalf("expected ErrTurnFailed, got %v", err)
	}
	if got := out.String(); got != "Error: provider error: boom\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestExecuteDefaultPrompt(t *testing.T) {
	clearEnv(t)
	adapter := &fakeAdapter{responses: []string{"Action: Response To Human\nAction Input: done"}}
	var out bytes.Buffer
	g := New("", WithAdapter(adapter), WithIO(strings.NewReader(""), &out))

	if err := g.Execute(context.Background(), "  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	history := adapter.calls[0]
	if last := history[len(history)-1]; last.Role != chat.RoleUser || last.Content != DefaultPrompt {
		t.Fatalf("expected default prompt, got %+v", last)
	}
	want := "Agent response: Action: Response To Human\nAction Input: done\nFinal response: done\n"
	if out.String() != want {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestExecuteTurnLimit(t *testing.T) {
	clearEnv(t)
	loop := "Action: Calculator\nAction Input: 1 + 1"
	adapter := &fakeAdapter{responses: []string{loop, loop, loop}}
	var out bytes.Buffer
	g := New("",
		WithAdapter(adapter),
		WithIO(strings.NewReader(""), &out),
		WithOverrides(Overrides{MaxTurns: 2, TokenBudget: -1}),
	)

	err := g.Execute(context.Background(), "loop forever")
	if !errors.Is(err, ErrTurnFailed) {
		t.Fatalf("expected ErrTurnFailed, got %v", err)
	}
	if len(adapter.calls) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(adapter.calls))
	}
	if !strings.Contains(out.String(), "Stopped: turn loop canceled: turn limit of 2 reached") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestExecuteWaitsWithoutDeadlineByDefault(t *testing.T) {
	clearEnv(t)
	answer := "Action: Response To Human\nAction Input: ok"

	adapter := &fakeAdapter{responses: []string{answer}}
	g := New("", WithAdapter(adapter), WithIO(strings.NewReader(""), &bytes.Buffer{}))
	if err := g.Execute(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapter.deadlines[0] {
		t.Fatalf("expected no deadline on the provider call by default")
	}

	adapter = &fakeAdapter{responses: []string{answer}}
	g = New("", WithAdapter(adapter), WithIO(strings.NewReader(""), &bytes.Buffer{}), WithTimeout(time.Minute))
	if err := g.Execute(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adapter.deadlines[0] {
		t.Fatalf("expected a deadline when a timeout is set")
	}
}
