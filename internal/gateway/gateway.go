package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"reactcalc/internal/agent"
	"reactcalc/internal/chat"
	"reactcalc/internal/llm"
	"reactcalc/internal/middleware"
	"reactcalc/internal/onboarding"
	"reactcalc/internal/skills"
	"reactcalc/middlewares/tokenbudget"
	"reactcalc/middlewares/turnlimit"

	"github.com/joho/godotenv"
)

// DefaultPrompt is asked by Execute when no prompt is given.
const DefaultPrompt = "What is the square root of 98237948273498274?"

// ErrTurnFailed is returned by Execute when the turn loop ends in a failure.
// The failure line has already been written to the output.
var ErrTurnFailed = errors.New("turn loop failed")

// Overrides carries command line values that win over file and environment.
// Zero values leave the lower layers alone; MaxTurns and TokenBudget use -1.
type Overrides struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	MaxTurns    int
	TokenBudget int
	DebugLog    string
}

type Option func(*Gateway)

func WithOverrides(o Overrides) Option {
	return func(g *Gateway) { g.overrides = o }
}

func WithIO(in io.Reader, out io.Writer) Option {
	return func(g *Gateway) {
		g.in = in
		g.out = out
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithAdapter skips provider construction and uses a directly.
func WithAdapter(a chat.Adapter) Option {
	return func(g *Gateway) { g.adapter = a }
}

// WithTimeout bounds each prompt's turn loop. Zero, the default, waits for
// the provider indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

type Gateway struct {
	ConfigPath string

	overrides Overrides
	in        io.Reader
	out       io.Writer
	logger    *slog.Logger
	adapter   chat.Adapter
	timeout   time.Duration
}

func New(configPath string, opts ...Option) *Gateway {
	g := &Gateway{
		ConfigPath: configPath,
		overrides:  Overrides{MaxTurns: -1, TokenBudget: -1},
		in:         os.Stdin,
		out:        os.Stdout,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ResolveConfig layers .env, the config file, REACTCALC_* variables and the
// overrides, in that order. A missing config file is not an error.
func (g *Gateway) ResolveConfig() (*onboarding.Config, error) {
	_ = godotenv.Load()

	cfg := &onboarding.Config{}
	if g.ConfigPath != "" {
		loaded, err := onboarding.LoadFromFile(g.ConfigPath)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	setString(&cfg.Provider, os.Getenv("REACTCALC_PROVIDER"))
	setString(&cfg.Model, os.Getenv("REACTCALC_MODEL"))
	setString(&cfg.BaseURL, os.Getenv("REACTCALC_BASE_URL"))
	setString(&cfg.APIKey, os.Getenv("REACTCALC_API_KEY"))
	if v := os.Getenv("REACTCALC_MAX_TURNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REACTCALC_MAX_TURNS: %w", err)
		}
		cfg.MaxTurns = n
	}
	if v := os.Getenv("REACTCALC_DISABLED_MIDDLEWARES"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.Middlewares = append(cfg.Middlewares, onboarding.MiddlewareSetting{ID: id})
			}
		}
	}

	o := g.overrides
	setString(&cfg.Provider, o.Provider)
	setString(&cfg.Model, o.Model)
	setString(&cfg.BaseURL, o.BaseURL)
	setString(&cfg.APIKey, o.APIKey)
	if o.MaxTurns >= 0 {
		cfg.MaxTurns = o.MaxTurns
	}
	if o.TokenBudget >= 0 {
		cfg.TokenBudget = o.TokenBudget
	}

	if cfg.Provider == "" {
		cfg.Provider = string(llm.ProviderOpenAI)
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel(llm.Provider(cfg.Provider))
	}
	return cfg, nil
}

func (g *Gateway) initService() (*agent.Agent, *onboarding.Config, func(), error) {
	cfg, err := g.ResolveConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	adapter := g.adapter
	if adapter == nil {
		adapter, err = llm.NewAdapter(llm.Settings{
			Provider: llm.Provider(cfg.Provider),
			Model:    cfg.Model,
			BaseURL:  cfg.BaseURL,
			APIKey:   cfg.APIKey,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize adapter: %w", err)
		}
	}

	cleanup := func() {}
	var mwLog io.Writer
	if g.overrides.DebugLog != "" {
		f, err := os.OpenFile(g.overrides.DebugLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			g.logger.Warn("failed to open middleware log file", "path", g.overrides.DebugLog, "error", err)
		} else {
			mwLog = f
			cleanup = func() { _ = f.Close() }
		}
	}
	chain := middleware.NewChainFromRegistry(mwLog, cfg.DisabledMiddlewares()...)

	a := agent.New(adapter, skills.Default(),
		agent.WithLogger(g.logger),
		agent.WithMiddlewareChain(chain),
		agent.WithMiddlewareContext(map[string]any{
			turnlimit.ContextKey:   cfg.MaxTurns,
			tokenbudget.ContextKey: cfg.TokenBudget,
		}),
		agent.WithSystemPrompt(cfg.SystemPrompt),
		agent.WithResponseHandler(func(_ int, response string) {
			fmt.Fprintf(g.out, "Agent response: %s\n", response)
		}),
		agent.WithStepHandler(func(s agent.Step) {
			fmt.Fprintf(g.out, "%s result: %s\n", s.Action.Action, s.Observation)
		}),
	)
	return a, cfg, cleanup, nil
}

// Execute answers a single prompt with a fresh transcript.
func (g *Gateway) Execute(ctx context.Context, input string) error {
	a, _, cleanup, err := g.initService()
	if err != nil {
		return err
	}
	defer cleanup()

	if strings.TrimSpace(input) == "" {
		input = DefaultPrompt
	}
	if !g.ask(ctx, a, a.NewTranscript(), input) {
		return ErrTurnFailed
	}
	return nil
}

// Run reads prompts line by line and keeps one transcript until /clear.
func (g *Gateway) Run(ctx context.Context) error {
	a, cfg, cleanup, err := g.initService()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintln(g.out, "reactcalc chat")
	fmt.Fprintf(g.out, "model=%s, provider=%s, url=%s\n", cfg.Model, cfg.Provider, valueOrDefault(cfg.BaseURL, "default"))
	fmt.Fprintln(g.out, "Type /exit to quit, /clear to reset context.")

	scanner := bufio.NewScanner(g.in)
	if c, ok := g.in.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	t := a.NewTranscript()
	for {
		fmt.Fprint(g.out, "User: ")
		if !scanner.Scan() {
			fmt.Fprintln(g.out)
			return nil
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch input {
		case "/exit", "exit", "quit":
			return nil
		case "/clear":
			t = a.NewTranscript()
			fmt.Fprintln(g.out, "context cleared")
			continue
		}

		g.ask(ctx, a, t, input)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// ask runs one turn loop and prints its summary line. It reports whether
// the loop reached a final answer.
func (g *Gateway) ask(ctx context.Context, a *agent.Agent, t *chat.Transcript, input string) bool {
	var (
		turnCtx context.Context
		cancel  context.CancelFunc
	)
	if g.timeout > 0 {
		turnCtx, cancel = context.WithTimeout(ctx, g.timeout)
	} else {
		turnCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	res, err := a.Run(turnCtx, t, input)
	if res == nil {
		fmt.Fprintf(g.out, "Error: %v\n", err)
		return false
	}
	fmt.Fprintln(g.out, res.Summary())
	return err == nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func valueOrDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
