// Package agent implements the ReAct turn loop: ask the model for an action,
// run the chosen skill, feed the observation back, and stop once the model
// answers the human.
//
//	a := agent.New(adapter, skills.Default(), agent.WithLogger(logger))
//	t := a.NewTranscript()
//	res, err := a.Run(ctx, t, "What is the square root of 98237948273498274?")
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"reactcalc/internal/chat"
	"reactcalc/internal/middleware"
	"reactcalc/internal/skills"

	"github.com/tmc/langchaingo/tools"
)

// ObservationPrefix starts every tool result written back to the transcript.
const ObservationPrefix = "Observation: "

// Step records one dispatched tool call.
type Step struct {
	Turn        int
	Response    string
	Action      ParsedAction
	Observation string
}

// Result holds the outcome of one turn loop.
type Result struct {
	State   State   // StateTerminate or StateFail
	Outcome Outcome // which terminal condition was reached
	Answer  string  // final answer, set when Outcome is OutcomeFinalAnswer
	Turns   int     // completion calls made
	Steps   []Step  // tool calls in order
	Err     error   // set when State is StateFail
}

// Summary renders the single line that tells the user how the loop ended.
func (r *Result) Summary() string {
	switch r.Outcome {
	case OutcomeFinalAnswer:
		return "Final response: " + r.Answer
	case OutcomeCanceled:
		return "Stopped: " + r.Err.Error()
	default:
		return "Error: " + r.Err.Error()
	}
}

type Option func(*Agent)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithMiddlewareChain(chain *middleware.Chain) Option {
	return func(a *Agent) { a.chain = chain }
}

// WithMiddlewareContext sets values exposed to middlewares as Event.Context.
func WithMiddlewareContext(values map[string]any) Option {
	return func(a *Agent) { a.mwCtx = maps.Clone(values) }
}

// WithParams sets the LLM params sent on every completion call.
func WithParams(params middleware.LLMParams) Option {
	return func(a *Agent) { a.params = params }
}

// WithSystemPrompt replaces the prompt generated from the skill catalogue.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.systemPrompt = prompt }
}

// WithResponseHandler registers fn to be called with every raw model
// response, after middlewares have seen it.
func WithResponseHandler(fn func(turn int, response string)) Option {
	return func(a *Agent) { a.onResponse = fn }
}

// WithStepHandler registers fn to be called after every tool dispatch.
func WithStepHandler(fn func(Step)) Option {
	return func(a *Agent) { a.onStep = fn }
}

// Agent runs turn loops against an injected completion adapter.
type Agent struct {
	adapter      chat.Adapter
	skills       *skills.Manager
	chain        *middleware.Chain
	logger       *slog.Logger
	params       middleware.LLMParams
	mwCtx        map[string]any
	systemPrompt string
	onStep       func(Step)
	onResponse   func(int, string)
}

func New(adapter chat.Adapter, mgr *skills.Manager, opts ...Option) *Agent {
	a := &Agent{
		adapter: adapter,
		skills:  mgr,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.systemPrompt == "" {
		a.systemPrompt = SystemPrompt(mgr)
	}
	return a
}

func (a *Agent) SystemPrompt() string {
	return a.systemPrompt
}

// NewTranscript starts a conversation seeded with the agent's system prompt.
func (a *Agent) NewTranscript() *chat.Transcript {
	return chat.NewTranscript(a.systemPrompt)
}

// Run appends prompt to t and drives turns until the model answers the
// human or the loop fails. The returned Result's Err is also returned as the
// error. A blank prompt is rejected with ErrEmptyPrompt and a nil Result.
func (a *Agent) Run(ctx context.Context, t *chat.Transcript, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	t.AddUser(prompt)

	res := a.loop(ctx, t)
	logger := a.logger.With("session", t.ID())
	if res.Err != nil {
		logger.Warn("turn loop failed", "outcome", res.Outcome.String(), "turns", res.Turns, "error", res.Err)
	} else {
		logger.Info("turn loop finished", "outcome", res.Outcome.String(), "turns", res.Turns)
	}
	return res, res.Err
}

func (a *Agent) loop(ctx context.Context, t *chat.Transcript) *Result {
	res := &Result{}
	fail := func(outcome Outcome, err error) State {
		res.Outcome = outcome
		res.Err = err
		return StateFail
	}

	var (
		raw    string
		action ParsedAction
		tool   tools.Tool
	)
	state := StateAwaitingCompletion

	for {
		logger := a.logger.With("session", t.ID(), "turn", res.Turns, "state", state.String())

		switch state {
		case StateAwaitingCompletion:
			if err := ctx.Err(); err != nil {
				state = fail(OutcomeCanceled, fmt.Errorf("%w: %w", ErrCanceled, err))
				continue
			}
			res.Turns++

			params, err := a.beforeCompletion(ctx, t, res.Turns)
			if err != nil {
				state = fail(OutcomeCanceled, err)
				continue
			}

			text, err := a.adapter.Complete(ctx, t.Messages(), params)
			if err != nil {
				if ctx.Err() != nil {
					state = fail(OutcomeCanceled, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()))
				} else {
					state = fail(OutcomeProviderError, &ProviderError{Err: err})
				}
				continue
			}

			raw, err = a.afterCompletion(ctx, t, res.Turns, text)
			if err != nil {
				state = fail(OutcomeCanceled, err)
				continue
			}
			t.AddAssistant(raw)
			logger.Debug("agent response", "response", raw)
			if a.onResponse != nil {
				a.onResponse(res.Turns, raw)
			}
			state = StateParsing

		case StateParsing:
			parsed, err := Parse(raw)
			if err != nil {
				state = fail(OutcomeMalformedResponse, err)
				continue
			}
			action = parsed

			s, ok := a.skills.Get(action.Action)
			switch {
			case !ok:
				state = fail(OutcomeUnknownAction, &UnknownActionError{Action: action.Action})
			case skills.IsTerminal(s):
				state = StateTerminate
			default:
				tool = s
				state = StateDispatchTool
			}

		case StateDispatchTool:
			obs, err := a.observe(ctx, t, res.Turns, tool, action)
			if err != nil {
				state = fail(OutcomeCanceled, err)
				continue
			}
			t.AddUser(ObservationPrefix + obs)
			logger.Debug("tool dispatched", "action", action.Action, "input", action.ActionInput, "observation", obs)

			step := Step{Turn: res.Turns, Response: raw, Action: action, Observation: obs}
			res.Steps = append(res.Steps, step)
			if a.onStep != nil {
				a.onStep(step)
			}
			state = StateAwaitingCompletion

		case StateTerminate:
			res.State = StateTerminate
			res.Outcome = OutcomeFinalAnswer
			res.Answer = action.ActionInput
			return res

		case StateFail:
			res.State = StateFail
			return res
		}
	}
}

// observe runs a non-terminal skill. Skill errors are folded into the
// observation text so the model can react to them on the next turn.
func (a *Agent) observe(ctx context.Context, t *chat.Transcript, turn int, tool tools.Tool, action ParsedAction) (string, error) {
	obs, err := tool.Call(ctx, action.ActionInput)
	if err != nil {
		obs = err.Error()
	}

	e := a.event(middleware.EventObservation, t, turn)
	e.Action = action.Action
	e.ActionInput = action.ActionInput
	e.Observation = obs
	if err := a.dispatch(ctx, e); err != nil {
		return "", err
	}
	return e.Observation, nil
}

func (a *Agent) beforeCompletion(ctx context.Context, t *chat.Transcript, turn int) (*middleware.LLMParams, error) {
	params := a.params
	e := a.event(middleware.EventBeforeCompletion, t, turn)
	e.Params = &params
	if err := a.dispatch(ctx, e); err != nil {
		return nil, err
	}
	return e.Params, nil
}

func (a *Agent) afterCompletion(ctx context.Context, t *chat.Transcript, turn int, text string) (string, error) {
	e := a.event(middleware.EventAfterCompletion, t, turn)
	e.LLMText = text
	if err := a.dispatch(ctx, e); err != nil {
		return "", err
	}
	return e.LLMText, nil
}

func (a *Agent) event(name middleware.EventName, t *chat.Transcript, turn int) *middleware.Event {
	return &middleware.Event{
		Name:    name,
		Session: t.ID(),
		Turn:    turn,
		Context: maps.Clone(a.mwCtx),
	}
}

// dispatch runs the chain and turns a cancel decision or middleware failure
// into an ErrCanceled error.
func (a *Agent) dispatch(ctx context.Context, e *middleware.Event) error {
	results, err := a.chain.Dispatch(ctx, e)
	if err != nil {
		return fmt.Errorf("%w: middleware: %w", ErrCanceled, err)
	}
	if r, ok := middleware.Canceled(results); ok {
		reason := r.Decision.Reason
		if reason == "" {
			reason = "canceled by " + r.MiddlewareID
		}
		return fmt.Errorf("%w: %s", ErrCanceled, reason)
	}
	return nil
}
