package agent

import "fmt"

// State is a position in the turn state machine.
type State int

const (
	StateAwaitingCompletion State = iota
	StateParsing
	StateDispatchTool
	StateTerminate
	StateFail
)

func (s State) String() string {
	switch s {
	case StateAwaitingCompletion:
		return "awaiting_completion"
	case StateParsing:
		return "parsing"
	case StateDispatchTool:
		return "dispatch_tool"
	case StateTerminate:
		return "terminate"
	case StateFail:
		return "fail"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome names the terminal condition a turn loop ended in.
type Outcome int

const (
	OutcomeFinalAnswer Outcome = iota
	OutcomeMalformedResponse
	OutcomeUnknownAction
	OutcomeProviderError
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinalAnswer:
		return "final_answer"
	case OutcomeMalformedResponse:
		return "malformed_response"
	case OutcomeUnknownAction:
		return "unknown_action"
	case OutcomeProviderError:
		return "provider_error"
	case OutcomeCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}
