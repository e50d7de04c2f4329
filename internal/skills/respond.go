package skills

import "context"

// ResponderName is the action that hands the final answer back to the human.
const ResponderName = "Response To Human"

// Responder is the terminal skill. Call echoes its input so the skill can
// still be exercised like any other tool.
type Responder struct{}

var _ Terminal = Responder{}

func (Responder) Name() string { return ResponderName }
func (Responder) Description() string {
	return "When you need to respond to the human you are talking to."
}
func (Responder) Call(_ context.Context, input string) (string, error) { return input, nil }
func (Responder) Terminal()                                             {}
