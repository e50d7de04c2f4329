package skills

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/tools"
)

// CalculatorName is the action the model uses to request math.
const CalculatorName = "Calculator"

// Calculator evaluates a single-line math expression with langchaingo's
// starlark-backed evaluator. Evaluation failures come back as descriptive
// result text, never as an error, so the model can read and correct them.
type Calculator struct {
	eval tools.Calculator
}

var _ tools.Tool = Calculator{}

func NewCalculator() Calculator {
	return Calculator{}
}

func (Calculator) Name() string { return CalculatorName }

func (Calculator) Description() string {
	return "Useful for when you need to answer questions about math. Use Python-style expressions, eg: 2 + 2, sqrt(16), pow(2, 10)"
}

// powerHint is returned for "^", which the evaluator would read as XOR.
const powerHint = "error from evaluator: '^' is not supported, use pow(a, b) for powers"

func (c Calculator) Call(ctx context.Context, input string) (string, error) {
	if strings.Contains(input, "^") {
		return powerHint, nil
	}
	return c.eval.Call(ctx, input)
}
