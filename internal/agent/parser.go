package agent

import (
	"fmt"
	"strings"
)

const (
	actionMarker      = "Action:"
	actionInputMarker = "Action Input:"
)

// ParsedAction is the tool choice extracted from one assistant response.
type ParsedAction struct {
	Action      string
	ActionInput string
}

// Parse reads the first two non-empty lines of raw as
//
//	Action: <tool name>
//	Action Input: <input>
//
// and returns the trimmed values. Anything after the second line is ignored.
// Prose before the Action line is not tolerated.
func Parse(raw string) (ParsedAction, error) {
	lines := make([]string, 0, 2)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 2 {
			break
		}
	}
	if len(lines) < 2 {
		return ParsedAction{}, fmt.Errorf("%w: expected two lines, got %d", ErrMalformedResponse, len(lines))
	}

	action, ok := strings.CutPrefix(lines[0], actionMarker)
	if !ok {
		return ParsedAction{}, fmt.Errorf("%w: first line does not start with %q", ErrMalformedResponse, actionMarker)
	}
	input, ok := strings.CutPrefix(lines[1], actionInputMarker)
	if !ok {
		return ParsedAction{}, fmt.Errorf("%w: second line does not start with %q", ErrMalformedResponse, actionInputMarker)
	}

	return ParsedAction{
		Action:      strings.TrimSpace(action),
		ActionInput: strings.TrimSpace(input),
	}, nil
}
