package middleware

import (
	"encoding/json"
	"math"
	"regexp"
	"time"
	"unicode/utf8"
)

type debugEntry struct {
	Timestamp    string `json:"ts"`
	Event        string `json:"event"`
	Session      string `json:"session,omitempty"`
	Turn         int    `json:"turn"`
	MiddlewareID string `json:"middleware"`
	Priority     int    `json:"priority"`
	Skipped      bool   `json:"skipped,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Cancel       bool   `json:"cancel,omitempty"`

	InputChars   int `json:"in_chars"`
	OutputChars  int `json:"out_chars"`
	InputTokens  int `json:"in_tokens_est"`
	OutputTokens int `json:"out_tokens_est"`
}

// tokenish matches "word-like" chunks (including dotted/slashed technical tokens),
// otherwise falls back to single non-space characters.
var tokenish = regexp.MustCompile(`[\pL\pN]+(?:[._/\\-][\pL\pN]+)*|[^\s]`)

// EstimateTokens gives a rough token count, good enough for budgeting logs.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	chunks := len(tokenish.FindAllString(s, -1))
	charHeuristic := int(math.Ceil(float64(utf8.RuneCountInString(s)) / 4.0))
	if chunks < charHeuristic {
		return charHeuristic
	}
	return chunks
}

func eventText(e *Event) string {
	if e == nil {
		return ""
	}
	switch e.Name {
	case EventAfterCompletion:
		return e.LLMText
	case EventObservation:
		return e.Observation
	default:
		return ""
	}
}

func applyDecisionToEvent(e *Event, dec Decision) {
	if e == nil {
		return
	}
	if dec.OverrideParams != nil {
		e.Params = dec.OverrideParams
	}
	if dec.ReplaceText == nil {
		return
	}
	switch e.Name {
	case EventAfterCompletion:
		e.LLMText = *dec.ReplaceText
	case EventObservation:
		e.Observation = *dec.ReplaceText
	}
}

func (c *Chain) debugLog(e *Event, r DecisionResult, inText, outText string) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	if c.debugW == nil {
		return
	}

	entry := debugEntry{
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Event:        string(e.Name),
		Session:      e.Session,
		Turn:         e.Turn,
		MiddlewareID: r.MiddlewareID,
		Priority:     r.Priority,
		Skipped:      r.Skipped,
		Reason:       r.Decision.Reason,
		Cancel:       r.Decision.Cancel,
		InputChars:   utf8.RuneCountInString(inText),
		OutputChars:  utf8.RuneCountInString(outText),
		InputTokens:  EstimateTokens(inText),
		OutputTokens: EstimateTokens(outText),
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	b = append(b, '\n')
	_, _ = c.debugW.Write(b)
}
