package agent

import (
	"strings"

	"reactcalc/internal/skills"
)

// SystemPrompt lists the registered skills and the two-line output format
// the parser expects.
func SystemPrompt(mgr *skills.Manager) string {
	var b strings.Builder
	b.WriteString("You have access to the following tools:\n")
	for _, s := range mgr.List() {
		b.WriteString(s.Name())
		b.WriteString(": ")
		b.WriteString(s.Description())
		b.WriteString("\n")
	}
	b.WriteString("\nYou will receive a message from the human, then you should use a tool to answer the question. ")
	b.WriteString("For this, you should use the following format:\n\n")
	b.WriteString(actionMarker + " the action to take, should be one of [" + strings.Join(mgr.Names(), ", ") + "]\n")
	b.WriteString(actionInputMarker + " the input to the action, without quotes")
	return b.String()
}
