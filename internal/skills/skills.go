package skills

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools"
)

var ErrDuplicateSkill = errors.New("skill already registered")

// Terminal marks a skill whose selection ends the turn loop instead of
// producing an observation. Its Action Input becomes the final answer.
type Terminal interface {
	tools.Tool
	Terminal()
}

// Manager holds the available skills in registration order. Lookups are
// case-sensitive.
type Manager struct {
	order  []string
	skills map[string]tools.Tool
}

func NewManager() *Manager {
	return &Manager{
		skills: make(map[string]tools.Tool),
	}
}

// Default returns a manager with the calculator and the human responder.
func Default() *Manager {
	m := NewManager()
	m.mustRegister(NewCalculator())
	m.mustRegister(Responder{})
	return m
}

func (m *Manager) mustRegister(s tools.Tool) {
	if err := m.Register(s); err != nil {
		panic(err)
	}
}

func (m *Manager) Register(s tools.Tool) error {
	name := s.Name()
	if strings.TrimSpace(name) == "" {
		return errors.New("skill name is required")
	}
	if _, ok := m.skills[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSkill, name)
	}
	m.skills[name] = s
	m.order = append(m.order, name)
	return nil
}

func (m *Manager) Get(name string) (tools.Tool, bool) {
	s, ok := m.skills[name]
	return s, ok
}

// IsTerminal reports whether s ends the turn loop.
func IsTerminal(s tools.Tool) bool {
	_, ok := s.(Terminal)
	return ok
}

func (m *Manager) List() []tools.Tool {
	list := make([]tools.Tool, 0, len(m.order))
	for _, name := range m.order {
		list = append(list, m.skills[name])
	}
	return list
}

func (m *Manager) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}
