package onboarding

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reactcalc/internal/llm"
	"reactcalc/internal/middleware"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Styles ---

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleStyle   = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			Bold(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Padding(0, 1)

	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1)
)

// --- Types ---

type state int

const (
	stateProvider state = iota
	stateAPIKey
	stateModel
	stateMaxTurns
	stateMiddlewares
	stateDone
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

type savedMsg struct{ err error }

// TUIModel walks through provider, key, model, turn limit and middleware
// choices, then writes the config file.
type TUIModel struct {
	path string

	state       state
	cfg         Config
	middlewares []MiddlewareSetting

	list     list.Model
	input    textinput.Model
	err      error
	quitting bool
	width    int
	height   int

	cursor int // for middleware list
}

// --- Ollama Discovery ---

type ollamaModel struct {
	Name string `json:"name"`
}

type ollamaResponse struct {
	Models []ollamaModel `json:"models"`
}

func fetchOllamaModels(baseURL string) []list.Item {
	fallback := []list.Item{item{title: llm.DefaultModel(llm.ProviderOllama), desc: "Default (Ollama not responding)"}}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimRight(baseURL, "/") + "/api/tags")
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	var data ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || len(data.Models) == 0 {
		return fallback
	}

	items := make([]list.Item, len(data.Models))
	for i, m := range data.Models {
		items[i] = item{title: m.Name, desc: "Local Ollama model"}
	}
	return items
}

func cloudModels(p llm.Provider) []list.Item {
	switch p {
	case llm.ProviderAnthropic:
		return []list.Item{item{title: "claude-3-5-sonnet-latest", desc: "Best Anthropic model"}}
	case llm.ProviderGemini:
		return []list.Item{item{title: "gemini-2.5-flash", desc: "Fast Google model"}, item{title: "gemini-2.5-pro", desc: "Powerful Google model"}}
	default:
		return []list.Item{item{title: "gpt-4o-mini", desc: "Fast OpenAI model"}, item{title: "gpt-4o", desc: "Best OpenAI model"}}
	}
}

// --- Initial Model ---

func NewTUIModel(path string) TUIModel {
	providers := []list.Item{
		item{title: string(llm.ProviderOpenAI), desc: "OpenAI GPT models (requires API Key)"},
		item{title: string(llm.ProviderOllama), desc: "Local execution via Ollama"},
		item{title: string(llm.ProviderAnthropic), desc: "Claude models (requires API Key)"},
		item{title: string(llm.ProviderGemini), desc: "Google Gemini models (requires API Key)"},
	}

	l := list.New(providers, list.NewDefaultDelegate(), 40, 20)
	l.Title = "Select AI Provider"
	l.SetShowHelp(false)

	ti := textinput.New()
	ti.Focus()

	mwList := middleware.Registered()
	settings := make([]MiddlewareSetting, len(mwList))
	for i, mw := range mwList {
		settings[i] = MiddlewareSetting{ID: mw.ID(), Enabled: true}
	}

	return TUIModel{
		path:        path,
		state:       stateProvider,
		list:        l,
		input:       ti,
		middlewares: settings,
	}
}

func (m TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Config returns the choices made so far.
func (m TUIModel) Config() Config {
	cfg := m.cfg
	cfg.Middlewares = append([]MiddlewareSetting(nil), m.middlewares...)
	return cfg
}

func (m TUIModel) chooseProvider(name string) TUIModel {
	m.cfg.Provider = name
	if llm.Provider(name) == llm.ProviderOllama {
		m.cfg.BaseURL = "http://localhost:11434"
		return m.toModelList(fetchOllamaModels(m.cfg.BaseURL), "Select Local Model")
	}
	m.state = stateAPIKey
	m.input.Prompt = fmt.Sprintf("%s API Key: ", name)
	m.input.Placeholder = "leave empty to use the environment"
	m.input.EchoMode = textinput.EchoPassword
	m.input.SetValue("")
	return m
}

func (m TUIModel) submitAPIKey(key string) TUIModel {
	m.cfg.APIKey = strings.TrimSpace(key)
	return m.toModelList(cloudModels(llm.Provider(m.cfg.Provider)), "Select Cloud Model")
}

func (m TUIModel) toModelList(items []list.Item, title string) TUIModel {
	m.state = stateModel
	m.list.SetItems(items)
	m.list.Select(0)
	m.list.Title = title
	return m
}

func (m TUIModel) chooseModel(name string) TUIModel {
	m.cfg.Model = name
	m.state = stateMaxTurns
	m.input.Prompt = "Max turns per question (0 = unlimited): "
	m.input.Placeholder = "10"
	m.input.EchoMode = textinput.EchoNormal
	m.input.SetValue("")
	return m
}

func (m TUIModel) submitMaxTurns(v string) TUIModel {
	v = strings.TrimSpace(v)
	if v == "" {
		v = "10"
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		m.err = fmt.Errorf("max turns must be a non-negative number, got %q", v)
		return m
	}
	m.err = nil
	m.cfg.MaxTurns = n
	m.state = stateMiddlewares
	return m
}

func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			if m.state != stateAPIKey && m.state != stateMaxTurns {
				m.quitting = true
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-10, msg.Height-15)

	case savedMsg:
		m.err = msg.err
		m.state = stateDone
		return m, nil
	}

	var cmd tea.Cmd
	keyMsg, isKey := msg.(tea.KeyMsg)
	enter := isKey && keyMsg.String() == "enter"

	switch m.state {
	case stateProvider:
		if enter {
			if i, ok := m.list.SelectedItem().(item); ok {
				return m.chooseProvider(i.title), nil
			}
		}
		m.list, cmd = m.list.Update(msg)

	case stateAPIKey:
		if enter {
			return m.submitAPIKey(m.input.Value()), nil
		}
		m.input, cmd = m.input.Update(msg)

	case stateModel:
		if enter {
			if i, ok := m.list.SelectedItem().(item); ok {
				return m.chooseModel(i.title), nil
			}
		}
		m.list, cmd = m.list.Update(msg)

	case stateMaxTurns:
		if enter {
			return m.submitMaxTurns(m.input.Value()), nil
		}
		m.input, cmd = m.input.Update(msg)

	case stateMiddlewares:
		if isKey {
			switch keyMsg.String() {
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(m.middlewares)-1 {
					m.cursor++
				}
			case " ", "space":
				if len(m.middlewares) > 0 {
					m.middlewares[m.cursor].Enabled = !m.middlewares[m.cursor].Enabled
				}
			case "enter":
				return m, m.saveConfig()
			}
		}

	case stateDone:
		if isKey {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, cmd
}

func (m TUIModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(" reactcalc setup "))
	s.WriteString("\n\n")

	tabs := []string{"Provider", "Model", "Limits", "Middlewares", "Finish"}
	currentTab := 0
	switch m.state {
	case stateModel:
		currentTab = 1
	case stateMaxTurns:
		currentTab = 2
	case stateMiddlewares:
		currentTab = 3
	case stateDone:
		currentTab = 4
	}
	renderedTabs := make([]string, len(tabs))
	for i, t := range tabs {
		if i == currentTab {
			renderedTabs[i] = activeTabStyle.Render(t)
		} else {
			renderedTabs[i] = inactiveTabStyle.Render(t)
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...))
	s.WriteString("\n\n")

	var content string
	switch m.state {
	case stateProvider, stateModel:
		content = m.list.View()
	case stateAPIKey, stateMaxTurns:
		content = "\n" + m.input.View() + "\n\n" + helpStyle.Render("Press enter to continue")
	case stateMiddlewares:
		var mwView strings.Builder
		mwView.WriteString("Toggle middlewares with [SPACE], Press [ENTER] to finish.\n\n")
		for i, mw := range m.middlewares {
			cursor := " "
			if m.cursor == i {
				cursor = ">"
			}
			checked := " "
			if mw.Enabled {
				checked = "x"
			}
			line := fmt.Sprintf("%s [%s] %s", cursor, checked, mw.ID)
			if m.cursor == i {
				mwView.WriteString(focusedStyle.Render(line) + "\n")
			} else {
				mwView.WriteString(line + "\n")
			}
		}
		content = mwView.String()
	case stateDone:
		if m.err != nil {
			content = "\nFailed to save configuration: " + m.err.Error() + "\nPress any key to exit."
		} else {
			content = fmt.Sprintf("\nSaved configuration to %s\nPress any key to exit.", m.path)
		}
	}
	if m.err != nil && m.state != stateDone {
		content += "\n" + errorStyle.Render(m.err.Error())
	}

	s.WriteString(windowStyle.Width(max(m.width-10, 40)).Render(content))

	if m.state != stateDone {
		s.WriteString("\n\n" + helpStyle.Render("q/ctrl+c: quit • ↑/↓: navigate • enter: select"))
	}

	return docStyle.Render(s.String())
}

func (m TUIModel) saveConfig() tea.Cmd {
	cfg := m.Config()
	path := m.path
	return func() tea.Msg {
		return savedMsg{err: cfg.SaveToFile(path)}
	}
}

// --- Runner ---

func RunTUI(path string) error {
	p := tea.NewProgram(NewTUIModel(path), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(TUIModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
