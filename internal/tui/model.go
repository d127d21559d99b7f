package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leximini/internal/domain"
	"leximini/internal/usecase"
)

// Answerer is the TUI-facing subset of the answer use case.
type Answerer interface {
	Answer(query string, history []domain.Turn) (domain.Turn, error)
}

// Model is the Bubble Tea model for the chat session. It has two states:
// awaiting input and generating. While generating, input is ignored and the
// turn runs synchronously in a command; no concurrent turns per session.
type Model struct {
	answerer   Answerer
	input      textinput.Model
	viewport   viewport.Model
	history    []domain.Turn
	status     string
	generating bool
	ready      bool
}

type answerMsg struct {
	turn domain.Turn
	err  error
}

// New creates a new chat model.
func New(answerer Answerer, modelName string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a legal question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		answerer: answerer,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("Ready. Model: %s. Ctrl+R resets the conversation, Ctrl+C quits.", modelName),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case answerMsg:
		m.generating = false
		if msg.err != nil {
			// Fatal to this turn only; the conversation stays intact.
			m.status = errorStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.history = append(m.history, msg.turn)
		m.status = "Ready."
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+r":
			m.history = nil
			m.status = "Conversation reset."
			m.viewport.SetContent(m.renderTranscript())
			return m, nil
		case "enter":
			if m.generating {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.Reset()
			m.generating = true
			m.status = "Thinking..."
			history := m.history
			answerer := m.answerer
			return m, func() tea.Msg {
				turn, err := answerer.Answer(q, history)
				return answerMsg{turn: turn, err: err}
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}

	if m.generating {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("LexiMini Legal Assistant")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No messages yet. Ask something about the indexed documents."
	}

	var b strings.Builder
	for i, turn := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(userStyle.Render("You: ") + turn.Query)
		b.WriteString("\n\n")
		b.WriteString(assistantStyle.Render("LexiMini: ") + turn.Answer)
		if len(turn.Sources) > 0 {
			b.WriteString("\n" + sourceStyle.Render("Sources: "+strings.Join(turn.Sources, ", ")))
		}
		b.WriteString("\n" + disclaimerStyle.Render(usecase.Disclaimer))
	}
	return b.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	disclaimerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
