package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"leximini/internal/domain"
)

type fakeAnswerer struct {
	turn domain.Turn
	err  error
}

func (f *fakeAnswerer) Answer(query string, history []domain.Turn) (domain.Turn, error) {
	if f.err != nil {
		return domain.Turn{}, f.err
	}
	t := f.turn
	t.Query = query
	return t, nil
}

func typeAndSubmit(m Model, text string) (Model, tea.Cmd) {
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestSubmitRunsTurn(t *testing.T) {
	m := New(&fakeAnswerer{turn: domain.Turn{Answer: "answer", Sources: []string{"a.pdf"}}}, "test-model")
	m.ready = true

	m, cmd := typeAndSubmit(m, "a question")
	if !m.generating {
		t.Fatal("expected model to enter generating state")
	}
	if cmd == nil {
		t.Fatal("expected a command to run the turn")
	}

	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.generating {
		t.Error("expected model back in awaiting-input state")
	}
	if len(m.history) != 1 {
		t.Fatalf("expected 1 turn in history, got %d", len(m.history))
	}
	if m.history[0].Query != "a question" || m.history[0].Answer != "answer" {
		t.Errorf("unexpected turn: %+v", m.history[0])
	}
	if !strings.Contains(m.renderTranscript(), "a.pdf") {
		t.Error("transcript does not show sources")
	}
}

func TestTurnErrorPreservesConversation(t *testing.T) {
	m := New(&fakeAnswerer{turn: domain.Turn{Answer: "first"}}, "test-model")
	m.ready = true

	m, cmd := typeAndSubmit(m, "q1")
	next, _ := m.Update(cmd())
	m = next.(Model)

	m.answerer = &fakeAnswerer{err: errors.New("rate limited")}
	m, cmd = typeAndSubmit(m, "q2")
	next, _ = m.Update(cmd())
	m = next.(Model)

	if len(m.history) != 1 {
		t.Errorf("failed turn must not change history, got %d turns", len(m.history))
	}
	if !strings.Contains(m.status, "rate limited") {
		t.Errorf("expected inline error in status, got %q", m.status)
	}
	if m.generating {
		t.Error("expected model back in awaiting-input state after error")
	}
}

func TestIgnoresInputWhileGenerating(t *testing.T) {
	m := New(&fakeAnswerer{turn: domain.Turn{Answer: "x"}}, "test-model")
	m.ready = true

	m, _ = typeAndSubmit(m, "q1")

	// A second submit mid-generation must not start another turn.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd != nil {
		t.Error("expected no new command while generating")
	}
	if !m.generating {
		t.Error("model should still be generating")
	}
}

func TestReset(t *testing.T) {
	m := New(&fakeAnswerer{turn: domain.Turn{Answer: "x"}}, "test-model")
	m.ready = true

	m, cmd := typeAndSubmit(m, "q1")
	next, _ := m.Update(cmd())
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)

	if len(m.history) != 0 {
		t.Errorf("expected empty history after reset, got %d turns", len(m.history))
	}
}
