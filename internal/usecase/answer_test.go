package usecase

import (
	"errors"
	"strings"
	"testing"

	"leximini/internal/domain"
	"leximini/internal/port"
)

type fakeRetriever struct {
	results []domain.ScoredPassage
	err     error
}

func (f *fakeRetriever) Retrieve(query string, k int) ([]domain.ScoredPassage, error) {
	return f.results, f.err
}

type fakeLLM struct {
	answer   string
	err      error
	calls    int
	lastMsgs []port.Message
}

func (f *fakeLLM) Generate(prompt string) (string, error) {
	return f.Chat([]port.Message{{Role: "user", Content: prompt}})
}

func (f *fakeLLM) GenerateWithSystem(system, user string) (string, error) {
	return f.Chat([]port.Message{{Role: "system", Content: system}, {Role: "user", Content: user}})
}

func (f *fakeLLM) Chat(messages []port.Message) (string, error) {
	f.calls++
	f.lastMsgs = messages
	return f.answer, f.err
}

func (f *fakeLLM) ModelName() string { return "fake" }

func scoredPassage(source, text string, score float64) domain.ScoredPassage {
	return domain.ScoredPassage{
		Passage: domain.Passage{ID: text, Source: source, Text: text},
		Score:   score,
	}
}

func TestAnswerWithContext(t *testing.T) {
	retr := &fakeRetriever{results: []domain.ScoredPassage{
		scoredPassage("ipc.pdf", "Section 420 covers cheating.", 0.9),
		scoredPassage("contracts.pdf", "Force majeure excuses performance.", 0.8),
		scoredPassage("ipc.pdf", "Another passage from the same file.", 0.7),
	}}
	gen := &fakeLLM{answer: "Here is the answer."}

	uc, err := NewAnswerUseCase(retr, gen, 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	turn, err := uc.Answer("what is cheating?", nil)
	if err != nil {
		t.Fatal(err)
	}

	if turn.Answer != "Here is the answer." {
		t.Errorf("unexpected answer: %q", turn.Answer)
	}
	// Sources are the documents supplied as context, deduplicated in order.
	if len(turn.Sources) != 2 || turn.Sources[0] != "ipc.pdf" || turn.Sources[1] != "contracts.pdf" {
		t.Errorf("unexpected sources: %v", turn.Sources)
	}

	system := gen.lastMsgs[0]
	if system.Role != "system" {
		t.Fatalf("expected system message first, got %s", system.Role)
	}
	if !strings.Contains(system.Content, "[source: ipc.pdf]") {
		t.Error("prompt does not tag passages with their source")
	}
	if !strings.Contains(system.Content, "Force majeure excuses performance.") {
		t.Error("prompt does not include retrieved passage text")
	}
}

func TestAnswerNoContextShortCircuits(t *testing.T) {
	retr := &fakeRetriever{results: nil}
	gen := &fakeLLM{answer: "should never be used"}

	uc, err := NewAnswerUseCase(retr, gen, 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	turn, err := uc.Answer("anything at all", nil)
	if err != nil {
		t.Fatal(err)
	}

	if turn.Answer != NoContextAnswer {
		t.Errorf("expected explicit no-context answer, got %q", turn.Answer)
	}
	if len(turn.Sources) != 0 {
		t.Errorf("expected no sources, got %v", turn.Sources)
	}
	if gen.calls != 0 {
		t.Errorf("LLM should not be called with empty context, got %d calls", gen.calls)
	}
}

func TestAnswerHistoryWindow(t *testing.T) {
	retr := &fakeRetriever{results: []domain.ScoredPassage{
		scoredPassage("a.txt", "context", 1.0),
	}}
	gen := &fakeLLM{answer: "ok"}

	uc, err := NewAnswerUseCase(retr, gen, 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	history := []domain.Turn{
		{Query: "q1", Answer: "a1"},
		{Query: "q2", Answer: "a2"},
		{Query: "q3", Answer: "a3"},
	}

	if _, err := uc.Answer("q4", history); err != nil {
		t.Fatal(err)
	}

	// system + 2 history turns (2 messages each) + current question.
	if len(gen.lastMsgs) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(gen.lastMsgs))
	}
	if gen.lastMsgs[1].Content != "q2" {
		t.Errorf("oldest turn should be dropped; got %q first", gen.lastMsgs[1].Content)
	}
	if gen.lastMsgs[5].Content != "q4" {
		t.Errorf("expected current question last, got %q", gen.lastMsgs[5].Content)
	}
}

func TestAnswerProviderErrorFailsTurn(t *testing.T) {
	retr := &fakeRetriever{results: []domain.ScoredPassage{
		scoredPassage("a.txt", "context", 1.0),
	}}
	gen := &fakeLLM{err: errors.New("rate limited")}

	uc, err := NewAnswerUseCase(retr, gen, 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uc.Answer("q", nil); err == nil {
		t.Error("expected provider error to surface")
	}
}

func TestAnswerRetrievalErrorFailsTurn(t *testing.T) {
	retr := &fakeRetriever{err: errors.New("embedding provider down")}
	gen := &fakeLLM{answer: "unused"}

	uc, err := NewAnswerUseCase(retr, gen, 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uc.Answer("q", nil); err == nil {
		t.Error("expected retrieval error to surface")
	}
	if gen.calls != 0 {
		t.Error("LLM should not be called when retrieval fails")
	}
}
