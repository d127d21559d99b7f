package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"leximini/internal/domain"
	"leximini/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// NoContextAnswer is returned verbatim when retrieval finds nothing, so the
// assistant never fabricates sourced claims from an empty context.
const NoContextAnswer = "I could not find any relevant context in the indexed documents for this question. " +
	"Try rephrasing it, or run ingestion with documents that cover the topic."

// Disclaimer is appended to every generated answer by the presentation layer.
const Disclaimer = "Disclaimer: this response is generated by an AI assistant for informational purposes " +
	"only and is not legal advice. Consult a qualified legal professional for specific legal matters."

// AnswerUseCase turns a user question into an answer with source attribution:
// retrieve the top-k passages, compose a prompt with the bounded conversation
// history, and ask the hosted LLM.
type AnswerUseCase struct {
	retriever     port.Retriever
	llm           port.LLM
	topK          int
	historyWindow int
	systemTmpl    *template.Template
}

// NewAnswerUseCase creates a new answer use case.
func NewAnswerUseCase(retriever port.Retriever, llm port.LLM, topK, historyWindow int) (*AnswerUseCase, error) {
	tmplContent, err := promptTemplates.ReadFile("templates/answer_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("prompt template not found: %w", err)
	}

	tmpl, err := template.New("answer").Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}

	if topK <= 0 {
		topK = 4
	}
	if historyWindow < 0 {
		historyWindow = 0
	}

	return &AnswerUseCase{
		retriever:     retriever,
		llm:           llm,
		topK:          topK,
		historyWindow: historyWindow,
		systemTmpl:    tmpl,
	}, nil
}

type promptData struct {
	Passages []domain.ScoredPassage
}

// Answer runs one conversation turn. The reported sources are the documents
// supplied as context, not the ones the model chose to rely on. Empty
// retrieval short-circuits to an explicit no-context answer without an LLM
// call. A provider error fails only this turn.
func (u *AnswerUseCase) Answer(query string, history []domain.Turn) (domain.Turn, error) {
	passages, err := u.retriever.Retrieve(query, u.topK)
	if err != nil {
		return domain.Turn{}, err
	}

	if len(passages) == 0 {
		return domain.Turn{
			Query:     query,
			Answer:    NoContextAnswer,
			CreatedAt: time.Now(),
		}, nil
	}

	var buf bytes.Buffer
	if err := u.systemTmpl.Execute(&buf, promptData{Passages: passages}); err != nil {
		return domain.Turn{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	messages := []port.Message{{Role: "system", Content: buf.String()}}
	for _, turn := range lastN(history, u.historyWindow) {
		messages = append(messages,
			port.Message{Role: "user", Content: turn.Query},
			port.Message{Role: "assistant", Content: turn.Answer},
		)
	}
	messages = append(messages, port.Message{Role: "user", Content: query})

	answer, err := u.llm.Chat(messages)
	if err != nil {
		return domain.Turn{}, fmt.Errorf("answer generation failed: %w", err)
	}

	return domain.Turn{
		Query:     query,
		Answer:    answer,
		Sources:   collectSources(passages),
		CreatedAt: time.Now(),
	}, nil
}

func lastN(turns []domain.Turn, n int) []domain.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// collectSources returns the distinct source documents in retrieval order.
func collectSources(passages []domain.ScoredPassage) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, p := range passages {
		if !seen[p.Passage.Source] {
			seen[p.Passage.Source] = true
			sources = append(sources, p.Passage.Source)
		}
	}
	return sources
}
