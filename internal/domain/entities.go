package domain

import "time"

// Document is a single source file loaded during ingestion. It is discarded
// once its passages have been produced.
type Document struct {
	ID      string
	Path    string
	Source  string // base filename, carried into passages for attribution
	Content string
}

// Passage is a contiguous slice of a document's text, sized for embedding.
type Passage struct {
	ID     string
	DocID  string
	Source string
	Seq    int // position within the document, 0-based
	Offset int // rune offset of the passage start in the document text
	Text   string
}

// ScoredPassage is a retrieval result.
type ScoredPassage struct {
	Passage Passage
	Score   float64
}

// Turn is one completed question/answer exchange. Turns live only in process
// memory for the duration of a chat session.
type Turn struct {
	Query     string
	Answer    string
	Sources   []string
	CreatedAt time.Time
}

// Manifest describes how an index file was built. The embedding model and
// dimension are validated when the index is opened so a query-time embedder
// mismatch fails loudly instead of silently degrading retrieval.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	Entries   int       `json:"entries"`
	Documents int       `json:"documents"`
	CreatedAt time.Time `json:"created_at"`
}
