package port

import "leximini/internal/domain"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorIndex stores (vector, passage) entries and searches them by
// similarity. An index is built once by an ingestion run and read-only
// during a chat session.
type VectorIndex interface {
	// Add appends entries to the index. Entry vectors must match the
	// dimension recorded in the index manifest.
	Add(entries []IndexEntry) error

	// Search finds the k entries nearest to the query vector, ordered by
	// descending similarity. Equal scores order by insertion: first added
	// wins.
	Search(query []float32, k int) ([]domain.ScoredPassage, error)

	// Manifest returns the manifest the index was built with.
	Manifest() domain.Manifest

	// Count returns the number of entries in the index.
	Count() (int, error)

	Close() error
}

// IndexEntry is a vector paired with the passage it embeds.
type IndexEntry struct {
	Vector  []float32
	Passage domain.Passage
}
