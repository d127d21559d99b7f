package usecase

import (
	"fmt"

	"leximini/internal/domain"
	"leximini/internal/port"
)

// RetrieveUseCase embeds a query and finds the nearest passages in the index.
// No side effects beyond the embedding call.
type RetrieveUseCase struct {
	embedder port.Embedder
	index    port.VectorIndex
}

// NewRetrieveUseCase creates a new retrieve use case.
func NewRetrieveUseCase(embedder port.Embedder, index port.VectorIndex) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		index:    index,
	}
}

// Retrieve returns the top-k passages nearest to the query, ordered
// nearest-first with their source metadata.
func (u *RetrieveUseCase) Retrieve(query string, k int) ([]domain.ScoredPassage, error) {
	embeddings, err := u.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	results, err := u.index.Search(embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	return results, nil
}
