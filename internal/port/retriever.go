package port

import "leximini/internal/domain"

// Retriever defines the interface for searching indexed content.
type Retriever interface {
	// Retrieve returns the top-k passages most relevant to the query.
	Retrieve(query string, k int) ([]domain.ScoredPassage, error)
}
