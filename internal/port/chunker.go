package port

import "leximini/internal/domain"

type Chunker interface {
	Chunk(doc domain.Document) ([]domain.Passage, error)
}
