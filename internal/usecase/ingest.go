package usecase

import (
	"fmt"

	"leximini/internal/port"
)

// IngestUseCase runs the batch ingestion pipeline: load documents, chunk
// them, embed the passages, and append the entries to the vector index.
type IngestUseCase struct {
	loader   port.Loader
	chunker  port.Chunker
	embedder port.Embedder
	index    port.VectorIndex
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	loader port.Loader,
	chunker port.Chunker,
	embedder port.Embedder,
	index port.VectorIndex,
) *IngestUseCase {
	return &IngestUseCase{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

// IngestResult contains the results of an ingestion run.
type IngestResult struct {
	DocumentsLoaded int
	PassagesIndexed int
	Errors          []string
}

// ProgressFunc reports ingestion progress per document.
type ProgressFunc func(processed, total int, source string)

// Ingest processes every document under dataDir. Per-file load failures are
// accumulated; embedding or index failures abort the run, since a partial
// index would silently return incomplete retrieval results.
func (u *IngestUseCase) Ingest(dataDir string, progress ProgressFunc) (*IngestResult, error) {
	result := &IngestResult{}

	docs, loadErrs, err := u.loader.Load(dataDir)
	if err != nil {
		return nil, err
	}
	for _, e := range loadErrs {
		result.Errors = append(result.Errors, e.Error())
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents could be loaded from %q", dataDir)
	}

	for i, doc := range docs {
		passages, err := u.chunker.Chunk(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk %s: %w", doc.Source, err)
		}
		if len(passages) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: no passages produced", doc.Source))
			continue
		}

		texts := make([]string, len(passages))
		for j, p := range passages {
			texts[j] = p.Text
		}

		vectors, err := u.embedder.Embed(texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed %s: %w", doc.Source, err)
		}
		if len(vectors) != len(passages) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d passages of %s",
				len(vectors), len(passages), doc.Source)
		}

		entries := make([]port.IndexEntry, len(passages))
		for j := range passages {
			entries[j] = port.IndexEntry{
				Vector:  vectors[j],
				Passage: passages[j],
			}
		}

		if err := u.index.Add(entries); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", doc.Source, err)
		}

		result.DocumentsLoaded++
		result.PassagesIndexed += len(passages)

		if progress != nil {
			progress(i+1, len(docs), doc.Source)
		}
	}

	if result.PassagesIndexed == 0 {
		return nil, fmt.Errorf("ingestion produced no passages")
	}

	return result, nil
}
