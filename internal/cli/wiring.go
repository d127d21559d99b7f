package cli

import (
	"errors"
	"fmt"

	"leximini/config"
	"leximini/internal/adapter/embedding"
	"leximini/internal/adapter/index"
	"leximini/internal/adapter/llm"
	"leximini/internal/port"
	"leximini/internal/usecase"
)

// buildEmbedder selects the embedding provider once from configuration.
func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	emb, err := embedding.New(
		cfg.Embedding.Provider,
		cfg.Embedding.Model,
		cfg.Embedding.APIKeyEnv,
		cfg.Embedding.BaseURL,
		cfg.Embedding.BatchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure embedding provider: %w", err)
	}
	return emb, nil
}

// openIndex opens the persisted index and validates it against the
// configured embedder, so a model mismatch fails before the first query.
func openIndex(cfg *config.Config, emb port.Embedder) (*index.BoltIndex, error) {
	idx, err := index.Open(cfg.IndexPath)
	if err != nil {
		if errors.Is(err, index.ErrNoIndex) {
			return nil, fmt.Errorf("no index found at %q. Run 'leximini ingest' first", cfg.IndexPath)
		}
		return nil, err
	}

	if err := idx.Validate(emb.ModelName(), emb.Dimension()); err != nil {
		idx.Close()
		return nil, fmt.Errorf("%w\nRe-run 'leximini ingest' with the current embedding configuration", err)
	}

	return idx, nil
}

// buildAnswerer wires the full question-answering path.
func buildAnswerer(cfg *config.Config, emb port.Embedder, idx *index.BoltIndex) (*usecase.AnswerUseCase, error) {
	generator, err := llm.New(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.APIKeyEnv, cfg.LLM.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	retriever := usecase.NewRetrieveUseCase(emb, idx)
	return usecase.NewAnswerUseCase(retriever, generator, cfg.Retrieve.TopK, cfg.Retrieve.HistoryWindow)
}
