package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"leximini/internal/adapter/chunker"
	"leximini/internal/adapter/embedding"
	"leximini/internal/adapter/index"
	"leximini/internal/adapter/loader"
	"leximini/internal/domain"
)

func newTestPipeline(t *testing.T) (*IngestUseCase, *RetrieveUseCase, *index.BoltIndex) {
	t.Helper()

	emb := embedding.NewMockEmbedder(64)
	chk, err := chunker.NewRecursiveChunker(200, 40)
	if err != nil {
		t.Fatal(err)
	}

	idx, err := index.Create(filepath.Join(t.TempDir(), "index.db"), domain.Manifest{
		RunID:     "test-run",
		Model:     emb.ModelName(),
		Dimension: emb.Dimension(),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })

	ld := loader.NewDirectoryLoader([]string{"**/*.txt"}, nil)
	return NewIngestUseCase(ld, chk, emb, idx), NewRetrieveUseCase(emb, idx), idx
}

func TestIngestThenRetrieve(t *testing.T) {
	dataDir := t.TempDir()
	content := "A force majeure clause excuses a party from performing its contractual " +
		"obligations when extraordinary events beyond its control, such as natural " +
		"disasters or war, make performance impossible or impracticable."
	if err := os.WriteFile(filepath.Join(dataDir, "force_majeure.txt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	ingestUC, retrieveUC, idx := newTestPipeline(t)

	var progressCalls int
	result, err := ingestUC.Ingest(dataDir, func(processed, total int, source string) {
		progressCalls++
		if source != "force_majeure.txt" {
			t.Errorf("unexpected source in progress: %s", source)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.DocumentsLoaded != 1 {
		t.Errorf("expected 1 document, got %d", result.DocumentsLoaded)
	}
	if result.PassagesIndexed == 0 {
		t.Error("expected at least one passage")
	}
	if progressCalls != 1 {
		t.Errorf("expected 1 progress call, got %d", progressCalls)
	}

	n, err := idx.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != result.PassagesIndexed {
		t.Errorf("index holds %d entries, result reports %d", n, result.PassagesIndexed)
	}

	results, err := retrieveUC.Retrieve("what is a force majeure clause?", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected non-empty top-k list")
	}
	if results[0].Passage.Source != "force_majeure.txt" {
		t.Errorf("expected top passage from force_majeure.txt, got %s", results[0].Passage.Source)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("results not ordered nearest-first")
		}
	}
}

type brokenEmbedder struct{}

func (brokenEmbedder) Embed(texts []string) ([][]float32, error) {
	return nil, errors.New("provider unavailable")
}
func (brokenEmbedder) Dimension() int    { return 64 }
func (brokenEmbedder) ModelName() string { return "mock" }

func TestFailedIngestPreservesPreviousIndex(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, "doc.txt"), []byte("some indexed content"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "index.db")

	emb := embedding.NewMockEmbedder(64)
	chk, err := chunker.NewRecursiveChunker(200, 40)
	if err != nil {
		t.Fatal(err)
	}
	ld := loader.NewDirectoryLoader([]string{"**/*.txt"}, nil)
	manifest := domain.Manifest{
		RunID:     "run-1",
		Model:     emb.ModelName(),
		Dimension: emb.Dimension(),
		CreatedAt: time.Now().UTC(),
	}

	staged, err := index.CreateStaged(path, manifest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewIngestUseCase(ld, chk, emb, staged).Ingest(dataDir, nil); err != nil {
		t.Fatal(err)
	}
	if err := staged.Commit(); err != nil {
		t.Fatal(err)
	}

	// A second run whose embedding provider fails must leave the
	// committed index untouched.
	staged, err = index.CreateStaged(path, manifest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewIngestUseCase(ld, chk, brokenEmbedder{}, staged).Ingest(dataDir, nil); err == nil {
		t.Fatal("expected ingest to fail with a broken provider")
	}
	if err := staged.Discard(); err != nil {
		t.Fatal(err)
	}

	idx, err := index.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	n, err := idx.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Error("expected previous index entries to survive the failed run")
	}
}

func TestIngestMissingDataDir(t *testing.T) {
	ingestUC, _, _ := newTestPipeline(t)

	if _, err := ingestUC.Ingest("/nonexistent/data", nil); err == nil {
		t.Error("expected error for missing data directory")
	}
}

func TestIngestAccumulatesPerFileErrors(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, "good.txt"), []byte("usable text content"), 0644); err != nil {
		t.Fatal(err)
	}
	// Whitespace-only file loads nothing but must not abort the batch.
	if err := os.WriteFile(filepath.Join(dataDir, "empty.txt"), []byte("   \n\t "), 0644); err != nil {
		t.Fatal(err)
	}

	ingestUC, _, _ := newTestPipeline(t)

	result, err := ingestUC.Ingest(dataDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.DocumentsLoaded != 1 {
		t.Errorf("expected 1 loaded document, got %d", result.DocumentsLoaded)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 per-file error, got %v", result.Errors)
	}
}
