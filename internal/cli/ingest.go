package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"leximini/internal/adapter/chunker"
	"leximini/internal/adapter/index"
	"leximini/internal/adapter/loader"
	"leximini/internal/domain"
	"leximini/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest documents into the vector index",
	Long: `Load PDF and text documents from the data directory, split them into
overlapping passages, embed each passage, and write a fresh vector index.
Any existing index file is overwritten.

Examples:
  leximini ingest                # Ingest the configured data directory
  leximini ingest ./contracts    # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	dataDir := cfg.Ingest.DataDir
	if len(args) > 0 {
		var err error
		dataDir, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	chk, err := chunker.NewRecursiveChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("invalid chunking parameters: %w", err)
	}

	ld := loader.NewDirectoryLoader(cfg.Ingest.Includes, cfg.Ingest.Excludes)

	// Build into a staging file so a mid-run failure neither destroys the
	// previous index nor leaves a partial one behind.
	idx, err := index.CreateStaged(cfg.IndexPath, domain.Manifest{
		RunID:     uuid.NewString(),
		Model:     emb.ModelName(),
		Dimension: emb.Dimension(),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	ingestUC := usecase.NewIngestUseCase(ld, chk, emb, idx)

	fmt.Printf("Ingesting %s with %s...\n", dataDir, emb.ModelName())

	var bar *progressbar.ProgressBar
	progress := func(processed, total int, source string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(processed)
	}

	result, err := ingestUC.Ingest(dataDir, progress)
	if err != nil {
		idx.Discard()
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if err := idx.SetDocuments(result.DocumentsLoaded); err != nil {
		idx.Discard()
		return fmt.Errorf("failed to finalize index: %w", err)
	}
	if err := idx.Commit(); err != nil {
		return err
	}

	fmt.Printf("Indexed %d passages from %d documents into %s\n",
		result.PassagesIndexed, result.DocumentsLoaded, cfg.IndexPath)

	if len(result.Errors) > 0 {
		fmt.Printf("\n%d files skipped:\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	return nil
}
