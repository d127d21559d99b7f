package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"leximini/internal/adapter/index"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index information",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	idx, err := index.Open(cfg.IndexPath)
	if err != nil {
		if errors.Is(err, index.ErrNoIndex) {
			return fmt.Errorf("no index found at %q. Run 'leximini ingest' first", cfg.IndexPath)
		}
		return err
	}
	defer idx.Close()

	m := idx.Manifest()
	fmt.Printf("Index:           %s\n", cfg.IndexPath)
	fmt.Printf("Embedding model: %s (dimension %d)\n", m.Model, m.Dimension)
	fmt.Printf("Documents:       %d\n", m.Documents)
	fmt.Printf("Passages:        %d\n", m.Entries)
	fmt.Printf("Created:         %s\n", m.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Ingest run:      %s\n", m.RunID)

	return nil
}
