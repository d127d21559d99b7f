package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"leximini/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session over the indexed documents. Each turn
retrieves relevant passages and asks the configured LLM for an answer with
source attribution. The conversation lives in memory only.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	idx, err := openIndex(cfg, emb)
	if err != nil {
		return err
	}
	defer idx.Close()

	answerer, err := buildAnswerer(cfg, emb, idx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(answerer, cfg.LLM.Model), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}

	return nil
}
