package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"leximini/internal/usecase"
)

var askQuery string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a single question",
	Long: `Ask one question against the indexed documents and print the answer
with its sources.

Examples:
  leximini ask -q "what is a force majeure clause?"`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question to ask (required)")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	turn, err := answerer.Answer(askQuery, nil)
	if err != nil {
		return err
	}

	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Println(boldCyan("Answer:"))
	fmt.Println(turn.Answer)
	if len(turn.Sources) > 0 {
		fmt.Println()
		fmt.Println(yellow("Sources: " + strings.Join(turn.Sources, ", ")))
	}
	fmt.Println()
	fmt.Println(faint(usecase.Disclaimer))

	return nil
}
