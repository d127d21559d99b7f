package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"leximini/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "leximini",
	Short: "LexiMini - a retrieval-augmented legal assistant",
	Long: `LexiMini ingests PDF and text documents into a vector index and answers
questions about them with source attribution, using a hosted LLM.

Example usage:
  leximini ingest           # Index the documents in the data directory
  leximini ask -q "what is a force majeure clause?"
  leximini chat             # Interactive chat session`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win either way.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./leximini.yaml)")
}

func GetConfig() *config.Config {
	return cfg
}
