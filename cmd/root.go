package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "knowledge-cli",
	Short: "Web knowledge base builder",
	Long:  "Selects a compliant scraping provider for a target site, scrapes it, converts pages to text documents, and uploads them to a hosted retrieval store.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
