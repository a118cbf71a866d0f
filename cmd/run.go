package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/model"
)

var (
	runTarget   string
	runCorpus   string
	runBudget   string
	runMaxPages int
	runTopN     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a knowledge base for a single target site",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		req := model.Request{
			Target:     runTarget,
			CorpusName: runCorpus,
			Budget:     model.BudgetMode(runBudget),
			MaxPages:   runMaxPages,
			TopN:       runTopN,
		}

		result, err := e.Pipeline.Run(ctx, req)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("knowledge base built",
			zap.String("target", runTarget),
			zap.String("provider", result.ProviderUsed),
			zap.Int("pages", result.PagesScraped),
			zap.Int("documents", result.DocumentsCreated),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runTarget, "target", "", "target website URL (required)")
	runCmd.Flags().StringVar(&runCorpus, "corpus", "", "retrieval store display name (default derived from target)")
	runCmd.Flags().StringVar(&runBudget, "budget", "optimal", "budget mode: minimal, optimal, or premium")
	runCmd.Flags().IntVar(&runMaxPages, "max-pages", 0, "max pages to crawl (default from config)")
	runCmd.Flags().IntVar(&runTopN, "top-n", 0, "candidate providers to rank (default from config)")
	_ = runCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(runCmd)
}
