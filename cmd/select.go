package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/knowledge-cli/internal/model"
)

var (
	selectBudget string
	selectTopN   int
)

var selectCmd = &cobra.Command{
	Use:   "select <target-url>",
	Short: "Rank providers for a target without scraping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, sel, err := initSelection()
		if err != nil {
			return err
		}

		selection, err := sel.Select(args[0], model.BudgetMode(selectBudget), selectTopN)
		if err != nil {
			return eris.Wrap(err, "select providers")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(selection)
	},
}

func init() {
	selectCmd.Flags().StringVar(&selectBudget, "budget", "optimal", "budget mode: minimal, optimal, or premium")
	selectCmd.Flags().IntVar(&selectTopN, "top-n", 0, "number of candidates to return")
	rootCmd.AddCommand(selectCmd)
}
