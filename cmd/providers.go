package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/knowledge-cli/internal/catalog"
	"github.com/sells-group/knowledge-cli/internal/model"
)

var (
	providersBudget string
	providersType   string
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List catalog providers, optionally filtered by budget or target type",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, denylist, _, err := initSelection()
		if err != nil {
			return err
		}

		var providers []model.Provider
		switch {
		case providersBudget != "":
			providers, err = catalog.ByBudget(cat, model.BudgetMode(providersBudget))
			if err != nil {
				return eris.Wrap(err, "filter by budget")
			}
		case providersType != "":
			providers = catalog.ByTargetType(cat, model.TargetType(providersType))
		default:
			providers = cat.All()
		}

		allowed, _ := denylist.FilterBanned(providers)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(allowed)
	},
}

func init() {
	providersCmd.Flags().StringVar(&providersBudget, "budget", "", "filter by budget mode")
	providersCmd.Flags().StringVar(&providersType, "type", "", "filter by target type")
	rootCmd.AddCommand(providersCmd)
}
