package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/pkg/gemini"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Manage hosted retrieval stores",
}

var storesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List retrieval stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := gemini.NewClient(cfg.Gemini.Key, gemini.WithBaseURL(cfg.Gemini.BaseURL))

		stores, err := client.ListStores(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "list stores")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stores)
	},
}

var storesDeleteCmd = &cobra.Command{
	Use:   "delete <store-name>",
	Short: "Delete a retrieval store and its documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := gemini.NewClient(cfg.Gemini.Key, gemini.WithBaseURL(cfg.Gemini.BaseURL))

		if err := client.DeleteStore(cmd.Context(), args[0]); err != nil {
			return eris.Wrapf(err, "delete store %s", args[0])
		}

		zap.L().Info("store deleted", zap.String("store", args[0]))
		return nil
	},
}

func init() {
	storesCmd.AddCommand(storesListCmd)
	storesCmd.AddCommand(storesDeleteCmd)
	rootCmd.AddCommand(storesCmd)
}
