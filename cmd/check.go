package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <provider-id>",
	Short: "Check a catalog provider against the denylist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, denylist, _, err := initSelection()
		if err != nil {
			return err
		}

		for _, p := range cat.All() {
			if p.ID != args[0] {
				continue
			}

			verdict := struct {
				ProviderID      string `json:"provider_id"`
				Banned          bool   `json:"banned"`
				Pattern         string `json:"pattern,omitempty"`
				DenylistVersion string `json:"denylist_version"`
			}{
				ProviderID:      p.ID,
				DenylistVersion: denylist.Version(),
			}
			if banned, pattern := denylist.Match(p); banned {
				verdict.Banned = true
				verdict.Pattern = pattern
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(verdict)
		}

		return eris.Errorf("provider %s not found in catalog", args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
