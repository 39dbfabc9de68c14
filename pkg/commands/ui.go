package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/akats/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command, r *root) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
akats ui
`,
		ValidArgs: []string{},
		Annotations: map[string]string{quietLogs: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := r.session()
			if err != nil {
				return err
			}
			i := ui.UI{Session: s}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
