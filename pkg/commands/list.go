package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/akats/pkg/commands/options"
	"tableflip.dev/akats/pkg/runner/list"
)

func addList(topLevel *cobra.Command, r *root) {
	l := &list.List{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list episodes with their question timestamps",
		Example: `
akats list
akats list --all --number
akats list --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := r.session()
			if err != nil {
				return oo.HandleError(err)
			}
			l.Session = s
			l.JSON = oo.JSON
			l.Out = cmd.OutOrStdout()
			oo.Out = cmd.OutOrStdout()
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().BoolVar(&l.All, "all", false, "Also list episodes without timestamps.")
	cmd.Flags().BoolVarP(&l.ShowNumber, "number", "n", false, "Prefix each episode with its number.")

	topLevel.AddCommand(cmd)
}
