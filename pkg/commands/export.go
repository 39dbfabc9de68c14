package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/akats/pkg/runner/export"
)

func addExport(topLevel *cobra.Command, r *root) {
	e := &export.Export{}
	cmd := &cobra.Command{
		Use:   "export <number>",
		Short: "copy an episode's timestamps to the clipboard",
		Example: `
akats export 112
akats export 112 --print > timestamps.txt
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid episode number %q", args[0])
			}
			s, err := r.session()
			if err != nil {
				return err
			}
			e.Session = s
			e.Number = n
			e.Out = cmd.OutOrStdout()
			return e.Do(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&e.Print, "print", "p", false, "Print instead of copying to the clipboard.")

	topLevel.AddCommand(cmd)
}
