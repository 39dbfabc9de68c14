package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/akats/pkg/runner/about"
)

func addAbout(topLevel *cobra.Command) {
	a := &about.About{}
	cmd := &cobra.Command{
		Use:   "about",
		Short: "what akats is and how to get a refresh key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Out = cmd.OutOrStdout()
			return a.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&a.Style, "style", "dark", "Glamour style: dark, light or notty.")
	cmd.Flags().IntVar(&a.Width, "width", 80, "Wrap width.")

	topLevel.AddCommand(cmd)
}
