package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/akats/pkg/runner/refresh"
)

func addRefresh(topLevel *cobra.Command, r *root) {
	rf := &refresh.Refresh{}
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "ask the episode service to look for new videos",
		Long: `Submits the refresh key to the episode service. The key comes from
--key, then the stored key, then a prompt. It is stored for next time.`,
		Example: `
akats refresh
akats refresh --key s3cret
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := r.session()
			if err != nil {
				return err
			}
			rf.Session = s
			rf.KeySet = cmd.Flags().Changed("key")
			rf.Out = cmd.OutOrStdout()
			return rf.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&rf.Key, "key", "", "Refresh key to submit.")

	topLevel.AddCommand(cmd)
}
