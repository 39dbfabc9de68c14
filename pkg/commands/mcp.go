package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"tableflip.dev/akats/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command, r *root) {
	var transport string
	m := &mcp.Runner{}
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "serve episodes and timestamps over the Model Context Protocol",
		Example: `
akats mcp
akats mcp --transport http --addr 127.0.0.1:8080
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := r.session()
			if err != nil {
				return err
			}
			m.Directory = s.Directory
			m.Version = version
			m.Transport = mcp.Transport(transport)
			m.Listening = func(addr net.Addr) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "MCP listening on http://%s%s\n", addr, m.Path)
			}
			return m.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportStdio), "Transport: stdio or http.")
	cmd.Flags().StringVar(&m.Addr, "addr", "127.0.0.1:8080", "Listen address for the http transport.")
	cmd.Flags().StringVar(&m.Path, "path", "/mcp", "Endpoint path for the http transport.")

	topLevel.AddCommand(cmd)
}
