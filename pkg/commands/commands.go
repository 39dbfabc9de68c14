package commands

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"tableflip.dev/akats/pkg/app"
	"tableflip.dev/akats/pkg/commands/options"
	"tableflip.dev/akats/pkg/logging"
	"tableflip.dev/akats/pkg/store"
)

var (
	oo = &options.OutputOptions{}
)

// root carries state shared by every subcommand once flags are parsed.
type root struct {
	cfg    store.Config
	logger *slog.Logger
	closer io.Closer
}

// quietLogs marks commands that own the terminal. Their logs are
// discarded unless a log file is configured.
const quietLogs = "akats/quiet-logs"

func New() *cobra.Command {
	r := &root{}

	cmd := &cobra.Command{
		Use:   "akats",
		Short: options.Wrap80("Question timestamps for the Ask Kati Anything! podcast."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return r.load(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return r.close()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("server", store.DefaultServer, "Episode service base URL.")
	cmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error.")
	cmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr.")

	addCommands(cmd, r)
	return cmd
}

func addCommands(topLevel *cobra.Command, r *root) {
	addUI(topLevel, r)
	addList(topLevel, r)
	addExport(topLevel, r)
	addRefresh(topLevel, r)
	addMCP(topLevel, r)
	addAbout(topLevel)
	addVersion(topLevel)
}

func (r *root) load(cmd *cobra.Command) error {
	cfg, err := store.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	opts := cfg.LogOptions()
	if cmd.Annotations[quietLogs] != "" && opts.File == "" {
		opts.Output = io.Discard
	} else {
		opts.Output = cmd.ErrOrStderr()
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return err
	}
	r.cfg, r.logger, r.closer = cfg, logger, closer
	logger.Debug("config loaded", "path", cfg.BasePath(), "server", cfg.ServerURL())
	return nil
}

func (r *root) close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

func (r *root) session() (*app.Session, error) {
	if r.cfg == nil {
		return nil, errors.New("config not loaded")
	}
	return app.NewSession(r.cfg, app.Options{
		Logger:    r.logger,
		UserAgent: "akats/" + version,
	})
}
