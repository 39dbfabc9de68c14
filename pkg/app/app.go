// Package app wires the episode directory, the refresh gate and export into
// one session that UIs and CLIs share.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"tableflip.dev/akats/pkg/directory"
	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/export"
	"tableflip.dev/akats/pkg/gate"
	"tableflip.dev/akats/pkg/logging"
	"tableflip.dev/akats/pkg/remote"
	"tableflip.dev/akats/pkg/store"
	"tableflip.dev/akats/pkg/theme"
)

// ErrEpisodeNotFound is returned when an episode number is not in the
// directory.
var ErrEpisodeNotFound = errors.New("app: episode not found")

// Session is constructed once per run and owns every stateful component.
type Session struct {
	Remote    *remote.Client
	Directory *directory.Store
	Gate      *gate.Controller
	Copier    *export.Copier
	Palette   theme.Palette
	Logger    *slog.Logger

	credentials store.Credentials
}

// Options tweaks session construction.
type Options struct {
	Logger      *slog.Logger
	Credentials store.Credentials
	UserAgent   string
	// ReloadDelay overrides gate.ReloadDelay when non-zero.
	ReloadDelay time.Duration
	Rand        *rand.Rand
}

// NewSession builds a session from cfg. Credentials are loaded from cfg
// unless provided in opts.
func NewSession(cfg store.Config, opts Options) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("app: no config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	creds := opts.Credentials
	if creds == nil {
		var err error
		creds, err = store.LoadCredentials(cfg)
		if err != nil {
			return nil, err
		}
	}

	client, err := remote.NewClient(cfg.ServerURL(), remote.WithLogger(logger), remote.WithUserAgent(opts.UserAgent))
	if err != nil {
		return nil, err
	}

	dir := directory.New(client, directory.WithLogger(logger))

	gateOpts := []gate.Option{gate.WithLogger(logger)}
	if opts.ReloadDelay != 0 {
		gateOpts = append(gateOpts, gate.WithReloadDelay(opts.ReloadDelay))
	}

	return &Session{
		Remote:    client,
		Directory: dir,
		Gate:      gate.New(client, dir, creds, gateOpts...),
		Copier:    export.NewCopier(),
		Palette:   theme.Random(opts.Rand),
		Logger:    logger,

		credentials: creds,
	}, nil
}

// Activate performs the initial directory fetch and loads the persisted
// refresh key.
func (s *Session) Activate(ctx context.Context) error {
	if err := s.Gate.Activate(ctx); err != nil {
		return err
	}
	s.Directory.Refresh(ctx)
	return nil
}

// FollowCredentials keeps the gate key in step with keys written by other
// akats processes until ctx is cancelled. Stores that cannot be watched
// are left alone.
func (s *Session) FollowCredentials(ctx context.Context) error {
	w, ok := s.credentials.(store.Watcher)
	if !ok {
		return nil
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go s.Gate.Follow(events)
	return nil
}

// Episode looks up an episode by number.
func (s *Session) Episode(number int) (episode.Episode, error) {
	ep, ok := s.Directory.Find(number)
	if !ok {
		return episode.Episode{}, fmt.Errorf("%w: %d", ErrEpisodeNotFound, number)
	}
	return ep, nil
}

// Export returns the copy-ready timeline text of an episode.
func (s *Session) Export(number int) (string, error) {
	ep, err := s.Episode(number)
	if err != nil {
		return "", err
	}
	return export.ForEpisode(ep)
}

// CopyExport formats an episode and writes it to the clipboard. Clipboard
// failures are logged and returned, never retried.
func (s *Session) CopyExport(number int) (string, error) {
	text, err := s.Export(number)
	if err != nil {
		return "", err
	}
	if err := s.Copier.Copy(text); err != nil {
		s.Logger.Debug("clipboard write failed", logging.FieldEpisode, number, "error", err)
		return text, err
	}
	return text, nil
}
