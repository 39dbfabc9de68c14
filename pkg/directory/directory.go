// Package directory holds the episode list fetched from the analysis service.
package directory

import (
	"context"
	"log/slog"
	"sync"

	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/logging"
)

// Source lists episodes. *remote.Client satisfies it.
type Source interface {
	Episodes(ctx context.Context) ([]episode.Episode, error)
}

// LoadState describes what the directory currently knows.
type LoadState int

const (
	// Unresolved means no fetch has completed yet.
	Unresolved LoadState = iota
	// Empty means a fetch completed with no episodes, or failed.
	Empty
	// Populated means a fetch completed with at least one episode.
	Populated
)

func (s LoadState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	default:
		return "unknown"
	}
}

// Store owns the current episode collection. A failed fetch is recorded as
// an empty collection; callers cannot tell it apart from a service that has
// no episodes.
type Store struct {
	source Source
	logger *slog.Logger

	mu         sync.RWMutex
	episodes   []episode.Episode
	resolved   bool
	generation uint64
}

// Option customises a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.Component(logger, "directory")
	}
}

// New creates an unresolved Store reading from source.
func New(source Source, opts ...Option) *Store {
	s := &Store{
		source: source,
		logger: logging.Component(nil, "directory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches the episode list and replaces the held collection. Errors
// are logged and turn into an empty collection.
func (s *Store) Refresh(ctx context.Context) {
	var eps []episode.Episode
	if s.source != nil {
		fetched, err := s.source.Episodes(ctx)
		if err != nil {
			s.logger.Warn("episode fetch failed, showing empty directory", "error", err)
		} else {
			eps = fetched
		}
	}
	if eps == nil {
		eps = []episode.Episode{}
	}

	s.mu.Lock()
	s.episodes = eps
	s.resolved = true
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.logger.Debug("directory refreshed", "episodes", len(eps), "generation", gen)
}

// State reports the three-valued load state.
func (s *Store) State() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case !s.resolved:
		return Unresolved
	case len(s.episodes) == 0:
		return Empty
	default:
		return Populated
	}
}

// Resolved reports whether a fetch has completed at least once.
func (s *Store) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// Episodes returns a copy of the held collection. It is nil while
// unresolved.
func (s *Store) Episodes() []episode.Episode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.episodes == nil {
		return nil
	}
	out := make([]episode.Episode, len(s.episodes))
	copy(out, s.episodes)
	return out
}

// Find returns the episode with the given number.
func (s *Store) Find(number int) (episode.Episode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ep := range s.episodes {
		if ep.Number == number {
			return ep, true
		}
	}
	return episode.Episode{}, false
}

// Generation counts completed refreshes.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
