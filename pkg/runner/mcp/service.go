// Package mcp provides the Model Context Protocol server integration for akats.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/export"
	"tableflip.dev/akats/pkg/timeline"
)

// Source is the episode directory. *directory.Store satisfies it.
type Source interface {
	Refresh(ctx context.Context)
	Resolved() bool
	Episodes() []episode.Episode
	Find(number int) (episode.Episode, bool)
}

// Service answers MCP tool and resource calls from the directory.
type Service struct {
	Directory Source
}

// ErrEpisodeNotFound is returned when an episode number is not listed.
var ErrEpisodeNotFound = errors.New("episode not found")

// EpisodeSummary is a compact listing row.
type EpisodeSummary struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Questions int    `json:"questions"`
}

// EpisodeDTO is a transport-friendly projection of an episode.
type EpisodeDTO struct {
	EpisodeSummary
	Timeline []timeline.Line `json:"timeline,omitempty"`
	Export   string          `json:"export,omitempty"`
}

// QuestionHit is one question matched by SearchQuestions.
type QuestionHit struct {
	Episode  int    `json:"episode"`
	Name     string `json:"name"`
	At       string `json:"at"`
	Found    bool   `json:"found"`
	Question string `json:"question"`
}

// NewService constructs a Service.
func NewService(dir Source) *Service {
	return &Service{Directory: dir}
}

func (s *Service) ensure(ctx context.Context) error {
	if s.Directory == nil {
		return errors.New("mcp service requires a directory")
	}
	if !s.Directory.Resolved() {
		s.Directory.Refresh(ctx)
	}
	return ctx.Err()
}

// Reload refetches the directory and returns the episode count.
func (s *Service) Reload(ctx context.Context) (int, error) {
	if s.Directory == nil {
		return 0, errors.New("mcp service requires a directory")
	}
	s.Directory.Refresh(ctx)
	return len(s.Directory.Episodes()), ctx.Err()
}

// ListEpisodes returns a row per episode. Episodes without a timeline are
// skipped unless includeMissing.
func (s *Service) ListEpisodes(ctx context.Context, includeMissing bool) ([]EpisodeSummary, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	eps := s.Directory.Episodes()
	out := make([]EpisodeSummary, 0, len(eps))
	for _, ep := range eps {
		if !includeMissing && !ep.HasTimeline() {
			continue
		}
		out = append(out, summarize(ep))
	}
	return out, nil
}

// Episode returns one episode with its compacted timeline.
func (s *Service) Episode(ctx context.Context, number int) (*EpisodeDTO, error) {
	ep, err := s.find(ctx, number)
	if err != nil {
		return nil, err
	}
	dto := &EpisodeDTO{EpisodeSummary: summarize(ep)}
	if ep.HasTimeline() {
		lines, err := timeline.Lines(ep.FoundResults)
		if err != nil {
			return nil, err
		}
		dto.Timeline = lines
		if dto.Export, err = export.ForEpisode(ep); err != nil {
			return nil, err
		}
	}
	return dto, nil
}

// Export returns the copy-ready timeline text of an episode.
func (s *Service) Export(ctx context.Context, number int) (string, error) {
	ep, err := s.find(ctx, number)
	if err != nil {
		return "", err
	}
	return export.ForEpisode(ep)
}

// SearchQuestions finds compacted timeline entries whose question contains
// query, case-insensitively. A limit of zero or less means no limit.
func (s *Service) SearchQuestions(ctx context.Context, query string, limit int) ([]QuestionHit, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, errors.New("query is required")
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	var hits []QuestionHit
	for _, ep := range s.Directory.Episodes() {
		if !ep.HasTimeline() {
			continue
		}
		lines, err := timeline.Lines(ep.FoundResults)
		if err != nil {
			continue
		}
		for _, l := range lines {
			if !strings.Contains(strings.ToLower(l.Question), q) {
				continue
			}
			hits = append(hits, QuestionHit{Episode: ep.Number, Name: ep.Name, At: l.At, Found: l.Found, Question: l.Question})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Episode > hits[j].Episode
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Service) find(ctx context.Context, number int) (episode.Episode, error) {
	if err := s.ensure(ctx); err != nil {
		return episode.Episode{}, err
	}
	ep, ok := s.Directory.Find(number)
	if !ok {
		return episode.Episode{}, fmt.Errorf("%w: %d", ErrEpisodeNotFound, number)
	}
	return ep, nil
}

func summarize(ep episode.Episode) EpisodeSummary {
	sum := EpisodeSummary{
		Number:  ep.Number,
		Name:    ep.Name,
		Status:  ep.Status().String(),
		Message: ep.StatusMessage(),
	}
	if ep.FoundResults != nil {
		sum.Questions = len(ep.FoundResults.Questions)
	}
	return sum
}
