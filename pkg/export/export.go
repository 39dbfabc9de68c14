// Package export renders a compacted timeline into copy-ready text.
package export

import (
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/timeline"
)

// ErrNoTimeline is returned when an episode has nothing to export.
var ErrNoTimeline = errors.New("export: episode has no timeline")

// Format renders one "<atStr> <shortened question>" line per timeline entry,
// joined by a newline without a trailing one. An entry referencing a missing
// question fails the whole export.
func Format(entries []episode.DetectedTimeStamp, questions []episode.QuestionType) (string, error) {
	var b strings.Builder
	for i, ts := range entries {
		if ts.QuestionIdx < 0 || ts.QuestionIdx >= len(questions) {
			return "", fmt.Errorf("export: line %d: %w: %d", i+1, episode.ErrQuestionIndex, ts.QuestionIdx)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ts.AtStr)
		b.WriteByte(' ')
		b.WriteString(questions[ts.QuestionIdx].Shortened)
	}
	return b.String(), nil
}

// ForEpisode compacts the timestamps of ep and formats them.
func ForEpisode(ep episode.Episode) (string, error) {
	if !ep.HasTimeline() {
		return "", ErrNoTimeline
	}
	res := ep.FoundResults
	return Format(timeline.Compact(res.TimeStamp), res.Questions)
}
