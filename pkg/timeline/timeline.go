// Package timeline reduces the raw per-question match events of an episode
// into a display-ready timeline.
package timeline

import (
	"fmt"

	"tableflip.dev/akats/pkg/episode"
)

// Compact keeps one event per maximal run of consecutive events sharing a
// question index, and that event is the last of its run. The input is not
// modified.
func Compact(in []episode.DetectedTimeStamp) []episode.DetectedTimeStamp {
	out := make([]episode.DetectedTimeStamp, 0, len(in))
	for _, ts := range in {
		if n := len(out); n > 0 && out[n-1].QuestionIdx == ts.QuestionIdx {
			out[n-1] = ts
			continue
		}
		out = append(out, ts)
	}
	return out
}

// Line is a compacted timestamp joined with its question text.
type Line struct {
	At       string `json:"at"`
	Question string `json:"question"`
	Found    bool   `json:"found"`
}

func (l Line) String() string {
	return l.At + " " + l.Question
}

// Lines compacts the timestamps of res and resolves the shortened question
// text of every entry.
func Lines(res *episode.AnalyzeResults) ([]Line, error) {
	if res == nil {
		return nil, nil
	}
	compacted := Compact(res.TimeStamp)
	lines := make([]Line, 0, len(compacted))
	for _, ts := range compacted {
		q, err := res.Question(ts.QuestionIdx)
		if err != nil {
			return nil, fmt.Errorf("timeline: resolve question at %q: %w", ts.AtStr, err)
		}
		lines = append(lines, Line{At: ts.AtStr, Question: q.Shortened, Found: ts.Found})
	}
	return lines, nil
}
