package printers

import (
	"encoding/json"
	"io"

	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/timeline"
)

// EpisodeJSON is the machine-readable form of a listed episode.
type EpisodeJSON struct {
	Number   int             `json:"number"`
	Name     string          `json:"name"`
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Timeline []timeline.Line `json:"timeline,omitempty"`
}

// JSON writes the compacted directory as indented JSON.
func JSON(w io.Writer, eps []episode.Episode) error {
	out := make([]EpisodeJSON, 0, len(eps))
	for _, ep := range eps {
		item := EpisodeJSON{
			Number:  ep.Number,
			Name:    ep.Name,
			Status:  ep.Status().String(),
			Message: ep.StatusMessage(),
		}
		if ep.HasTimeline() {
			lines, err := timeline.Lines(ep.FoundResults)
			if err != nil {
				item.Status = "invalid"
				item.Message = err.Error()
			} else {
				item.Timeline = lines
			}
		}
		out = append(out, item)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
