// Package episode holds the podcast episode records served by the analysis
// service and the question timestamps attached to them.
package episode

import (
	"errors"
	"fmt"
)

// ErrQuestionIndex is returned when a timestamp references a question that
// does not exist in its results.
var ErrQuestionIndex = errors.New("episode: question index out of range")

// Episode is one unit of podcast content and its analysis status. Episodes
// are created by the remote service and replaced wholesale on every fetch.
type Episode struct {
	Number           int             `json:"number"`
	RawNumber        string          `json:"rawNumber"`
	Name             string          `json:"name"`
	FoundDescription bool            `json:"foundDescription"`
	FoundVTT         bool            `json:"foundVTT"`
	FoundResults     *AnalyzeResults `json:"foundResults,omitempty"`
}

// AnalyzeResults is the output of the remote analysis for one episode.
type AnalyzeResults struct {
	Questions []QuestionType      `json:"questions"`
	TimeStamp []DetectedTimeStamp `json:"timeStamp"`
	Err       string              `json:"err"`
}

// QuestionType is a question as mined from the episode description.
type QuestionType struct {
	Full       string `json:"full"`
	Searchable string `json:"searchable"`
	// Shortened is the display and export form. The service spells the
	// field "shortent".
	Shortened string `json:"shortent"`
}

// DetectedTimeStamp is a single match of a question in the captions, in the
// order the service detected it.
type DetectedTimeStamp struct {
	QuestionIdx int    `json:"questionIdx"`
	AtStr       string `json:"atStr"`
	Found       bool   `json:"found"`
}

// Question returns the question at idx.
func (r *AnalyzeResults) Question(idx int) (QuestionType, error) {
	if r == nil || idx < 0 || idx >= len(r.Questions) {
		return QuestionType{}, fmt.Errorf("%w: %d", ErrQuestionIndex, idx)
	}
	return r.Questions[idx], nil
}

// HasTimeline reports whether the episode carries questions and timestamps
// that can be displayed.
func (e Episode) HasTimeline() bool {
	return e.FoundResults != nil && e.FoundResults.Questions != nil && e.FoundResults.TimeStamp != nil
}

// Title is the label used when listing the episode.
func (e Episode) Title() string {
	if e.Name == "" {
		return fmt.Sprintf("#%d", e.Number)
	}
	return e.Name
}
