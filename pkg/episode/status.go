package episode

// Status explains whether an episode has a timeline and, if not, why.
type Status int

const (
	StatusReady Status = iota
	StatusNoDescription
	StatusNoCaptions
	StatusAnalysisError
	StatusNoTimestamps
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusNoDescription:
		return "no-description"
	case StatusNoCaptions:
		return "no-captions"
	case StatusAnalysisError:
		return "analysis-error"
	default:
		return "no-timestamps"
	}
}

// Status classifies the episode. The checks run in a fixed order: missing
// description wins over missing captions, which wins over an analysis error.
func (e Episode) Status() Status {
	switch {
	case e.HasTimeline():
		return StatusReady
	case !e.FoundDescription:
		return StatusNoDescription
	case !e.FoundVTT:
		return StatusNoCaptions
	case e.FoundResults != nil && e.FoundResults.Err != "":
		return StatusAnalysisError
	default:
		return StatusNoTimestamps
	}
}

// StatusMessage is the placeholder shown instead of a timeline. It is empty
// for episodes that have one.
func (e Episode) StatusMessage() string {
	switch e.Status() {
	case StatusReady:
		return ""
	case StatusNoDescription:
		return "Unable to read the description of this episode"
	case StatusNoCaptions:
		return "Unable to read the captions of this episode"
	case StatusAnalysisError:
		return "Analysis failed: " + e.FoundResults.Err
	default:
		return "Unable to get timestamps for this episode"
	}
}
