package printers

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/timeline"
)

// PrettyPrint writes episodes and their timelines as coloured text.
type PrettyPrint struct {
	ShowNumber bool
	// Missing also prints episodes that have no timeline.
	Missing bool
	Out     io.Writer
}

const numberWidth = 6

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " episode")
	default:
		_, _ = c.Fprintln(pp.out(), " episodes")
	}
}

// Directory prints every episode. An empty list prints a faint "none".
func (pp *PrettyPrint) Directory(eps []episode.Episode) {
	pp.TitleWithCount("Episodes", len(eps))
	pp.NewLine()
	if len(eps) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	for _, ep := range eps {
		if !pp.Missing && !ep.HasTimeline() {
			continue
		}
		pp.Episode(ep)
	}
}

// Episode prints the episode header followed by its compacted timeline or
// the reason it has none.
func (pp *PrettyPrint) Episode(ep episode.Episode) {
	h := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Faint)

	if pp.ShowNumber {
		n := strconv.Itoa(ep.Number)
		_, _ = y.Fprint(pp.out(), n)
		if pad := numberWidth - len(n); pad > 0 {
			_, _ = fmt.Fprintf(pp.out(), "%*s", pad, "")
		}
	}
	_, _ = h.Fprintln(pp.out(), ep.Title())

	if !ep.HasTimeline() {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprintf(pp.out(), "  %s\n\n", ep.StatusMessage())
		return
	}

	lines, err := timeline.Lines(ep.FoundResults)
	if err != nil {
		r := color.New(color.FgRed)
		_, _ = r.Fprintf(pp.out(), "  %v\n\n", err)
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 100
	tbl.Wrap = true
	miss := color.New(color.Faint)
	for _, l := range lines {
		at := l.At
		if !l.Found {
			at = miss.Sprint("--:--")
		}
		tbl.AddRow(at, l.Question)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}
