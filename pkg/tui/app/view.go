package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/gate"
	"tableflip.dev/akats/pkg/theme"
	"tableflip.dev/akats/pkg/timeline"
)

const (
	defaultCardWidth = 72
	minCardWidth     = 24
	missingAt        = "--:--"
)

func (m *Model) View() string {
	if m.help != nil {
		return m.help.View()
	}
	var sections []string
	sections = append(sections, m.header()...)
	sections = append(sections, m.gateView())
	if m.status != "" {
		sections = append(sections, m.theme.Muted.Render(m.status))
	}

	top := lipgloss.JoinVertical(lipgloss.Left, sections...)
	footer := m.theme.Footer.Render(m.keyHints())

	var body string
	switch {
	case !m.resolved:
		body = m.renderPlaceholder("loading..")
	case len(m.episodes) == 0:
		body = m.renderPlaceholder("No episodes")
	default:
		cards := make([]string, 0, len(m.episodes))
		end := m.offset + m.visibleCards()
		if end > len(m.episodes) {
			end = len(m.episodes)
		}
		for i := m.offset; i < end; i++ {
			cards = append(cards, m.renderCard(m.episodes[i], i == m.selected))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, "", body, footer)
}

func (m *Model) header() []string {
	return []string{
		m.theme.Title.Render("AKA Timestamps"),
		m.theme.Info.Render("Timestamps for the Ask Kati Anything! (AKA) podcast."),
	}
}

func (m *Model) gateView() string {
	snap := m.gate.Snapshot()
	if snap.State == gate.Closed {
		return m.theme.Muted.Render("press r to check for new videos")
	}

	lines := []string{m.theme.Input.Render(m.input.View())}
	if m.pending || snap.State == gate.Submitting {
		lines = append(lines, m.theme.Info.Render("Checking for new videos.."))
	} else {
		lines = append(lines, m.theme.Button.Render("enter: refresh"))
		lines = append(lines, m.theme.Muted.Render("Refreshing needs a key, see akats about."))
	}
	if snap.LastError != "" {
		lines = append(lines, m.theme.Error.Render(snap.LastError))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) keyHints() string {
	if m.gate.Snapshot().State != gate.Closed {
		return "enter submit • esc hide • ctrl+c quit"
	}
	return "j/k select • c copy timestamps • r refresh • ? help • q quit"
}

func (m *Model) cardWidth() int {
	if m.termWidth <= 0 {
		return defaultCardWidth
	}
	w := m.termWidth - 4
	if w < minCardWidth {
		w = minCardWidth
	}
	return w
}

func (m *Model) renderPlaceholder(text string) string {
	ct := m.theme.Card
	return ct.Frame.Width(m.cardWidth()).Render(ct.Meta.Render(text))
}

func (m *Model) renderCard(ep episode.Episode, selected bool) string {
	ct := m.theme.Card
	if selected {
		ct = m.theme.Selected
	}
	width := m.cardWidth()
	inner := width - 4

	rows := []string{ct.Title.Render(wordwrap.String(ep.Title(), inner))}
	rows = append(rows, cardBody(ep, ct, inner)...)
	return ct.Frame.Width(width).Render(strings.Join(rows, "\n"))
}

func cardBody(ep episode.Episode, ct theme.CardTheme, inner int) []string {
	if !ep.HasTimeline() {
		return []string{ct.Meta.Render(wordwrap.String(ep.StatusMessage(), inner))}
	}
	lines, err := timeline.Lines(ep.FoundResults)
	if err != nil {
		return []string{ct.Meta.Render(wordwrap.String(err.Error(), inner))}
	}
	if len(lines) == 0 {
		return []string{ct.Meta.Render("No questions found")}
	}
	atWidth := 0
	for _, l := range lines {
		if n := len(l.At); n > atWidth {
			atWidth = n
		}
	}
	if atWidth < len(missingAt) {
		atWidth = len(missingAt)
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, formatLine(l, atWidth, inner, ct))
	}
	return out
}

// formatLine renders one timeline row, wrapping the question under itself.
func formatLine(l timeline.Line, atWidth, inner int, ct theme.CardTheme) string {
	at := l.At
	if !l.Found {
		at = missingAt
	}
	textWidth := inner - atWidth - 1
	if textWidth < 8 {
		textWidth = 8
	}
	wrapped := strings.Split(wordwrap.String(l.Question, textWidth), "\n")
	pad := strings.Repeat(" ", atWidth+1)
	for i := range wrapped {
		if i == 0 {
			wrapped[i] = fmt.Sprintf("%*s %s", atWidth, at, wrapped[i])
			continue
		}
		wrapped[i] = pad + wrapped[i]
	}
	return ct.Line.Render(strings.Join(wrapped, "\n"))
}

// visibleCards is how many cards from offset fit in the terminal height.
// With no known height every card is shown.
func (m *Model) visibleCards() int {
	if m.termHeight <= 0 || len(m.episodes) == 0 {
		return len(m.episodes)
	}
	used := lipgloss.Height(lipgloss.JoinVertical(lipgloss.Left, append(m.header(), m.gateView())...)) + 3
	if m.status != "" {
		used++
	}
	available := m.termHeight - used
	count := 0
	for i := m.offset; i < len(m.episodes); i++ {
		h := lipgloss.Height(m.renderCard(m.episodes[i], i == m.selected))
		if available-h < 0 {
			break
		}
		available -= h
		count++
	}
	if count == 0 {
		count = 1
	}
	return count
}
