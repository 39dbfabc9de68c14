// Package theme picks the session colour palette and builds Lip Gloss styles
// from it. It is purely cosmetic.
package theme

import (
	"math/rand"

	"github.com/charmbracelet/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is one colour set.
type Palette struct {
	Name       string
	Background string
	Foreground string
	Accent     string
}

var palettes = []Palette{
	{Name: "cream", Background: "#fafcc6", Foreground: "#e3b4af", Accent: "#5d07fe"},
	{Name: "mint", Background: "#e8f7ee", Foreground: "#3f8f6b", Accent: "#c2185b"},
	{Name: "dusk", Background: "#2b2d42", Foreground: "#edf2f4", Accent: "#ef233c"},
	{Name: "sea", Background: "#caf0f8", Foreground: "#0077b6", Accent: "#f77f00"},
}

// Palettes returns the fixed palette list.
func Palettes() []Palette {
	out := make([]Palette, len(palettes))
	copy(out, palettes)
	return out
}

// Random picks a palette uniformly. A nil r uses the global source.
func Random(r *rand.Rand) Palette {
	if r == nil {
		return palettes[rand.Intn(len(palettes))]
	}
	return palettes[r.Intn(len(palettes))]
}

// Muted is the foreground blended halfway towards the background.
func (p Palette) Muted() string {
	fg, err := colorful.Hex(p.Foreground)
	if err != nil {
		return p.Foreground
	}
	bg, err := colorful.Hex(p.Background)
	if err != nil {
		return p.Foreground
	}
	return fg.BlendLab(bg, 0.5).Clamped().Hex()
}

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Palette Palette

	Title    lipgloss.Style
	Info     lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Input    lipgloss.Style
	Button   lipgloss.Style
	Card     CardTheme
	Selected CardTheme
	Footer   lipgloss.Style
	Help     lipgloss.Style
}

// CardTheme styles one episode card.
type CardTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Line  lipgloss.Style
	Meta  lipgloss.Style
}

// New builds the styles for p.
func New(p Palette) Theme {
	fg := lipgloss.Color(p.Foreground)
	accent := lipgloss.Color(p.Accent)
	muted := lipgloss.Color(p.Muted())

	card := CardTheme{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(fg).
			Padding(0, 1).
			MarginBottom(1),
		Title: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Line:  lipgloss.NewStyle().Foreground(fg),
		Meta:  lipgloss.NewStyle().Italic(true).Foreground(muted),
	}
	selected := card
	selected.Frame = card.Frame.BorderForeground(accent).Border(lipgloss.ThickBorder())

	return Theme{
		Palette: p,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Info:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff0000")),
		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(fg).
			Padding(0, 1),
		Button: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Background)).
			Background(fg).
			Padding(0, 1),
		Card:     card,
		Selected: selected,
		Footer:   lipgloss.NewStyle().Foreground(muted),
		Help: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
	}
}

// Default returns the theme built from the first palette.
func Default() Theme {
	return New(palettes[0])
}
