// Package about renders the project blurb as terminal markdown.
package about

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

//go:embed about.md
var aboutMarkdown string

const defaultWidth = 80

type About struct {
	// Style is a glamour standard style name, "dark" when empty.
	Style string
	Width int
	Out   io.Writer
}

func (a *About) Do(_ context.Context) error {
	style := a.Style
	if style == "" {
		style = "dark"
	}
	width := a.Width
	if width <= 0 {
		width = defaultWidth
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("about: %w", err)
	}
	content, err := renderer.Render(strings.TrimSpace(aboutMarkdown))
	if err != nil {
		return fmt.Errorf("about: %w", err)
	}
	out := a.Out
	if out == nil {
		out = color.Output
	}
	_, err = fmt.Fprint(out, content)
	return err
}
