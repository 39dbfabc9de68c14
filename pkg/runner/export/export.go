// Package export copies one episode's timeline to the clipboard, or prints
// it when there is no terminal to paste from.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"tableflip.dev/akats/pkg/app"
	timestamps "tableflip.dev/akats/pkg/export"
)

type Export struct {
	Session *app.Session
	Number  int
	// Print writes the text to Out instead of the clipboard.
	Print bool
	Out   io.Writer
	// Interactive overrides terminal detection on stdout.
	Interactive *bool
}

func (e *Export) Do(ctx context.Context) error {
	if e.Session == nil {
		return errors.New("can not export, no session")
	}
	if err := e.Session.Activate(ctx); err != nil {
		return err
	}

	out := e.Out
	if out == nil {
		out = os.Stdout
	}

	if e.Print || !e.interactive() || !timestamps.Supported() {
		text, err := e.Session.Export(e.Number)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}

	text, err := e.Session.CopyExport(e.Number)
	if err != nil {
		return err
	}
	g := color.New(color.FgGreen)
	_, _ = g.Fprintf(out, "Copied %d timestamps for episode %d\n", countLines(text), e.Number)
	return nil
}

func (e *Export) interactive() bool {
	if e.Interactive != nil {
		return *e.Interactive
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
