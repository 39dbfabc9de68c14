// Package refresh runs the access-gated re-fetch once from the command
// line.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"tableflip.dev/akats/pkg/app"
	"tableflip.dev/akats/pkg/gate"
)

// ErrRejected is returned when the service refuses the refresh.
var ErrRejected = errors.New("refresh rejected")

type Refresh struct {
	Session *app.Session
	// Key is used when KeySet; otherwise the persisted key, then a prompt.
	Key    string
	KeySet bool
	// Prompt asks for the key. Defaults to a masked promptui prompt.
	Prompt func() (string, error)
	Out    io.Writer
}

func (r *Refresh) Do(ctx context.Context) error {
	if r.Session == nil {
		return errors.New("can not refresh, no session")
	}
	g := r.Session.Gate
	if err := g.Activate(ctx); err != nil {
		return err
	}

	key := r.Key
	if !r.KeySet {
		key = g.Key()
		if key == "" {
			var err error
			if key, err = r.prompt(); err != nil {
				return err
			}
		}
	}

	if err := g.Reveal(); err != nil {
		return err
	}
	if err := g.SetKey(key); err != nil {
		return err
	}

	out := r.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, "Checking for new videos..")

	if err := g.Trigger(ctx); err != nil {
		return err
	}

	snap := g.Snapshot()
	if snap.State != gate.Closed {
		red := color.New(color.FgRed, color.Bold)
		_, _ = red.Fprintln(out, snap.LastError)
		return fmt.Errorf("%w: %s", ErrRejected, snap.LastError)
	}

	green := color.New(color.FgGreen)
	_, _ = green.Fprintf(out, "Refresh accepted, %d episodes loaded\n", len(r.Session.Directory.Episodes()))
	return nil
}

func (r *Refresh) prompt() (string, error) {
	if r.Prompt != nil {
		return r.Prompt()
	}
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}
	p := promptui.Prompt{
		Label:     "Refresh key",
		Mask:      '*',
		Templates: templates,
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("empty")
			}
			return nil
		},
	}
	return p.Run()
}
