// Package ui runs the interactive terminal front end.
package ui

import (
	"context"
	"errors"

	"tableflip.dev/akats/pkg/app"
	tuiapp "tableflip.dev/akats/pkg/tui/app"
)

type UI struct {
	Session *app.Session
}

// Do loads the persisted key and blocks in the Bubble Tea program. The
// directory is fetched by the program itself so the loading card shows.
func (u *UI) Do(ctx context.Context) error {
	if u.Session == nil {
		return errors.New("can not start ui, no session")
	}
	if err := u.Session.Gate.Activate(ctx); err != nil {
		return err
	}
	if err := u.Session.FollowCredentials(ctx); err != nil {
		u.Session.Logger.Warn("not following key changes", "error", err)
	}
	return tuiapp.Run(ctx, u.Session)
}
