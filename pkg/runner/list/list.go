package list

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/akats/pkg/app"
	"tableflip.dev/akats/pkg/printers"
)

type List struct {
	Session    *app.Session
	JSON       bool
	All        bool
	ShowNumber bool
	Out        io.Writer
}

func (l *List) Do(ctx context.Context) error {
	if l.Session == nil {
		return errors.New("can not list, no session")
	}
	if err := l.Session.Activate(ctx); err != nil {
		return err
	}
	eps := l.Session.Directory.Episodes()

	out := l.Out
	if out == nil {
		out = color.Output
	}

	if l.JSON {
		return printers.JSON(out, eps)
	}

	pp := printers.PrettyPrint{ShowNumber: l.ShowNumber, Missing: l.All, Out: out}
	pp.NewLine()
	pp.Directory(eps)
	return nil
}
