package export

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tableflip.dev/akats/pkg/app"
	"tableflip.dev/akats/pkg/store"
)

const episodesJSON = `[{"number": 5, "name": "Five", "foundDescription": true, "foundVTT": true,
	"foundResults": {
		"questions": [{"shortent": "Q0"}, {"shortent": "Q1"}],
		"timeStamp": [{"questionIdx": 0, "atStr": "00:01", "found": true}, {"questionIdx": 0, "atStr": "00:10", "found": true}, {"questionIdx": 1, "atStr": "02:45", "found": true}],
		"err": ""}}]`

type recordingClipboard struct {
	text string
}

func (r *recordingClipboard) WriteAll(text string) error {
	r.text = text
	return nil
}

func newSession(t *testing.T) *app.Session {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(episodesJSON))
	}))
	t.Cleanup(srv.Close)
	s, err := app.NewSession(store.NewConfig(t.TempDir(), srv.URL), app.Options{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestExportPrint(t *testing.T) {
	var out bytes.Buffer
	e := Export{Session: newSession(t), Number: 5, Print: true, Out: &out}
	if err := e.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := out.String(); got != "00:10 Q0\n02:45 Q1\n" {
		t.Fatalf("got %q", got)
	}
}

func TestExportPrintsWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	interactive := false
	s := newSession(t)
	cb := &recordingClipboard{}
	s.Copier.Clipboard = cb

	e := Export{Session: s, Number: 5, Out: &out, Interactive: &interactive}
	if err := e.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if cb.text != "" {
		t.Fatalf("clipboard should be untouched, got %q", cb.text)
	}
	if !strings.HasPrefix(out.String(), "00:10 Q0") {
		t.Fatalf("got %q", out.String())
	}
}

func TestExportUnknownEpisode(t *testing.T) {
	e := Export{Session: newSession(t), Number: 42, Print: true, Out: &bytes.Buffer{}}
	if err := e.Do(context.Background()); !errors.Is(err, app.ErrEpisodeNotFound) {
		t.Fatalf("expected ErrEpisodeNotFound, got %v", err)
	}
}

func TestCountLines(t *testing.T) {
	for text, want := range map[string]int{"": 0, "a": 1, "a\nb": 2} {
		if got := countLines(text); got != want {
			t.Errorf("countLines(%q) = %d, want %d", text, got, want)
		}
	}
}
