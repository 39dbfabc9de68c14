package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tableflip.dev/akats/pkg/directory"
	"tableflip.dev/akats/pkg/export"
	"tableflip.dev/akats/pkg/gate"
	"tableflip.dev/akats/pkg/store"
)

type memoryCredentials struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memoryCredentials) Get(name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *memoryCredentials) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

type recordingClipboard struct {
	text string
	err  error
}

func (r *recordingClipboard) WriteAll(text string) error {
	r.text = text
	return r.err
}

const episodesJSON = `[{
	"number": 7, "rawNumber": "07", "name": "Ask Kati Anything 7",
	"foundDescription": true, "foundVTT": true,
	"foundResults": {
		"questions": [{"full": "1. First?", "searchable": "first", "shortent": "First?"}, {"full": "2. Second?", "searchable": "second", "shortent": "Second?"}],
		"timeStamp": [{"questionIdx": 0, "atStr": "", "found": false}, {"questionIdx": 0, "atStr": "03:10", "found": true}, {"questionIdx": 1, "atStr": "1:02:03", "found": true}],
		"err": ""
	}
}]`

type fakeService struct {
	episodeCalls atomic.Int32
	refetchCalls atomic.Int32
	refetchBody  string
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/eps", func(w http.ResponseWriter, r *http.Request) {
		f.episodeCalls.Add(1)
		_, _ = w.Write([]byte(episodesJSON))
	})
	mux.HandleFunc("/eps/re-fetch", func(w http.ResponseWriter, r *http.Request) {
		f.refetchCalls.Add(1)
		if strings.Contains(f.refetchBody, `"error"`) {
			w.WriteHeader(http.StatusBadRequest)
		}
		_, _ = w.Write([]byte(f.refetchBody))
	})
	return mux
}

func newTestSession(t *testing.T, svc *fakeService, creds *memoryCredentials) *Session {
	t.Helper()
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)

	s, err := NewSession(store.NewConfig(t.TempDir(), srv.URL), Options{
		Credentials: creds,
		ReloadDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestActivateFetchesAndLoadsKey(t *testing.T) {
	svc := &fakeService{}
	creds := &memoryCredentials{values: map[string]string{store.KeyName: "saved"}}
	s := newTestSession(t, svc, creds)

	if s.Directory.State() != directory.Unresolved {
		t.Fatalf("expected unresolved before activation")
	}
	if err := s.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if s.Directory.State() != directory.Populated {
		t.Fatalf("expected populated, got %s", s.Directory.State())
	}
	if s.Gate.Key() != "saved" || s.Gate.State() != gate.Closed {
		t.Fatalf("unexpected gate after activation: %+v", s.Gate.Snapshot())
	}
	if svc.refetchCalls.Load() != 0 {
		t.Fatalf("activation must not trigger a re-fetch")
	}
}

func TestExportCompactsTimeline(t *testing.T) {
	s := newTestSession(t, &fakeService{}, &memoryCredentials{values: map[string]string{}})
	if err := s.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}

	text, err := s.Export(7)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if want := "03:10 First?\n1:02:03 Second?"; text != want {
		t.Fatalf("want %q, got %q", want, text)
	}
	if _, err := s.Export(99); !errors.Is(err, ErrEpisodeNotFound) {
		t.Fatalf("expected ErrEpisodeNotFound, got %v", err)
	}
}

func TestCopyExport(t *testing.T) {
	s := newTestSession(t, &fakeService{}, &memoryCredentials{values: map[string]string{}})
	_ = s.Activate(context.Background())

	cb := &recordingClipboard{}
	s.Copier = &export.Copier{Clipboard: cb}
	if _, err := s.CopyExport(7); err != nil {
		t.Fatalf("copy export: %v", err)
	}
	if cb.text != "03:10 First?\n1:02:03 Second?" {
		t.Fatalf("unexpected clipboard text %q", cb.text)
	}

	s.Copier = &export.Copier{Clipboard: &recordingClipboard{err: errors.New("no clipboard")}}
	if _, err := s.CopyExport(7); err == nil {
		t.Fatalf("expected clipboard error")
	}
}

func TestRejectedRefreshLeavesDirectory(t *testing.T) {
	svc := &fakeService{refetchBody: `{"error":"invalid key"}`}
	creds := &memoryCredentials{values: map[string]string{}}
	s := newTestSession(t, svc, creds)
	_ = s.Activate(context.Background())
	before := s.Directory.Generation()

	_ = s.Gate.Reveal()
	_ = s.Gate.SetKey("wrong")
	if err := s.Gate.Trigger(context.Background()); err != nil {
		t.Fatalf("trigger: %v", err)
	}

	if s.Gate.State() != gate.Open || s.Gate.LastError() != "invalid key" {
		t.Fatalf("unexpected gate %+v", s.Gate.Snapshot())
	}
	if s.Directory.Generation() != before || svc.episodeCalls.Load() != 1 {
		t.Fatalf("directory should be untouched, generation %d -> %d", before, s.Directory.Generation())
	}
	if creds.values[store.KeyName] != "wrong" {
		t.Fatalf("expected key persisted before submission")
	}
}

func TestAcceptedRefreshReloadsDirectory(t *testing.T) {
	svc := &fakeService{refetchBody: `{"ok":true}`}
	s := newTestSession(t, svc, &memoryCredentials{values: map[string]string{}})
	_ = s.Activate(context.Background())

	_ = s.Gate.Reveal()
	if err := s.Gate.Trigger(context.Background()); err != nil {
		t.Fatalf("trigger: %v", err)
	}

	if s.Gate.State() != gate.Closed || s.Gate.LastError() != "" {
		t.Fatalf("unexpected gate %+v", s.Gate.Snapshot())
	}
	if got := svc.episodeCalls.Load(); got != 2 {
		t.Fatalf("expected initial fetch plus exactly one reload, got %d fetches", got)
	}
	if s.Directory.Generation() != 2 {
		t.Fatalf("expected generation 2, got %d", s.Directory.Generation())
	}
}

func TestFollowCredentialsPicksUpExternalKey(t *testing.T) {
	srv := httptest.NewServer((&fakeService{}).handler())
	t.Cleanup(srv.Close)
	cfg := store.NewConfig(t.TempDir(), srv.URL)

	s, err := NewSession(cfg, Options{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.FollowCredentials(ctx); err != nil {
		t.Fatalf("follow: %v", err)
	}

	other, err := store.LoadCredentials(cfg)
	if err != nil {
		t.Fatalf("load credentials: %v", err)
	}
	if err := other.Set(store.KeyName, "shared"); err != nil {
		t.Fatalf("set: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Gate.Key() != "shared" {
		if time.Now().After(deadline) {
			t.Fatalf("key not picked up, got %q", s.Gate.Key())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFollowCredentialsIgnoresMemoryStore(t *testing.T) {
	s := newTestSession(t, &fakeService{}, &memoryCredentials{values: map[string]string{}})
	if err := s.FollowCredentials(context.Background()); err != nil {
		t.Fatalf("follow: %v", err)
	}
}
