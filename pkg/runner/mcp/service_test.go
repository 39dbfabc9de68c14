package mcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"tableflip.dev/akats/pkg/episode"
)

type memoryDirectory struct {
	episodes  []episode.Episode
	resolved  bool
	refreshes int
}

func (m *memoryDirectory) Refresh(context.Context) {
	m.refreshes++
	m.resolved = true
}

func (m *memoryDirectory) Resolved() bool { return m.resolved }

func (m *memoryDirectory) Episodes() []episode.Episode {
	return append([]episode.Episode(nil), m.episodes...)
}

func (m *memoryDirectory) Find(number int) (episode.Episode, bool) {
	for _, ep := range m.episodes {
		if ep.Number == number {
			return ep, true
		}
	}
	return episode.Episode{}, false
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{episodes: []episode.Episode{
		{
			Number: 12, Name: "Twelve", FoundDescription: true, FoundVTT: true,
			FoundResults: &episode.AnalyzeResults{
				Questions: []episode.QuestionType{{Shortened: "How do I sleep better?"}, {Shortened: "Is therapy worth it?"}},
				TimeStamp: []episode.DetectedTimeStamp{
					{QuestionIdx: 0, AtStr: "01:00", Found: true},
					{QuestionIdx: 0, AtStr: "01:30", Found: true},
					{QuestionIdx: 1, AtStr: "09:15", Found: true},
				},
			},
		},
		{
			Number: 11, Name: "Eleven", FoundDescription: true, FoundVTT: true,
			FoundResults: &episode.AnalyzeResults{
				Questions: []episode.QuestionType{{Shortened: "Sleep and anxiety?"}},
				TimeStamp: []episode.DetectedTimeStamp{{QuestionIdx: 0, AtStr: "03:03", Found: true}},
			},
		},
		{Number: 10, Name: "Ten"},
	}}
}

func TestServiceListEpisodes(t *testing.T) {
	ctx := context.Background()
	dir := newMemoryDirectory()
	svc := NewService(dir)

	got, err := svc.ListEpisodes(ctx, false)
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 timed episodes, got %d", len(got))
	}
	if dir.refreshes != 1 {
		t.Fatalf("expected a lazy refresh, got %d", dir.refreshes)
	}

	all, err := svc.ListEpisodes(ctx, true)
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if len(all) != 3 || all[2].Status != "no-description" {
		t.Fatalf("unexpected listing %+v", all)
	}
	if dir.refreshes != 1 {
		t.Fatalf("resolved directory should not refresh again")
	}
}

func TestServiceEpisode(t *testing.T) {
	svc := NewService(newMemoryDirectory())

	dto, err := svc.Episode(context.Background(), 12)
	if err != nil {
		t.Fatalf("Episode failed: %v", err)
	}
	if len(dto.Timeline) != 2 || dto.Timeline[0].At != "01:30" {
		t.Fatalf("expected compacted timeline, got %+v", dto.Timeline)
	}
	if dto.Export != "01:30 How do I sleep better?\n09:15 Is therapy worth it?" {
		t.Fatalf("unexpected export %q", dto.Export)
	}
	if dto.Questions != 2 {
		t.Fatalf("questions = %d", dto.Questions)
	}

	if _, err := svc.Episode(context.Background(), 99); !errors.Is(err, ErrEpisodeNotFound) {
		t.Fatalf("expected ErrEpisodeNotFound, got %v", err)
	}
}

func TestServiceSearchQuestions(t *testing.T) {
	svc := NewService(newMemoryDirectory())

	hits, err := svc.SearchQuestions(context.Background(), "SLEEP", 0)
	if err != nil {
		t.Fatalf("SearchQuestions failed: %v", err)
	}
	if len(hits) != 2 || hits[0].Episode != 12 || hits[1].Episode != 11 {
		t.Fatalf("unexpected hits %+v", hits)
	}
	if hits[0].At != "01:30" {
		t.Fatalf("expected compacted time, got %q", hits[0].At)
	}

	limited, _ := svc.SearchQuestions(context.Background(), "sleep", 1)
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %+v", limited)
	}
	if _, err := svc.SearchQuestions(context.Background(), "  ", 0); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestServiceReload(t *testing.T) {
	dir := newMemoryDirectory()
	svc := NewService(dir)
	n, err := svc.Reload(context.Background())
	if err != nil || n != 3 || dir.refreshes != 1 {
		t.Fatalf("Reload = %d, %v (refreshes %d)", n, err, dir.refreshes)
	}
}

func TestArgString(t *testing.T) {
	if got := argString([]string{"7"}); got != "7" {
		t.Fatalf("got %q", got)
	}
	if got := argString("8"); got != "8" {
		t.Fatalf("got %q", got)
	}
	if got := argString(nil); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestRunnerRequiresDirectory(t *testing.T) {
	if err := (Runner{Transport: TransportStdio}).Do(context.Background()); err == nil {
		t.Fatalf("expected error without a directory")
	}
}

func TestRunnerEndpointDefaults(t *testing.T) {
	addr, path := Runner{}.endpoint()
	if addr != "127.0.0.1:8080" || path != "/mcp" {
		t.Fatalf("unexpected defaults %q %q", addr, path)
	}
	if _, path := (Runner{Path: "rpc"}).endpoint(); path != "/rpc" {
		t.Fatalf("expected leading slash, got %q", path)
	}
}

func TestRunnerRejectsUnknownTransport(t *testing.T) {
	r := Runner{Directory: newMemoryDirectory(), Transport: "carrier-pigeon"}
	if err := r.Do(context.Background()); err == nil {
		t.Fatalf("expected error for unknown transport")
	}
}

func TestRunnerServesHTTP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrs := make(chan net.Addr, 1)
	done := make(chan error, 1)
	r := Runner{
		Directory: newMemoryDirectory(),
		Transport: TransportHTTP,
		Addr:      "127.0.0.1:0",
		Listening: func(a net.Addr) { addrs <- a },
	}
	go func() { done <- r.Do(ctx) }()

	var addr net.Addr
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("runner exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("runner did not start")
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	req, err := http.NewRequest(http.MethodPost, "http://"+addr.String()+"/mcp", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	payload, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(payload), "akats MCP") {
		t.Fatalf("unexpected initialize response %d: %s", resp.StatusCode, payload)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runner returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("runner did not stop")
	}
}
