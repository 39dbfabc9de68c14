package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tableflip.dev/akats/pkg/episode"
)

type fakeSource struct {
	mu    sync.Mutex
	eps   []episode.Episode
	err   error
	calls int
}

func (f *fakeSource) Episodes(context.Context) ([]episode.Episode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.eps, nil
}

func TestStoreStartsUnresolved(t *testing.T) {
	s := New(&fakeSource{})
	if s.State() != Unresolved || s.Resolved() {
		t.Fatalf("expected unresolved, got %s", s.State())
	}
	if s.Episodes() != nil {
		t.Fatalf("expected nil episodes before first fetch")
	}
}

func TestRefreshPopulates(t *testing.T) {
	src := &fakeSource{eps: []episode.Episode{{Number: 1, Name: "AKA 1"}, {Number: 2, Name: "AKA 2"}}}
	s := New(src)

	s.Refresh(context.Background())

	if s.State() != Populated {
		t.Fatalf("expected populated, got %s", s.State())
	}
	if got := s.Episodes(); len(got) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(got))
	}
	if ep, ok := s.Find(2); !ok || ep.Name != "AKA 2" {
		t.Fatalf("find 2: got %+v ok=%v", ep, ok)
	}
	if _, ok := s.Find(9); ok {
		t.Fatalf("did not expect episode 9")
	}
	if s.Generation() != 1 {
		t.Fatalf("expected generation 1, got %d", s.Generation())
	}
}

func TestRefreshTransportErrorResolvesEmpty(t *testing.T) {
	src := &fakeSource{err: errors.New("dial tcp: connection refused")}
	s := New(src)

	s.Refresh(context.Background())

	if s.State() != Empty {
		t.Fatalf("expected empty, got %s", s.State())
	}
	if !s.Resolved() {
		t.Fatalf("expected resolved after failed fetch")
	}
	got := s.Episodes()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected explicit empty list, got %#v", got)
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	src := &fakeSource{eps: []episode.Episode{{Number: 1}, {Number: 2}}}
	s := New(src)
	s.Refresh(context.Background())

	src.mu.Lock()
	src.eps = nil
	src.err = errors.New("decode episodes: unexpected EOF")
	src.mu.Unlock()
	s.Refresh(context.Background())

	if s.State() != Empty {
		t.Fatalf("failed refetch should drop previous episodes, got %s", s.State())
	}
	if s.Generation() != 2 {
		t.Fatalf("expected generation 2, got %d", s.Generation())
	}
}

func TestEpisodesReturnsCopy(t *testing.T) {
	s := New(&fakeSource{eps: []episode.Episode{{Number: 1, Name: "original"}}})
	s.Refresh(context.Background())

	got := s.Episodes()
	got[0].Name = "mutated"

	if ep, _ := s.Find(1); ep.Name != "original" {
		t.Fatalf("store state mutated through returned slice")
	}
}

func TestNilSourceResolvesEmpty(t *testing.T) {
	s := New(nil)
	s.Refresh(context.Background())
	if s.State() != Empty {
		t.Fatalf("expected empty, got %s", s.State())
	}
}
