package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event reports that a credential changed on disk, possibly written by
// another akats process sharing the base path.
type Event struct {
	Name string
}

// Watcher streams credential changes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

var _ Watcher = (*credentials)(nil)

// Watch streams change events until ctx is cancelled. Callers should drain
// the returned channel; events are dropped rather than blocking the watcher.
// The channel is closed once ctx is done or the watcher fails.
func (c *credentials) Watch(ctx context.Context) (<-chan Event, error) {
	if c.dir == "" {
		return nil, errors.New("store: credentials path unknown")
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure credentials path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	if err := watcher.Add(c.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", c.dir, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer func() {
			_ = watcher.Close()
		}()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}

		throttle := newEventThrottle(50 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if name := credentialName(evt.Name); name != "" {
					throttle.Enqueue(name, send)
				}
			}
		}
	}()

	return events, nil
}

// credentialName maps a file in the credentials directory to its key.
// Temporary and hidden files map to "".
func credentialName(path string) string {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || validName(name) != nil {
		return ""
	}
	return name
}

// eventThrottle coalesces bursts of writes to the same credential into one
// event. No send happens once Stop has returned.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
	stopped bool
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(name string, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending[name] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

// flush sends under the lock so a concurrent Stop waits for it; send must
// not block.
func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	if t.stopped {
		return
	}
	for name := range pending {
		send(Event{Name: name})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
