// Package gate implements the access-gated refresh: the user reveals a key
// prompt, submits the key, and on success the episode directory is
// reloaded.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"tableflip.dev/akats/pkg/logging"
	"tableflip.dev/akats/pkg/remote"
	"tableflip.dev/akats/pkg/store"
)

// ReloadDelay is how long a successful re-fetch waits before reloading the
// directory, giving the service time to start publishing results.
const ReloadDelay = 500 * time.Millisecond

var (
	// ErrClosed is returned when triggering a gate that has not been revealed.
	ErrClosed = errors.New("gate: closed")
	// ErrSubmitting is returned while a refresh is in flight.
	ErrSubmitting = errors.New("gate: refresh in progress")
)

// State of the gate.
type State int

const (
	Closed State = iota
	Open
	Submitting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Refetcher triggers re-analysis on the service. *remote.Client satisfies it.
type Refetcher interface {
	Refetch(ctx context.Context, key string) (remote.RefetchResult, error)
}

// Refresher reloads the episode directory. *directory.Store satisfies it.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Gate is the surface presentations drive.
type Gate interface {
	Reveal() error
	Hide() error
	SetKey(key string) error
	Trigger(ctx context.Context) error
	Snapshot() Snapshot
}

// Snapshot is a consistent view of the gate.
type Snapshot struct {
	State     State
	Key       string
	LastError string
}

// Controller is the refresh state machine. Only one submission runs at a
// time; a trigger arriving while one is in flight is rejected, not queued.
type Controller struct {
	remote Refetcher
	dir    Refresher
	creds  store.Credentials
	logger *slog.Logger
	delay  time.Duration

	flight *semaphore.Weighted

	mu      sync.Mutex
	state   State
	key     string
	lastErr string
}

var _ Gate = (*Controller)(nil)

// Option customises a Controller.
type Option func(*Controller)

// WithReloadDelay overrides ReloadDelay.
func WithReloadDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.delay = d
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logging.Component(logger, "gate")
	}
}

// New builds a closed Controller. creds may be nil, in which case the key
// is never persisted.
func New(r Refetcher, dir Refresher, creds store.Credentials, opts ...Option) *Controller {
	c := &Controller{
		remote: r,
		dir:    dir,
		creds:  creds,
		logger: logging.Component(nil, "gate"),
		delay:  ReloadDelay,
		flight: semaphore.NewWeighted(1),
		state:  Closed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate loads the persisted key into the editable key field. It neither
// opens the gate nor talks to the service.
func (c *Controller) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.creds == nil {
		return nil
	}
	key, ok, err := c.creds.Get(store.KeyName)
	if err != nil {
		return fmt.Errorf("gate: load key: %w", err)
	}
	if ok {
		c.mu.Lock()
		c.key = key
		c.mu.Unlock()
	}
	return nil
}

// Follow reloads the key each time events reports it changed on disk,
// until events is closed. The key is only replaced while the gate is
// closed so an edit in progress is kept.
func (c *Controller) Follow(events <-chan store.Event) {
	for ev := range events {
		if ev.Name != store.KeyName || c.creds == nil {
			continue
		}
		key, ok, err := c.creds.Get(store.KeyName)
		if err != nil {
			c.logger.Debug("reload key failed", "error", err)
			continue
		}
		if !ok {
			continue
		}
		c.mu.Lock()
		if c.state == Closed {
			c.key = key
		}
		c.mu.Unlock()
	}
}

// Reveal opens the gate.
func (c *Controller) Reveal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Submitting:
		return ErrSubmitting
	case Closed:
		c.state = Open
		c.logger.Debug("gate opened")
	}
	return nil
}

// Hide closes an open gate without submitting.
func (c *Controller) Hide() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return ErrSubmitting
	}
	c.state = Closed
	return nil
}

// SetKey edits the key that the next trigger submits.
func (c *Controller) SetKey(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return ErrSubmitting
	}
	c.key = key
	return nil
}

// Trigger submits the current key. The key is persisted first, even when
// empty or later rejected. A rejection or transport failure leaves the gate
// open with LastError set and returns nil; ErrClosed and ErrSubmitting mean
// nothing happened.
func (c *Controller) Trigger(ctx context.Context) error {
	if !c.flight.TryAcquire(1) {
		return ErrSubmitting
	}
	defer c.flight.Release(1)

	c.mu.Lock()
	switch c.state {
	case Closed:
		c.mu.Unlock()
		return ErrClosed
	case Submitting:
		c.mu.Unlock()
		return ErrSubmitting
	}
	c.state = Submitting
	c.lastErr = ""
	key := c.key
	c.mu.Unlock()

	if c.creds != nil {
		if err := c.creds.Set(store.KeyName, key); err != nil {
			c.logger.Warn("persist refresh key failed", "error", err)
		}
	}

	c.logger.Info("requesting re-fetch")
	res, err := c.remote.Refetch(ctx, key)
	switch {
	case err != nil:
		c.fail(err.Error())
		return nil
	case res.Rejected():
		c.fail(res.Error)
		return nil
	}

	if err := wait(ctx, c.delay); err != nil {
		c.fail(err.Error())
		return nil
	}
	if c.dir != nil {
		c.dir.Refresh(ctx)
	}

	c.mu.Lock()
	c.lastErr = ""
	c.state = Closed
	c.mu.Unlock()
	c.logger.Info("re-fetch accepted, directory reloaded")
	return nil
}

func (c *Controller) fail(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.state = Open
	c.mu.Unlock()
	c.logger.Warn("re-fetch failed", "error", msg)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the message of the last failed submission, or "".
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Key returns the editable key.
func (c *Controller) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// Snapshot returns state, key and error read under one lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Key: c.key, LastError: c.lastErr}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
