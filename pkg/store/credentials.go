// Package store persists local akats state: configuration and the refresh
// access key.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/peterbourgon/diskv/v3"
)

// KeyName is the credential entry holding the refresh access key.
const KeyName = "refresh-key"

const (
	credentialsDir  = "credentials"
	credentialsLock = "credentials.lock"
)

// Credentials is a small named key/value store.
type Credentials interface {
	// Get returns the stored value and whether it exists.
	Get(name string) (string, bool, error)
	Set(name, value string) error
}

// LoadCredentials opens the diskv-backed credential store under the
// configured base path.
func LoadCredentials(cfg Config) (Credentials, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig(nil)
		if err != nil {
			return nil, err
		}
	}
	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	dir := filepath.Join(basePath, credentialsDir)
	d := diskv.New(diskv.Options{
		BasePath:  dir,
		Transform: flatTransform,
		PathPerm:  0o700,
		FilePerm:  0o600,
	})
	return &credentials{
		dir:  dir,
		d:    d,
		lock: flock.New(filepath.Join(basePath, credentialsLock)),
	}, nil
}

type credentials struct {
	dir  string
	d    *diskv.Diskv
	lock *flock.Flock
}

func (c *credentials) Get(name string) (string, bool, error) {
	if err := validName(name); err != nil {
		return "", false, err
	}
	if !c.d.Has(name) {
		return "", false, nil
	}
	// Read past the cache; another process may have rewritten the file.
	rc, err := c.d.ReadStream(name, true)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store: read %s: %w", name, err)
	}
	defer rc.Close()
	val, err := io.ReadAll(rc)
	if err != nil {
		return "", false, fmt.Errorf("store: read %s: %w", name, err)
	}
	return string(val), true, nil
}

// Set writes value while holding the store's file lock so sessions sharing
// a base path never interleave writes.
func (c *credentials) Set(name, value string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("store: lock credentials: %w", err)
	}
	defer func() {
		_ = c.lock.Unlock()
	}()
	if err := c.d.Write(name, []byte(value)); err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	return nil
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("store: invalid credential name %q", name)
	}
	return nil
}

func flatTransform(string) []string {
	return []string{}
}
