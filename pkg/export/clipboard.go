package export

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard is the write half of the platform clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Copier hands export text to the clipboard. Writes are attempted once.
type Copier struct {
	Clipboard Clipboard
}

// NewCopier returns a Copier backed by the system clipboard.
func NewCopier() *Copier {
	return &Copier{Clipboard: systemClipboard{}}
}

// Copy writes text to the clipboard.
func (c *Copier) Copy(text string) error {
	cb := c.Clipboard
	if cb == nil {
		cb = systemClipboard{}
	}
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("export: write clipboard: %w", err)
	}
	return nil
}

// Supported reports whether a clipboard utility is available.
func Supported() bool {
	return !clipboard.Unsupported
}
