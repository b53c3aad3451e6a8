package ports

import (
	"context"
	"io"
)

// ScratchSpace hands out per-request scratch directories
type ScratchSpace interface {
	Acquire(ctx context.Context, prefix string) (Scratch, error)
}

// Scratch is a directory whose files live until Close is called
type Scratch interface {
	// Path returns the absolute path of name inside the scratch directory
	Path(name string) string

	// WriteFrom copies r into name and returns the absolute path
	WriteFrom(name string, r io.Reader) (string, error)

	// Close removes the directory and everything in it
	Close() error
}
