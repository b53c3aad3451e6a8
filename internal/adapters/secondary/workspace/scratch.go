package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// maxScratchFileBytes bounds a single file copied into a scratch directory
const maxScratchFileBytes = 512 << 20

// ScratchSpace hands out temporary directories under a root directory
type ScratchSpace struct {
	root string
}

// NewScratchSpace creates a scratch space. An empty root uses the system
// temporary directory.
func NewScratchSpace(root string) *ScratchSpace {
	return &ScratchSpace{root: root}
}

// Acquire creates a fresh directory. The caller must Close it.
func (s *ScratchSpace) Acquire(ctx context.Context, prefix string) (ports.Scratch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := s.root
	if root != "" {
		if err := os.MkdirAll(root, 0700); err != nil {
			return nil, fmt.Errorf("creating scratch root: %w", err)
		}
	}

	dir, err := os.MkdirTemp(root, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// Scratch is one temporary directory
type Scratch struct {
	dir    string
	mu     sync.Mutex
	closed bool
}

// Dir returns the directory path
func (s *Scratch) Dir() string {
	return s.dir
}

// Path returns the absolute path of name inside the directory. Any
// directory components in name are discarded.
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean("/"+name)))
}

// WriteFrom copies r into name
func (s *Scratch) WriteFrom(name string, r io.Reader) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", errors.New("scratch directory already closed")
	}
	if r == nil {
		return "", errors.New("nothing to write")
	}

	if base := filepath.Base(filepath.Clean("/" + name)); base == string(filepath.Separator) || base == "." {
		return "", fmt.Errorf("invalid scratch file name %q", name)
	}
	path := s.Path(name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) // #nosec G304 - path is confined to the scratch directory
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxScratchFileBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if n > maxScratchFileBytes {
		return "", fmt.Errorf("%s exceeds %d bytes", filepath.Base(path), maxScratchFileBytes)
	}
	return path, nil
}

// Close removes the directory. It is safe to call more than once.
func (s *Scratch) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return os.RemoveAll(s.dir)
}

// Ensure ScratchSpace implements ports.ScratchSpace
var _ ports.ScratchSpace = (*ScratchSpace)(nil)
