// Package filestore saves exported designs to the local filesystem.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/mhpenta/designgen"
	"github.com/mhpenta/designgen/internal/log"
)

// Store writes files below Dir. Paths are confined to Dir: "../x" is
// saved as Dir/x.
type Store struct {
	Dir string
}

var _ designgen.Storage = (*Store)(nil)

func New(dir string) *Store {
	return &Store{Dir: dir}
}

// SaveFile writes data to Dir/name and returns a file:// URL for it.
func (s *Store) SaveFile(ctx context.Context, data []byte, name string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.Dir, filepath.FromSlash(path.Clean("/"+name)))
	log.FromContextOrDiscard(ctx).Info("writing design",
		"file", target,
		"content_type", contentType,
		"size", len(data),
	)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	return "file://" + filepath.ToSlash(abs), nil
}
