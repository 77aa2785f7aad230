package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store reads inputs and writes outputs by slash separated path.
// Read reports a missing object with an error wrapping fs.ErrNotExist.
type Store interface {
	List(ctx context.Context, dir string) ([]string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
}

// Cache holds encoded documents by source checksum. Get returns nil for an
// unknown checksum.
type Cache interface {
	Get(ctx context.Context, checksum string) ([]byte, error)
	Put(ctx context.Context, checksum string, document []byte) error
}

// DirStore is a Store on the local filesystem. Relative paths are resolved
// against Root.
type DirStore struct {
	Root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{Root: root}
}

func (s *DirStore) path(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Root, p)
}

// List returns the sorted names of the regular files in dir.
func (s *DirStore) List(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(s.path(dir))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirStore) Read(_ context.Context, p string) ([]byte, error) {
	return os.ReadFile(s.path(p))
}

// Write creates missing parent directories.
func (s *DirStore) Write(_ context.Context, p string, data []byte) error {
	full := s.path(p)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("unable to create directory for %s: %w", p, err)
	}
	return os.WriteFile(full, data, 0o644)
}
