package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
)

// FileStore keeps the snapshot as one file on a billy filesystem.
// Saves go through a temporary file and a rename, so a crash mid-save keeps
// the previous snapshot.
type FileStore struct {
	fs   billy.Filesystem
	name string
	uri  string
}

// NewFileStore stores the snapshot at path on the local disk.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("storage: empty file path")
	}
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir %s: %w", dir, err)
	}
	return &FileStore{fs: osfs.New(dir), name: name, uri: "file://" + path}, nil
}

// NewMemStore keeps the snapshot in memory.
func NewMemStore(name string) *FileStore {
	if name == "" {
		name = "novadoc"
	}
	return &FileStore{fs: memfs.New(), name: name, uri: "mem://" + name}
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := util.ReadFile(s.fs, s.name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", s.uri, err)
	}
	return data, nil
}

func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp := s.name + ".tmp"
	if err := util.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", s.uri, err)
	}
	if err := s.fs.Rename(tmp, s.name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("storage: replace %s: %w", s.uri, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) URI() string { return s.uri }
