package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

// Constants for file locking.
const (
	lockTimeout    = 3 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// FileStore keeps one JSON file per key inside a directory.
// Writes go to a temp file that is renamed over the target, and every
// operation holds an flock on "<key>.json.lock" so the API server and the
// admin CLI can share a directory.
type FileStore struct {
	dir string
}

// NewFile returns a FileStore rooted at dir, creating the directory if needed.
func NewFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kv.NewFile: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the file for key under a shared lock.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("kv.FileStore.Get: %w", err)
	}
	path := s.path(key)

	var data []byte
	err := withLock(ctx, path, false, func() error {
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("kv.FileStore.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("kv.FileStore.Get: %w", err)
	}
	return data, nil
}

// Set writes value for key atomically under an exclusive lock.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("kv.FileStore.Set: %w", err)
	}
	path := s.path(key)

	err := withLock(ctx, path, true, func() error {
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, value, 0o644); err != nil {
			return fmt.Errorf("write temp file: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename temp file: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv.FileStore.Set: %w", err)
	}
	return nil
}

// Delete removes the file for key under an exclusive lock.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("kv.FileStore.Delete: %w", err)
	}
	path := s.path(key)

	err := withLock(ctx, path, true, func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv.FileStore.Delete: %w", err)
	}
	return nil
}

// withLock runs fn while holding the flock that guards path.
// exclusive selects a write lock; otherwise a shared read lock is taken.
func withLock(ctx context.Context, path string, exclusive bool, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	lock := flock.New(path + ".lock")

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire lock: %s is busy", path)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
