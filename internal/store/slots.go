package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Slots is the persistence port for the task list. Keys are slot names and
// values are opaque serialized blobs. Read on a missing key returns an error
// wrapping sql.ErrNoRows.
type Slots interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

type MemorySlots struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: map[string][]byte{}}
}

func (m *MemorySlots) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.slots[key]
	if !ok {
		return nil, fmt.Errorf("read slot %q: %w", key, sql.ErrNoRows)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemorySlots) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[key] = append([]byte(nil), data...)
	return nil
}

var slotNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileSlots stores each slot as <dir>/<key>.json.
type FileSlots struct {
	dir string
}

func NewFileSlots(dir string) (*FileSlots, error) {
	if dir == "" {
		return nil, fmt.Errorf("slot directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileSlots{dir: dir}, nil
}

func (f *FileSlots) Read(_ context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read slot %q: %w", key, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("read slot %q: %w", key, err)
	}
	return data, nil
}

func (f *FileSlots) Write(_ context.Context, key string, data []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}

func (f *FileSlots) path(key string) (string, error) {
	if !slotNamePattern.MatchString(key) {
		return "", fmt.Errorf("invalid slot name %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}
