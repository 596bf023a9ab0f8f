package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store as a single JSON document on disk. Every write replaces
// the whole file through a rename, so readers never observe half a session.
type FileStore struct {
	mu    sync.Mutex
	path  string
	scope string
}

// NewFileStore creates a file-backed store, creating the parent directory
func NewFileStore(path, scope string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{path: path, scope: scope}, nil
}

// Get retrieves a value
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return nil, err
	}
	v, ok := data[Key(f.scope, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

// SetMulti writes all values in one file replacement
func (f *FileStore) SetMulti(ctx context.Context, values map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	for k, v := range values {
		data[Key(f.scope, k)] = string(v)
	}
	return f.write(data)
}

// Delete removes keys
func (f *FileStore) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := data[Key(f.scope, k)]; ok {
			delete(data, Key(f.scope, k))
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.write(data)
}

// Close is a no-op
func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	return data, nil
}

func (f *FileStore) write(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict session file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
