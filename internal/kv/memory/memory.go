// Package memory is an in-process kv.Store with optional persistence to a local
// JSON snapshot file.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/itchan-dev/textboard/internal/kv"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]string
	path string // empty means no persistence
}

var (
	_ kv.Store       = (*Store)(nil)
	_ kv.BatchSetter = (*Store)(nil)
	_ kv.Pinger      = (*Store)(nil)
)

// New returns a store without persistence.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Open returns a store backed by the snapshot at path, loading it if present.
func Open(path string) (*Store, error) {
	s := &Store{data: make(map[string]string), path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, []kv.Entry{{Key: key, Value: value}})
}

// SetMany applies entries under one lock and one snapshot write. If the
// snapshot can't be written the in-memory map is rolled back.
func (s *Store) SetMany(ctx context.Context, entries []kv.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	type prev struct {
		value   string
		existed bool
	}
	undo := make(map[string]prev, len(entries))
	for _, e := range entries {
		if _, seen := undo[e.Key]; !seen {
			v, ok := s.data[e.Key]
			undo[e.Key] = prev{v, ok}
		}
		s.data[e.Key] = e.Value
	}

	if err := s.persist(); err != nil {
		for k, p := range undo {
			if p.existed {
				s.data[k] = p.value
			} else {
				delete(s.data, k)
			}
		}
		return err
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len is the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// persist writes the snapshot to a temp file and renames it over the old one,
// so a failed write leaves the previous snapshot intact. Caller holds s.mu.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}
