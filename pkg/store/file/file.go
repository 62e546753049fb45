// Package file stores blueprints as JSON files, one per record.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/store"
)

// Store is a file-based blueprint store for CLI applications.
type Store struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.local/share/villas/blueprints.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "villas", "blueprints"), nil
}

// NewStore creates a store rooted at baseDir, or at [DefaultDir] if empty.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.baseDir }

func (s *Store) recordPath(id string) (string, error) {
	if err := errors.ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *Store) Save(ctx context.Context, r *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *store.Record
	if r != nil && r.ID != "" {
		prev, err := s.read(r.ID)
		if err != nil && !isNotFound(err) {
			return err
		}
		existing = prev
	}
	if err := store.Prepare(r, existing, time.Now()); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	path, err := s.recordPath(r.ID)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *Store) read(id string) (*store.Record, error) {
	path, err := s.recordPath(id)
	if err != nil {
		return nil, store.NotFound(id)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.NotFound(id)
		}
		return nil, fmt.Errorf("read record file: %w", err)
	}

	var r store.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", id, err)
	}
	return &r, nil
}

func (s *Store) List(ctx context.Context) ([]*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var out []*store.Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		r, err := s.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, r)
	}
	store.Sort(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.recordPath(id)
	if err != nil {
		return store.NotFound(id)
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return store.NotFound(id)
		}
		return fmt.Errorf("remove record file: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

func isNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeNotFound)
}

var _ store.Store = (*Store)(nil)
