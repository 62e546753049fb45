package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores entries as JSON files below dir, one subdirectory per key
// kind:
//
//	<dir>/plan/3f/3fa4...json
//	<dir>/artifact/9c/9c01...json
//
// Writes go through a temp file and a rename, so readers never see a
// partial entry.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates the directory if needed and returns a cache in it.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e *fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Dir returns the cache root directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	e, err := readEntry(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case e == nil || e.Key != key || e.expired(c.now()):
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := c.now()
	e := fileEntry{Key: key, Data: data, StoredAt: now}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(raw)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmp.Name())
		return werr
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// Stats counts the live entries of each kind and their total size in bytes.
type Stats struct {
	Entries map[string]int
	Bytes   int64
}

// Total returns the number of entries across all kinds.
func (s Stats) Total() int {
	n := 0
	for _, v := range s.Entries {
		n += v
	}
	return n
}

// Stats walks the cache and reports its contents. Expired and unreadable
// entries are not counted.
func (c *FileCache) Stats() (Stats, error) {
	st := Stats{Entries: map[string]int{}}
	now := c.now()
	err := c.walk(func(path string, e *fileEntry, size int64) {
		if e != nil && !e.expired(now) {
			st.Entries[KindOf(e.Key)]++
			st.Bytes += size
		}
	})
	return st, err
}

// Prune removes expired and unreadable entries and returns how many it
// removed.
func (c *FileCache) Prune() (int, error) {
	n := 0
	now := c.now()
	err := c.walk(func(path string, e *fileEntry, _ int64) {
		if e == nil || e.expired(now) {
			if os.Remove(path) == nil {
				n++
			}
		}
	})
	return n, err
}

// Clear removes every entry and the subdirectories holding them, and returns
// how many entries it removed.
func (c *FileCache) Clear() (int, error) {
	n := 0
	err := c.walk(func(path string, _ *fileEntry, _ int64) {
		if os.Remove(path) == nil {
			n++
		}
	})
	if err != nil {
		return n, err
	}
	subdirs, err := os.ReadDir(c.dir)
	if err != nil {
		return n, err
	}
	for _, d := range subdirs {
		if d.IsDir() {
			if err := os.RemoveAll(filepath.Join(c.dir, d.Name())); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// walk calls fn for every entry file. e is nil when the file cannot be
// decoded.
func (c *FileCache) walk(fn func(path string, e *fileEntry, size int64)) error {
	return filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		e, _ := readEntry(path)
		fn(path, e, info.Size())
		return nil
	})
}

// readEntry returns a nil entry and nil error for a file that is not a
// valid entry.
func readEntry(path string) (*fileEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e fileEntry
	if json.Unmarshal(raw, &e) != nil {
		return nil, nil
	}
	return &e, nil
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, KindOf(key), h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
