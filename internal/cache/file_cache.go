package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	appName   = "moko-board"
	entryExt  = ".json"
	tmpPrefix = ".tmp-"
)

// hashKey maps an arbitrary key (usually a request URL) to a fixed-size name
func hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// FileCache keeps upstream responses as one file per request URL. The
// directory is shared between processes, so repeated `board show` runs
// within the TTL reuse the last answer. Freshness is judged against the
// TTL in force when the entry is read.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// fileEntry is the on-disk record. Key guards against reading an entry
// written for a different URL.
type fileEntry struct {
	Key      string    `json:"key"`
	StoredAt time.Time `json:"stored_at"`
	Data     []byte    `json:"data"`
}

func (e fileEntry) fresh(now time.Time, ttl time.Duration) bool {
	return now.Before(e.StoredAt.Add(ttl))
}

// NewFileCache opens (and creates) a cache directory
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/moko-board, falling back to
// ~/.cache/moko-board and finally the temp dir.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", appName)
	}
	return filepath.Join(os.TempDir(), appName+"-cache")
}

// TTL returns how long entries stay valid
func (c *FileCache) TTL() time.Duration {
	return c.ttl
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, hashKey(key)+entryExt)
}

// readEntry loads one entry file. Unreadable or foreign files are removed.
func readEntry(path string) (fileEntry, bool) {
	// #nosec G304 -- path is built from a hash or a ReadDir of the cache dir
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileEntry{}, false
	}
	var e fileEntry
	if err := json.Unmarshal(raw, &e); err != nil || e.Key == "" {
		_ = os.Remove(path)
		return fileEntry{}, false
	}
	return e, true
}

// Get returns the cached body for key while it is fresh
func (c *FileCache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	e, ok := readEntry(path)
	if !ok || e.Key != key {
		return nil, false
	}
	if !e.fresh(c.now(), c.ttl) {
		_ = os.Remove(path)
		return nil, false
	}
	return e.Data, true
}

// Set stores value under key. The file is replaced atomically so a
// concurrent reader never sees a partial entry.
func (c *FileCache) Set(key string, value []byte) error {
	raw, err := json.Marshal(fileEntry{Key: key, StoredAt: c.now(), Data: value})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	_, werr := tmp.Write(raw)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache file: %w", err)
	}
	return nil
}

// entryFiles lists the entry files in the cache directory
func (c *FileCache) entryFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryExt {
			continue
		}
		paths = append(paths, filepath.Join(c.dir, de.Name()))
	}
	return paths, nil
}

// Cleanup removes stale and unreadable entries and returns how many
// fresh ones remain.
func (c *FileCache) Cleanup() (int, error) {
	paths, err := c.entryFiles()
	if err != nil {
		return 0, err
	}
	now := c.now()
	kept := 0
	for _, p := range paths {
		e, ok := readEntry(p)
		if !ok {
			continue
		}
		if !e.fresh(now, c.ttl) {
			_ = os.Remove(p)
			continue
		}
		kept++
	}
	return kept, nil
}
