package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
)

const lockName = ".lock"

// Entry represents a cached sanitize result.
type Entry struct {
	Key          string         `json:"key"`
	Text         string         `json:"text"`
	Replacements int            `json:"replacements"`
	ByCategory   map[string]int `json:"byCategory,omitempty"`
	Skipped      bool           `json:"skipped,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	TTL          int            `json:"ttl"`
}

// Cache provides file-based caching for sanitize results.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
	lock       *flock.Flock
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
		lock:       flock.New(filepath.Join(dir, lockName)),
	}, nil
}

// Get retrieves a cached entry by key. Returns (Entry{}, false) on miss.
func (c *Cache) Get(key string) (Entry, bool) {
	if !c.enabled {
		return Entry{}, false
	}
	if err := c.lock.RLock(); err != nil {
		return Entry{}, false
	}
	defer func() { _ = c.lock.Unlock() }()

	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}
	if c.expired(entry) {
		return Entry{}, false
	}
	return entry, true
}

// Put stores a result in the cache.
func (c *Cache) Put(key string, entry Entry) error {
	if !c.enabled {
		return nil
	}
	entry.Key = HashKey(key)
	entry.CreatedAt = time.Now()
	entry.TTL = c.ttlSeconds
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("locking cache: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()

	return os.WriteFile(c.entryPath(key), data, 0o600)
}

// Clear removes all cache entries and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	if !c.enabled || c.dir == "" {
		return 0, nil
	}
	if err := c.lock.Lock(); err != nil {
		return 0, fmt.Errorf("locking cache: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Prune removes expired entries and entries that no longer parse, and
// returns how many were removed.
func (c *Cache) Prune() (int, error) {
	if !c.enabled || c.dir == "" {
		return 0, nil
	}
	if err := c.lock.Lock(); err != nil {
		return 0, fmt.Errorf("locking cache: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err == nil && !c.expired(entry) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats returns cache statistics.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if c.expired(entry) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildKey creates a cache key from everything that affects a sanitize
// result.
func BuildKey(fingerprint, categories string, threshold int, content string) string {
	return HashKey(fmt.Sprintf("%s:%s:%d:%s", fingerprint, categories, threshold, content))
}

func (c *Cache) expired(e Entry) bool {
	return c.ttlSeconds > 0 && time.Since(e.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

// DefaultDir returns the platform-appropriate cache directory.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "codesan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "codesan"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "codesan", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "codesan", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "codesan"), nil
	}
}
