package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const entryExt = ".json"

// Key identifies one fix request. Content is stored as a digest so the
// entry file never contains the source it was computed from.
type Key struct {
	Backend     string `json:"backend"`
	Model       string `json:"model"`
	Path        string `json:"path"`
	ContentHash string `json:"contentHash"`
}

// KeyFor builds the Key for a FixCode call.
func KeyFor(backend, model, path, content string) Key {
	return Key{Backend: backend, Model: model, Path: path, ContentHash: digest(content)}
}

// ID is the file name stem of the entry for k.
func (k Key) ID() string {
	return digest(strings.Join([]string{k.Backend, k.Model, k.Path, k.ContentHash}, "\x00"))
}

// Entry is the on-disk form of one cached answer.
type Entry struct {
	Key       Key       `json:"key"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache stores backend fix answers as one JSON file per request.
// The zero value and a Cache built with enabled=false miss on every Get.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

// New creates a Cache in dir, or in the user cache directory when dir is
// empty. A leading ~ in dir is expanded. ttlSeconds <= 0 keeps entries
// forever.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expanding cache directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
		now:     time.Now,
	}, nil
}

// Get returns the cached answer for k. Expired and unreadable entries are
// removed and reported as a miss.
func (c *Cache) Get(k Key) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	path := c.entryPath(k)
	e, err := readEntry(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			_ = os.Remove(path)
		}
		return "", false
	}
	if e.Key != k || c.expired(e) {
		_ = os.Remove(path)
		return "", false
	}
	return e.Answer, true
}

// Put stores answer under k. The entry is written to a temporary file and
// renamed so a concurrent reader never sees a partial entry.
func (c *Cache) Put(k Key, answer string) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(Entry{Key: k, Answer: answer, CreatedAt: c.now()})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "put-*.tmp")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(k)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	return c.sweep(func(Entry, bool) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many were
// removed.
func (c *Cache) Prune() (int, error) {
	return c.sweep(func(_ Entry, expired bool) bool { return expired })
}

// sweep removes the entries drop selects. Unreadable entries count as
// expired.
func (c *Cache) sweep(drop func(e Entry, expired bool) bool) (int, error) {
	var removed int
	err := c.each(func(path string, e Entry, ok bool, _ int64) {
		if !drop(e, !ok || c.expired(e)) {
			return
		}
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// Stats summarizes the cache directory.
type Stats struct {
	Dir        string         `json:"dir"`
	Entries    int            `json:"entries"`
	TotalBytes int64          `json:"totalBytes"`
	Expired    int            `json:"expired"`
	ByBackend  map[string]int `json:"byBackend,omitempty"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	err := c.each(func(_ string, e Entry, ok bool, size int64) {
		stats.Entries++
		stats.TotalBytes += size
		if !ok || c.expired(e) {
			stats.Expired++
			return
		}
		if stats.ByBackend == nil {
			stats.ByBackend = make(map[string]int)
		}
		stats.ByBackend[e.Key.Backend]++
	})
	return stats, err
}

// each calls fn for every entry file. ok is false when the file could not
// be decoded.
func (c *Cache) each(fn func(path string, e Entry, ok bool, size int64)) error {
	if !c.Enabled() || c.dir == "" {
		return nil
	}
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, d := range dirents {
		if d.IsDir() || filepath.Ext(d.Name()) != entryExt {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.dir, d.Name())
		e, err := readEntry(path)
		fn(path, e, err == nil, info.Size())
	}
	return nil
}

func (c *Cache) expired(e Entry) bool {
	return c.ttl > 0 && c.now().Sub(e.CreatedAt) > c.ttl
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Cache) entryPath(k Key) string {
	return filepath.Join(c.dir, k.ID()+entryExt)
}

func readEntry(path string) (Entry, error) {
	var e Entry
	data, err := os.ReadFile(path)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return e, nil
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "revio"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "revio"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "revio", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "revio", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "revio"), nil
	}
}
