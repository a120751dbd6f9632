package holiday

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

// cacheEntry holds the holiday list for one (country, year) pair.
type cacheEntry struct {
	ExpiresAt time.Time `json:"expires_at"`
	Holidays  []Record  `json:"holidays"`
}

// Cache is a TTL-bounded holiday cache keyed by (countryCode, year). Entries
// beyond the size bound are evicted oldest-first by the underlying otter
// cache. The CLI variant persists entries to disk between runs; the server
// uses the memory-only variant.
type Cache struct {
	cache      *otter.Cache[string, cacheEntry]
	logger     *slog.Logger
	saveCancel context.CancelFunc
	dir        string
	saveWg     sync.WaitGroup
	ttl        time.Duration
	mu         sync.RWMutex
}

// NewCache creates a disk-backed cache in dir. Existing entries are loaded at
// startup and the cache is saved periodically and on Close.
func NewCache(ctx context.Context, dir string, ttl time.Duration, maxEntries int, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := newMemory(ttl, maxEntries, logger)
	c.dir = dir

	if err := c.loadFromDisk(); err != nil {
		logger.Warn("failed to load holiday cache from disk", "error", err)
	}
	logger.Info("holiday cache initialized", "dir", dir, "entries_loaded", c.cache.EstimatedSize())

	c.startPeriodicSave(ctx)
	return c, nil
}

// NewMemoryCache creates a memory-only cache with no disk persistence.
func NewMemoryCache(ttl time.Duration, maxEntries int, logger *slog.Logger) *Cache {
	return newMemory(ttl, maxEntries, logger)
}

func newMemory(ttl time.Duration, maxEntries int, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEntries <= 0 {
		maxEntries = defaultCacheMaxEntries
	}
	cache := otter.Must(&otter.Options[string, cacheEntry]{
		MaximumSize:      maxEntries,
		ExpiryCalculator: otter.ExpiryWriting[string, cacheEntry](ttl),
	})
	return &Cache{cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(countryCode string, year int) string {
	return fmt.Sprintf("%s:%d", countryCode, year)
}

// Get returns the cached holiday list for a country and year.
func (c *Cache) Get(countryCode string, year int) ([]Record, bool) {
	key := cacheKey(countryCode, year)
	entry, found := c.cache.GetIfPresent(key)
	if !found {
		c.logger.Debug("holiday cache miss", "key", key, "reason", "not_found")
		return nil, false
	}

	// Otter expires on TTL, but double-check for entries loaded from disk.
	if time.Now().After(entry.ExpiresAt) {
		c.logger.Debug("holiday cache miss", "key", key, "reason", "expired", "expired_at", entry.ExpiresAt)
		c.cache.Invalidate(key)
		return nil, false
	}

	return entry.Holidays, true
}

// Set stores the holiday list for a country and year with the cache TTL.
func (c *Cache) Set(countryCode string, year int, holidays []Record) {
	key := cacheKey(countryCode, year)
	c.cache.Set(key, cacheEntry{
		Holidays:  holidays,
		ExpiresAt: time.Now().Add(c.ttl),
	})
	c.logger.Debug("holiday cache set", "key", key, "holidays", len(holidays))
}

// Flush removes every cached entry.
func (c *Cache) Flush() {
	var keys []string
	c.cache.All()(func(key string, _ cacheEntry) bool {
		keys = append(keys, key)
		return true
	})
	for _, key := range keys {
		c.cache.Invalidate(key)
	}
	c.logger.Debug("holiday cache flushed", "entries", len(keys))
}

// Len returns the estimated number of cached (country, year) entries.
func (c *Cache) Len() int {
	return int(c.cache.EstimatedSize())
}

func (c *Cache) cachePath() string {
	return filepath.Join(c.dir, "holiday-cache.gob")
}

func (c *Cache) loadFromDisk() error {
	file, err := os.Open(c.cachePath())
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Info("no existing holiday cache file", "path", c.cachePath())
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			c.logger.Debug("failed to close cache file", "error", closeErr)
		}
	}()

	var entries map[string]cacheEntry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache file: %w", err)
	}

	now := time.Now()
	valid := 0
	for key, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			c.cache.Set(key, entry)
			valid++
		}
	}
	c.logger.Info("holiday cache loaded from disk",
		"path", c.cachePath(), "total_entries", len(entries), "valid_entries", valid)
	return nil
}

func (c *Cache) saveToDisk() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tempPath := c.cachePath() + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Debug("failed to remove temp file", "error", removeErr)
		}
	}()

	entries := make(map[string]cacheEntry)
	now := time.Now()
	c.cache.All()(func(key string, entry cacheEntry) bool {
		if now.Before(entry.ExpiresAt) {
			entries[key] = entry
		}
		return true
	})

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		return fmt.Errorf("encoding cache to file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing cache file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}

	if err := os.Rename(tempPath, c.cachePath()); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}
	c.logger.Debug("holiday cache saved to disk", "entries", len(entries))
	return nil
}

func (c *Cache) startPeriodicSave(ctx context.Context) {
	saveCtx, cancel := context.WithCancel(ctx)
	c.saveCancel = cancel

	c.saveWg.Add(1)
	go func() {
		defer c.saveWg.Done()

		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-saveCtx.Done():
				return
			case <-ticker.C:
				if err := c.saveToDisk(); err != nil {
					c.logger.Error("periodic holiday cache save failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the periodic save loop and, for disk-backed caches, writes a
// final snapshot.
func (c *Cache) Close() error {
	if c.saveCancel != nil {
		c.saveCancel()
	}
	c.saveWg.Wait()

	if c.dir == "" {
		return nil
	}
	if err := c.saveToDisk(); err != nil {
		c.logger.Error("final holiday cache save failed", "error", err)
		return err
	}
	return nil
}
