// Package assets handles asset lookup, caching and decoding.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/icebead/internal/logger"
)

// ErrNotFound is returned when no search path contains the asset.
var ErrNotFound = errors.New("asset not found")

// Manager resolves asset names against a list of directories.
type Manager struct {
	paths []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a manager searching the given directories.
func NewManager(paths ...string) *Manager {
	m := &Manager{cache: NewCache()}
	for _, p := range paths {
		m.AddSearchPath(p)
	}
	return m
}

// AddSearchPath adds a directory to the manager.
// Paths are searched in reverse order (last added = highest priority).
func (m *Manager) AddSearchPath(dir string) {
	if dir == "" {
		return
	}
	m.mu.Lock()
	m.paths = append(m.paths, filepath.Clean(dir))
	m.mu.Unlock()
}

// SearchPaths returns the configured directories in priority order.
func (m *Manager) SearchPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.paths))
	for i := len(m.paths) - 1; i >= 0; i-- {
		out = append(out, m.paths[i])
	}
	return out
}

// Resolve returns the file path an asset name maps to. Absolute names are
// checked as-is.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	for _, dir := range m.SearchPaths() {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if isFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load reads an asset, serving repeated reads from the cache.
func (m *Manager) Load(name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	path, err := m.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m.cache.Set(name, data)
	logger.Debug("asset loaded", zap.String("name", name), zap.String("path", path), zap.Int("bytes", len(data)))
	return data, nil
}

// Close drops every cached asset.
func (m *Manager) Close() {
	hits, misses := m.cache.Stats()
	logger.Debug("asset cache closed", zap.Int("hits", hits), zap.Int("misses", misses))
	m.cache.Clear()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
