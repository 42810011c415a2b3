package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// indexEntry represents collected metadata for a single note file.
type indexEntry struct {
	ID           string    `json:"id"`
	Hash         string    `json:"hash,omitempty"`
	Title        string    `json:"title,omitempty"`
	Source       string    `json:"source,omitempty"`
	Created      time.Time `json:"created,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// index represents the persistent cache state. Hashes is the dedup index:
// content hash -> note ID, one note per hash.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // Key is relative path (e.g. "20240101T.._shot.md")
	Hashes  map[string]string      `json:"hashes"`
	dirty   bool
	mu      sync.RWMutex
}

// cache manages the loading, updating, and saving of the index.
type cache struct {
	Path  string // Path to <systemDir>/index.json
	index *index
}

// newCache initializes a cache at the given path.
func newCache(storePath, systemDir string) *cache {
	cachePath := filepath.Join(storePath, systemDir, "index.json")

	return &cache{
		Path: cachePath,
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
			Hashes:  make(map[string]string),
		},
	}
}

// Load reads the cache from disk. If not found or invalid, returns empty index (no error).
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil // Start fresh
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	if err := json.Unmarshal(data, c.index); err != nil {
		// Treat corruption as an empty index to self-heal.
		c.index.Entries = make(map[string]*indexEntry)
		c.index.Hashes = make(map[string]string)
		return nil
	}

	if c.index.Entries == nil {
		c.index.Entries = make(map[string]*indexEntry)
	}
	if c.index.Hashes == nil {
		c.index.Hashes = make(map[string]string)
	}

	c.index.dirty = false
	return nil
}

// Save persists the cache to disk if it's dirty.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}

	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()

	return nil
}

// Get retrieves an entry if it exists and is fresh (mtime matches).
func (c *cache) Get(relPath string, currentMtime time.Time) (*indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[relPath]
	if !ok {
		return nil, false
	}

	if !entry.LastModified.Equal(currentMtime) {
		return nil, false
	}

	return entry, true
}

// Set updates an entry in the cache and records its hash in the dedup index.
func (c *cache) Set(relPath string, entry *indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries[relPath] = entry
	if entry.Hash != "" {
		c.index.Hashes[entry.Hash] = entry.ID
	}
	c.index.dirty = true
}

// SeenHash looks up the dedup index.
func (c *cache) SeenHash(hash string) (string, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	id, ok := c.index.Hashes[hash]
	return id, ok
}

// SetHash records a content hash as held by the given note.
func (c *cache) SetHash(hash, noteID string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Hashes[hash] = noteID
	c.index.dirty = true
}

// Prune removes entries that are not in the 'keep' set. Hashes held by
// pruned notes are dropped as well so the files can be re-ingested.
func (c *cache) Prune(keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	removed := make(map[string]bool)
	for path, entry := range c.index.Entries {
		if !keep[path] {
			removed[entry.ID] = true
			delete(c.index.Entries, path)
			c.index.dirty = true
		}
	}

	for hash, id := range c.index.Hashes {
		if removed[id] {
			delete(c.index.Hashes, hash)
			c.index.dirty = true
		}
	}
}

// Delete removes a single entry (and its hash) from the cache.
func (c *cache) Delete(relPath string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	entry, ok := c.index.Entries[relPath]
	if !ok {
		return
	}

	delete(c.index.Entries, relPath)
	for hash, id := range c.index.Hashes {
		if id == entry.ID {
			delete(c.index.Hashes, hash)
		}
	}
	c.index.dirty = true
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}
