// Package cache provides the durable key-value store that makes repeated runs
// incremental: resolved profile URLs, club IDs, match URLs and fixture lists
// are written once and reused on every later run.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Cache is a hierarchical JSON-backed key-value store. Lookups are pure
// functions of the key path: no normalization happens here, callers must
// pre-normalize identifiers so that semantically identical queries always
// produce the same path. Entries are only added during a run, never evicted.
type Cache struct {
	mu   sync.RWMutex
	path string
	data map[string]any
}

// Load reads the cache file at path. A missing file is not an error; it
// initializes an empty cache. A corrupt file is discarded with the same
// effect, since every entry can be recomputed.
func Load(path string) (*Cache, error) {
	c := &Cache{path: path, data: map[string]any{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if err := json.Unmarshal(raw, &c.data); err != nil {
		c.data = map[string]any{}
	}
	return c, nil
}

// Get returns the raw value at the key path, or false when any segment is
// missing.
func (c *Cache) Get(keys ...string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var cur any = c.data
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string value at the key path.
func (c *Cache) GetString(keys ...string) (string, bool) {
	v, ok := c.Get(keys...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// GetJSON decodes the value at the key path into dst. Returns false when the
// path is missing or the stored shape does not decode into dst.
func (c *Cache) GetJSON(dst any, keys ...string) bool {
	v, ok := c.Get(keys...)
	if !ok {
		return false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// Set stores value at the key path, creating intermediate maps as needed.
// The value is normalized through JSON so that a later Get after reload
// observes exactly what a Get before reload would have. Concurrent writers to
// the same path are last-writer-wins, which is safe because all writers
// compute the same deterministic value for the same path.
func (c *Cache) Set(value any, keys ...string) {
	if len(keys) == 0 {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	var norm any
	if err := json.Unmarshal(raw, &norm); err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.data
	for _, k := range keys[:len(keys)-1] {
		next, ok := cur[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[k] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = norm
}

// Save persists the cache atomically: the JSON document is written to a
// temporary file in the same directory and renamed over the target, so a
// crash mid-write never leaves a partial file behind.
func (c *Cache) Save() error {
	c.mu.RLock()
	raw, err := json.MarshalIndent(c.data, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}
