// Package cache persists parsed output as JSON files keyed by module
// id. It is purely an optimization: the service produces identical
// output with or without it.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/studylink/cnxgest/internal/cnxml"
	"github.com/studylink/cnxgest/internal/collection"
)

// Cache stores serialized modules and the book structure under a
// directory. A nil *Cache is valid and caches nothing.
type Cache struct {
	dir string
}

// New creates the cache directory layout if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "modules"), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// GetModule returns the cached module, or (nil, nil) on a miss. A
// corrupt cache entry is reported as a miss with its error so the
// caller can re-parse and overwrite it.
func (c *Cache) GetModule(id string) (*cnxml.Module, error) {
	if c == nil {
		return nil, nil
	}
	var m cnxml.Module
	ok, err := c.read(c.modulePath(id), &m)
	if !ok || err != nil {
		return nil, err
	}
	return &m, nil
}

// PutModule stores a parsed module.
func (c *Cache) PutModule(m *cnxml.Module) error {
	if c == nil {
		return nil
	}
	return c.write(c.modulePath(m.ID), m)
}

// GetStructure returns the cached book structure, or (nil, nil) on a miss.
func (c *Cache) GetStructure() (*collection.Structure, error) {
	if c == nil {
		return nil, nil
	}
	var s collection.Structure
	ok, err := c.read(filepath.Join(c.dir, "structure.json"), &s)
	if !ok || err != nil {
		return nil, err
	}
	return &s, nil
}

// PutStructure stores the book structure.
func (c *Cache) PutStructure(s *collection.Structure) error {
	if c == nil {
		return nil
	}
	return c.write(filepath.Join(c.dir, "structure.json"), s)
}

// ModuleCount reports how many modules are currently cached.
func (c *Cache) ModuleCount() int {
	if c == nil {
		return 0
	}
	matches, err := filepath.Glob(filepath.Join(c.dir, "modules", "*.json"))
	if err != nil {
		return 0
	}
	return len(matches)
}

func (c *Cache) modulePath(id string) string {
	return filepath.Join(c.dir, "modules", id+".json")
}

func (c *Cache) read(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read cache %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode cache %s: %w", path, err)
	}
	return true, nil
}

// write is atomic: a temp file in the same directory renamed over the
// target, so readers never observe a partial entry.
func (c *Cache) write(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}
