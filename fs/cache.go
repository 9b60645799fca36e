package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var _ prettify.RasterCache = (*RasterCache)(nil)

// RasterCache keeps PNG bytes in one file per key.
type RasterCache struct {
	dir string
}

// NewRasterCache creates a cache rooted at dir. The directory is created on
// the first Put.
func NewRasterCache(dir string) *RasterCache {
	return &RasterCache{dir: dir}
}

// Key derives a cache key from everything that affects a raster.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		// Length prefixes keep ("ab","c") and ("a","bc") apart.
		fmt.Fprintf(h, "%d:%s", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached bytes for key. Unreadable or empty entries are
// misses.
func (c *RasterCache) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Put stores data under key. The write goes through a temporary file so a
// concurrent Get never sees a partial entry.
func (c *RasterCache) Put(key string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

func (c *RasterCache) path(key string) string {
	return filepath.Join(c.dir, key+".png")
}
