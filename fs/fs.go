// Package fs stores rendered diagram rasters on disk.
package fs

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultCacheDir returns the default cache directory for prettify,
// $XDG_CACHE_HOME/prettify or the platform equivalent.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "prettify")
}
