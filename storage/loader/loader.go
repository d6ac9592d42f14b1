// Package loader opens the coordinate dictionary backend a path points to.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/storage"
	"github.com/revelaction/signpose/storage/filesystem"
	"github.com/revelaction/signpose/storage/sqlite/zombiezen"
)

// IsSQLite reports whether path names a SQLite dictionary database, by
// extension.
func IsSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}

	return false
}

// Load reads the whole dictionary at path. A SQLite database is opened and
// closed before returning. Every failure wraps storage.ErrDictionary.
func Load(path string) (coord.Dictionary, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no path configured", storage.ErrDictionary)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: not found: %s", storage.ErrDictionary, path)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", storage.ErrDictionary, path)
	}

	if !IsSQLite(path) {
		return filesystem.NewDictStore(path).Read()
	}

	pool, err := zombiezen.OpenExisting(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrDictionary, err)
	}
	defer pool.Close()

	return zombiezen.NewDictStore(pool).Read()
}
