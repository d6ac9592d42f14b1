package zombiezen

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// The dictionary is read once at startup and written in a single
// transaction, so one connection is enough for both.
const poolSize = 1

// NewPool opens the database at dbPath for writing, creating it if it does
// not exist.
func NewPool(dbPath string) (*sqlitex.Pool, error) {
	return open(dbPath, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenWAL|sqlite.OpenURI)
}

// OpenExisting opens the database at dbPath read only. It never creates the
// file.
func OpenExisting(dbPath string) (*sqlitex.Pool, error) {
	return open(dbPath, sqlite.OpenReadOnly|sqlite.OpenURI)
}

func open(dbPath string, flags sqlite.OpenFlags) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool("file:"+dbPath, sqlitex.PoolOptions{
		Flags:    flags,
		PoolSize: poolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary database %s: %w", dbPath, err)
	}

	return pool, nil
}
