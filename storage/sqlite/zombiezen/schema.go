package zombiezen

import (
	"context"
	_ "embed"
	"fmt"

	"zombiezen.com/go/sqlite/sqlitex"
)

//go:embed sql/dictionary.sql
var dictionarySchema string

// CreateDictTables creates the entries table of a dictionary database. It
// is a no-op on a database that already has it.
func CreateDictTables(pool *sqlitex.Pool) error {
	conn, err := pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, dictionarySchema, nil); err != nil {
		return fmt.Errorf("failed to create dictionary schema: %w", err)
	}

	return nil
}
