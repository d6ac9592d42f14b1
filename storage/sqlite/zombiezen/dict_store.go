package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// DictStore keeps a coordinate dictionary in the entries table, one row per
// keyframe. The position column keeps the keyframe order of a key.
type DictStore struct {
	pool *sqlitex.Pool
}

var _ storage.DictRepository = (*DictStore)(nil)

func NewDictStore(pool *sqlitex.Pool) *DictStore {
	return &DictStore{pool: pool}
}

func (s *DictStore) Read() (coord.Dictionary, error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrDictionary, err)
	}
	defer s.pool.Put(conn)

	d := coord.Dictionary{}
	err = sqlitex.Execute(conn, "SELECT key, data FROM entries ORDER BY key, position", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			key := stmt.ColumnText(0)

			var e coord.Entry
			if err := json.Unmarshal([]byte(stmt.ColumnText(1)), &e); err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}

			d[key] = append(d[key], e)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrDictionary, err)
	}

	return d, nil
}

// Write replaces the keyframes of every key of d in a single transaction.
func (s *DictStore) Write(d coord.Dictionary, cb func(current, total int, key string)) (err error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	// Start Transaction
	defer sqlitex.Save(conn)(&err)

	keys := d.Keys()
	for i, key := range keys {
		if cb != nil {
			cb(i+1, len(keys), key)
		}

		err = sqlitex.Execute(conn, "DELETE FROM entries WHERE key = ?", &sqlitex.ExecOptions{
			Args: []any{key},
		})
		if err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}

		for pos, e := range d[key] {
			data, marshalErr := json.Marshal(e)
			if marshalErr != nil {
				return marshalErr
			}

			err = sqlitex.Execute(conn, "INSERT INTO entries (key, position, data) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
				Args: []any{key, pos, string(data)},
			})
			if err != nil {
				return fmt.Errorf("failed to insert key %s: %w", key, err)
			}
		}
	}

	return nil
}
