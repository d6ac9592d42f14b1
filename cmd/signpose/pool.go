package main

import (
	"errors"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/revelaction/signpose/storage/sqlite/zombiezen"
)

// Pools keeps the SQLite pools a command opens, one per database path, and
// closes them all at the end of the command.
type Pools struct {
	byPath map[string]*sqlitex.Pool
}

func (p *Pools) Open(path string) (*sqlitex.Pool, error) {
	if pool, ok := p.byPath[path]; ok {
		return pool, nil
	}

	pool, err := zombiezen.NewPool(path)
	if err != nil {
		return nil, err
	}

	if p.byPath == nil {
		p.byPath = map[string]*sqlitex.Pool{}
	}
	p.byPath[path] = pool
	return pool, nil
}

func (p *Pools) Close() error {
	var errs []error
	for path, pool := range p.byPath {
		errs = append(errs, pool.Close())
		delete(p.byPath, path)
	}

	return errors.Join(errs...)
}
