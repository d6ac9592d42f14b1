package storage

import (
	"errors"

	"github.com/revelaction/signpose/coord"
)

// ErrDictionary marks a coordinate dictionary that is missing, unreadable or
// malformed. It is a configuration error: nothing can be resolved without
// the dictionary.
var ErrDictionary = errors.New("coordinate dictionary")

// DictReader loads a whole coordinate dictionary in memory.
type DictReader interface {
	// Read returns all keys and keyframes of the dictionary.
	Read() (coord.Dictionary, error)
}

// DictWriter persists a coordinate dictionary. Only the offline conversion
// commands write; the pipeline only reads.
type DictWriter interface {
	// Write stores every key of d. The callback, if not nil, is called once
	// per key in sorted key order.
	Write(d coord.Dictionary, cb func(current, total int, key string)) error
}

// DictRepository combines read and write operations
type DictRepository interface {
	DictReader
	DictWriter
}
