package filesystem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/storage"
)

// DictStore reads and writes a coordinate dictionary JSON file.
type DictStore struct {
	path string
}

var _ storage.DictRepository = (*DictStore)(nil)

func NewDictStore(path string) *DictStore {
	return &DictStore{path: path}
}

func (s *DictStore) Read() (coord.Dictionary, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrDictionary, err)
	}
	defer f.Close()

	d, err := coord.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", storage.ErrDictionary, s.path, err)
	}

	return d, nil
}

// Write writes the dictionary with one key per line, keys sorted.
func (s *DictStore) Write(d coord.Dictionary, cb func(current, total int, key string)) error {
	keys := d.Keys()

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, k := range keys {
		if cb != nil {
			cb(i+1, len(keys), k)
		}

		key, err := json.Marshal(k)
		if err != nil {
			return err
		}

		value, err := json.Marshal(d[k])
		if err != nil {
			return fmt.Errorf("key %s: %w", k, err)
		}

		buf.WriteString("\t")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(keys)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return os.WriteFile(s.path, buf.Bytes(), 0644)
}
