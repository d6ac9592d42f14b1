package coord

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"sort"
)

// Dictionary maps an uppercase word or a single uppercase letter to its
// keyframes. It is read only once loaded and can be shared between
// goroutines.
type Dictionary map[string]Entries

// Lookup returns the keyframes of key. A key present with no keyframes is
// reported as missing.
func (d Dictionary) Lookup(key string) (Entries, bool) {
	es, ok := d[key]
	if !ok || len(es) == 0 {
		return nil, false
	}

	return es, true
}

// Keys returns the dictionary keys sorted.
func (d Dictionary) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}

// Fingerprint is a hex sha256 over the sorted keys and their keyframes. Two
// dictionaries with the same content have the same fingerprint.
func (d Dictionary) Fingerprint() string {
	h := sha256.New()
	for _, k := range d.Keys() {
		data, err := json.Marshal(d[k])
		if err != nil {
			// entries always marshal, keep the key in the hash anyway
			data = nil
		}

		io.WriteString(h, k)
		h.Write([]byte{0})
		h.Write(data)
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Decode reads a dictionary file.
func Decode(r io.Reader) (Dictionary, error) {
	var d Dictionary
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}

	if d == nil {
		d = Dictionary{}
	}

	return d, nil
}
