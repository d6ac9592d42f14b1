package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	sent "github.com/revelaction/signpose/sentence"
)

// ReadDoc reads a Doc JSON from the given path and unmarshals it.
func ReadDoc(path string) (sent.Doc, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return sent.Doc{}, err
	}

	var doc sent.Doc
	err = json.Unmarshal(f, &doc)
	if err != nil {
		return sent.Doc{}, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// ReadTokens reads the annotated tokens of one utterance from r.
func ReadTokens(r io.Reader) ([]sent.Token, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return DecodeTokens(data)
}

// DecodeTokens accepts either a JSON array of tokens or a Doc, in which case
// the tokens of its first sentence are returned.
func DecodeTokens(data []byte) ([]sent.Token, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", sent.ErrMalformedToken)
	}

	if data[0] == '[' {
		var tokens []sent.Token
		if err := json.Unmarshal(data, &tokens); err != nil {
			return nil, fmt.Errorf("%w: %v", sent.ErrMalformedToken, err)
		}

		return tokens, nil
	}

	var doc sent.Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", sent.ErrMalformedToken, err)
	}

	return doc.Utterance(), nil
}
