// Package annotate provides the part of speech and dependency annotators the
// pipeline turns text into tokens with.
package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/revelaction/signpose/file"
	sent "github.com/revelaction/signpose/sentence"
)

var ErrAnnotator = errors.New("annotator failed")

// maxResponse bounds the annotator response body.
const maxResponse = 8 << 20

// Client calls an annotation service over HTTP. The service receives
// {"text": "..."} and answers with a JSON array of tokens or a doc.
type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

func (c *Client) Annotate(ctx context.Context, text string) ([]sent.Token, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnnotator, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnnotator, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrAnnotator, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrAnnotator, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	tokens, err := file.DecodeTokens(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnnotator, err)
	}

	return tokens, nil
}

// Corpus answers with pre-annotated utterances, looked up by their text. It
// is loaded from a directory of doc files whose Title is the utterance.
type Corpus struct {
	docs map[string][]sent.Token
}

func NewCorpus() *Corpus {
	return &Corpus{docs: map[string][]sent.Token{}}
}

// LoadCorpus reads every .json doc of dir.
func LoadCorpus(dir string) (*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	c := NewCorpus()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}

		doc, err := file.ReadDoc(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}

		c.Add(doc.Title, doc.Utterance())
	}

	return c, nil
}

func (c *Corpus) Add(text string, tokens []sent.Token) {
	c.docs[normalize(text)] = tokens
}

func (c *Corpus) Len() int {
	return len(c.docs)
}

func (c *Corpus) Annotate(ctx context.Context, text string) ([]sent.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens, ok := c.docs[normalize(text)]
	if !ok {
		return nil, fmt.Errorf("%w: no annotation for %q", ErrAnnotator, text)
	}

	return tokens, nil
}

// normalize lowercases and collapses whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
