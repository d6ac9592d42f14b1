package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/revelaction/signpose/annotate"
	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/pipeline"
	"github.com/revelaction/signpose/resolve"
	"github.com/revelaction/signpose/storage"
	"github.com/revelaction/signpose/storage/filesystem"
	"github.com/revelaction/signpose/storage/loader"
	"github.com/revelaction/signpose/storage/sqlite/zombiezen"
)

const annotatorTimeout = 10 * time.Second

func loadDictionary(path string) (coord.Dictionary, error) {
	if path == "" {
		return nil, errors.New("Dictionary path must be specified via -d or SIGNPOSE_DICT")
	}

	return loader.Load(path)
}

func newPipeline(d coord.Dictionary, legacy bool) *pipeline.Pipeline {
	r := resolve.NewResolver(d)
	r.Legacy = legacy

	p := pipeline.New(r)
	p.Fingerprint = d.Fingerprint()
	return p
}

// newAnnotator returns the annotator for -text input: the HTTP service when
// an URL is given, else the corpus directory.
func newAnnotator(opts PipelineOptions) (pipeline.Annotator, error) {
	switch {
	case opts.AnnotatorURL != "":
		return annotate.NewClient(opts.AnnotatorURL, annotatorTimeout), nil
	case opts.CorpusPath != "":
		return annotate.LoadCorpus(opts.CorpusPath)
	}

	return nil, nil
}

// runPipeline loads the dictionary and runs the input selected by opts:
// annotated tokens, English text or the gloss words of the arguments.
func runPipeline(ctx context.Context, opts PipelineOptions, ui UI) (pipeline.Result, error) {
	d, err := loadDictionary(opts.DictPath)
	if err != nil {
		return pipeline.Result{}, err
	}

	p := newPipeline(d, opts.Legacy)

	switch {
	case opts.Tokens != "":
		tokens, err := readTokens(opts.Tokens, ui)
		if err != nil {
			return pipeline.Result{}, err
		}
		return p.RunTokens(ctx, tokens)

	case opts.Text != "":
		a, err := newAnnotator(opts)
		if err != nil {
			return pipeline.Result{}, err
		}
		if a != nil {
			p.Annotator = a
		}
		return p.Run(ctx, opts.Text)
	}

	return p.RunGloss(ctx, strings.Join(opts.Gloss, " "))
}

// NewDictRepository opens the dictionary store at path: a SQLite database
// by extension, any other path a JSON file. A SQLite database is created
// when create is set.
func NewDictRepository(p *Pools, path string, create bool) (storage.DictRepository, error) {
	if !loader.IsSQLite(path) {
		return filesystem.NewDictStore(path), nil
	}

	if !create {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("repository not found: %s", path)
		}
	}

	pool, err := p.Open(path)
	if err != nil {
		return nil, err
	}

	if create {
		if err := zombiezen.CreateDictTables(pool); err != nil {
			return nil, fmt.Errorf("failed to create dictionary tables: %w", err)
		}
	}

	return zombiezen.NewDictStore(pool), nil
}
