// Package pipeline runs the stages that turn an utterance into a timeline:
// annotate, order into gloss, resolve and assemble.
//
// The stages are plain functions called in order. The context is checked
// between stages; the core stages have no side effects to undo.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/revelaction/signpose/cache"
	"github.com/revelaction/signpose/gloss"
	"github.com/revelaction/signpose/logger"
	"github.com/revelaction/signpose/resolve"
	sent "github.com/revelaction/signpose/sentence"
	"github.com/revelaction/signpose/stat"
	"github.com/revelaction/signpose/timeline"
)

var ErrNoAnnotator = errors.New("no annotator configured")

// Annotator tags the words of an English utterance with part of speech,
// dependency, lemma and entity.
type Annotator interface {
	Annotate(ctx context.Context, text string) ([]sent.Token, error)
}

// Result holds the output of every stage.
type Result struct {
	// Text is the gloss text that was resolved
	Text string `json:"gloss"`

	// Sequence is nil when the run started from gloss text
	Sequence *gloss.Sequence `json:"sequence,omitempty"`

	Tokens   []resolve.Token   `json:"tokens"`
	Timeline timeline.Timeline `json:"timeline"`
	Stats    stat.Stats        `json:"stats"`

	// Cached is true when tokens and timeline came from the cache
	Cached bool `json:"cached"`
}

type Pipeline struct {
	// Annotator is needed by Run only
	Annotator Annotator

	Resolver *resolve.Resolver

	// Cache is optional. Fingerprint identifies the dictionary in the cache
	// keys.
	Cache       cache.Cache
	Fingerprint string

	Logger *slog.Logger
}

func New(r *resolve.Resolver) *Pipeline {
	return &Pipeline{Resolver: r}
}

// Run annotates the English text and runs the rest of the pipeline on its
// tokens. Blank text is an empty utterance: it skips the annotator and yields
// the placeholder clip.
func (p *Pipeline) Run(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return p.RunTokens(ctx, nil)
	}

	if p.Annotator == nil {
		return Result{}, ErrNoAnnotator
	}

	sc := logger.StartSpan(ctx, "pipeline.annotate")
	tokens, err := p.Annotator.Annotate(sc.Context(), text)
	sc.RecordError(err)
	sc.End()
	if err != nil {
		return Result{}, err
	}

	return p.RunTokens(ctx, tokens)
}

// RunTokens orders the annotated tokens into a gloss and runs the rest of
// the pipeline on it.
func (p *Pipeline) RunTokens(ctx context.Context, tokens []sent.Token) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	sc := logger.StartSpan(ctx, "pipeline.order")
	seq, err := gloss.Order(tokens)
	sc.RecordError(err)
	sc.SetAttributes(attribute.Int("tokens", len(tokens)), attribute.Bool("negated", seq.Negated))
	sc.End()
	if err != nil {
		return Result{}, err
	}

	res, err := p.run(ctx, seq.Text())
	if err != nil {
		return Result{}, err
	}

	res.Sequence = &seq
	return res, nil
}

// RunGloss resolves and assembles gloss text. Dictionary keys are upper
// case, so is the gloss.
func (p *Pipeline) RunGloss(ctx context.Context, text string) (Result, error) {
	return p.run(ctx, strings.ToUpper(text))
}

func (p *Pipeline) run(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Gloss: logger.Ptr(text), Component: "signpose.pipeline"})
	res := Result{Text: text}

	key := ""
	if p.Cache != nil {
		key = cache.Key(text, p.Fingerprint, p.Resolver.Legacy)
		if e, ok := p.lookup(ctx, key); ok {
			res.Tokens, res.Timeline, res.Cached = e.Tokens, e.Timeline, true
			p.warnUnknown(ctx, res.Tokens)
			res.Stats = stats(res.Tokens, res.Timeline)
			return res, nil
		}
	}

	sc := logger.StartSpan(ctx, "pipeline.resolve")
	res.Tokens = p.Resolver.Resolve(sc.Context(), text)
	sc.SetAttributes(attribute.Int("tokens", len(res.Tokens)), attribute.Int("entries", resolve.Entries(res.Tokens)))
	sc.End()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	sc = logger.StartSpan(ctx, "pipeline.assemble")
	res.Timeline = timeline.Assemble(res.Tokens)
	sc.SetAttributes(attribute.Int("frames", len(res.Timeline.Frames)))
	sc.End()

	res.Stats = stats(res.Tokens, res.Timeline)

	if p.Cache != nil {
		if err := p.Cache.Set(ctx, key, cache.Entry{Tokens: res.Tokens, Timeline: res.Timeline}); err != nil {
			p.logger().WarnContext(ctx, "failed to store timeline in cache", "error", err)
		}
	}

	return res, nil
}

// lookup reports a hit. Cache errors other than a miss are logged and
// treated as a miss.
func (p *Pipeline) lookup(ctx context.Context, key string) (cache.Entry, bool) {
	e, err := p.Cache.Get(ctx, key)
	if err == nil {
		return e, true
	}

	if !errors.Is(err, cache.ErrMiss) {
		p.logger().WarnContext(ctx, "failed to read timeline from cache", "error", err)
	}

	return cache.Entry{}, false
}

// warnUnknown logs the blank characters of cached tokens, as the resolver
// does on a miss.
func (p *Pipeline) warnUnknown(ctx context.Context, tokens []resolve.Token) {
	for _, t := range tokens {
		for _, c := range t.Unknown {
			p.logger().WarnContext(ctx, "skipping unknown character", "char", c, "token", t.Text, "cached", true)
		}
	}
}

func stats(tokens []resolve.Token, tl timeline.Timeline) stat.Stats {
	h := stat.NewHandler()
	h.Tokens(tokens)
	h.Aggregate(tl)
	return h.Get()
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}

	return slog.Default()
}
