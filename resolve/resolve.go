// Package resolve maps gloss tokens to hand pose keyframes.
//
// A token found in the dictionary resolves to its own keyframes. Any other
// token is fingerspelled: each character resolves to its letter keyframes,
// and a character with no pose resolves to the blank entry. Resolution never
// fails; every token gets at least one keyframe.
package resolve

import (
	"context"
	"log/slog"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/gloss"
)

// Dictionary is the lookup capability the resolver needs. coord.Dictionary
// implements it.
type Dictionary interface {
	Lookup(key string) (coord.Entries, bool)
}

// Token is a resolved gloss token.
type Token struct {
	Text string `json:"text"`

	// Entries are shared with the dictionary and must not be modified.
	Entries coord.Entries `json:"entries"`

	// Spelled is true when the token was not a dictionary word
	Spelled bool `json:"spelled"`

	// Unknown lists the characters that resolved to the blank entry
	Unknown []string `json:"unknown,omitempty"`
}

type Resolver struct {
	Dict Dictionary

	// Legacy keeps a single token per distinct word: the first occurrence's
	// position with the last occurrence's keyframes.
	Legacy bool

	// Logger receives the unknown character warnings. slog.Default() when
	// nil.
	Logger *slog.Logger
}

func NewResolver(d Dictionary) *Resolver {
	return &Resolver{Dict: d}
}

// Resolve resolves every token of the gloss text, in order, one Token per
// occurrence.
func (r *Resolver) Resolve(ctx context.Context, text string) []Token {
	words := gloss.Split(text)

	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, r.word(ctx, w))
	}

	if r.Legacy {
		return Collapse(tokens)
	}

	return tokens
}

func (r *Resolver) word(ctx context.Context, w string) Token {
	if es, ok := r.Dict.Lookup(w); ok {
		return Token{Text: w, Entries: es}
	}

	t := Token{Text: w, Spelled: true}
	for _, c := range w {
		letter := string(c)

		es, ok := r.Dict.Lookup(letter)
		if !ok {
			r.logger().WarnContext(ctx, "skipping unknown character", "char", letter, "token", w)
			t.Entries = append(t.Entries, coord.Default())
			t.Unknown = append(t.Unknown, letter)
			continue
		}

		t.Entries = append(t.Entries, es...)
	}

	if len(t.Entries) == 0 {
		t.Entries = coord.Entries{coord.Default()}
	}

	return t
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}

	return slog.Default()
}

// Collapse keeps one token per distinct text, at the position of its first
// occurrence and with the value of its last occurrence.
func Collapse(tokens []Token) []Token {
	index := map[string]int{}
	out := []Token{}

	for _, t := range tokens {
		if i, ok := index[t.Text]; ok {
			out[i] = t
			continue
		}

		index[t.Text] = len(out)
		out = append(out, t)
	}

	return out
}

// Entries returns the number of keyframes over all tokens.
func Entries(tokens []Token) int {
	n := 0
	for _, t := range tokens {
		n += len(t.Entries)
	}

	return n
}
