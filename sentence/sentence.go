package sentence

import (
	"errors"
	"fmt"
)

// Part of speech tags (universal POS) consulted by the gloss ordering.
const (
	PosVerb  = "VERB"
	PosDet   = "DET"
	PosAux   = "AUX"
	PosPunct = "PUNCT"
	PosAdp   = "ADP"
	PosPart  = "PART"
)

// Dependency relations consulted by the gloss ordering.
const (
	DepNeg       = "neg"
	DepNsubj     = "nsubj"
	DepNsubjPass = "nsubjpass"
	DepDobj      = "dobj"
	DepPobj      = "pobj"
)

// Entity types. An empty Ent means no entity (NONE).
const (
	EntDate = "DATE"
	EntTime = "TIME"
)

var ErrMalformedToken = errors.New("malformed annotated token")

// Doc is an annotated utterance as exported by the annotator. Only the
// first sentence of Tokens is turned into a gloss.
type Doc struct {
	Id int

	Title string

	Labels []string
	Tokens [][]Token `json:"tokens"`
}

// Utterance returns the tokens of the first sentence of the doc.
func (d Doc) Utterance() []Token {
	if len(d.Tokens) == 0 {
		return nil
	}

	return d.Tokens[0]
}

// Token represents a word of the utterance, with POS and metadata.
type Token struct {
	Id   int    `json:"id"`
	Head int    `json:"head"`
	Pos  string `json:"pos"`
	Dep  string `json:"dep"`

	// Named entity type of the token, empty if the token is not part of an
	// entity.
	Ent string `json:"ent,omitempty"`

	// A string containing detailed POS data
	Tag string `json:"tag,omitempty"`

	// the index of the start character of the token in the original text
	Idx int `json:"idx"`

	// The unmodified word
	Text string `json:"text"`

	// The lemma of the word
	Lemma string `json:"lemma"`

	// The index of the word in the sentence, starting at 0.
	Index int `json:"index"`
}

// Validate checks that the annotator filled the fields the gloss ordering
// depends on. A missing tag can not be defaulted without changing the order.
func (t Token) Validate() error {
	switch {
	case t.Text == "":
		return fmt.Errorf("%w: token %d has no text", ErrMalformedToken, t.Index)
	case t.Lemma == "":
		return fmt.Errorf("%w: token %d (%q) has no lemma", ErrMalformedToken, t.Index, t.Text)
	case t.Pos == "":
		return fmt.Errorf("%w: token %d (%q) has no pos", ErrMalformedToken, t.Index, t.Text)
	case t.Dep == "":
		return fmt.Errorf("%w: token %d (%q) has no dep", ErrMalformedToken, t.Index, t.Text)
	}

	return nil
}
