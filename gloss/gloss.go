// Package gloss reorders annotated English tokens into sign language gloss
// order.
//
// The order of a gloss is topic-comment like: time markers first, then the
// topics (subjects), the objects and the verbs. A negated utterance ends with
// the literal NOT.
package gloss

import (
	"regexp"
	"strings"

	sent "github.com/revelaction/signpose/sentence"
)

// Not is appended to the gloss of a negated utterance.
const Not = "NOT"

var (
	timeWords = map[string]bool{
		"today":     true,
		"tomorrow":  true,
		"yesterday": true,
		"now":       true,
		"later":     true,
	}

	// anything that can not be signed or spelled
	nonAlnum = regexp.MustCompile(`[^A-Za-z0-9 ]+`)
)

// Sequence is the gloss of one utterance.
type Sequence struct {
	Time    []string `json:"time"`
	Topics  []string `json:"topics"`
	Objects []string `json:"objects"`
	Verbs   []string `json:"verbs"`

	// Others collects the content words no rule placed. It is never part of
	// the gloss.
	Others []string `json:"others"`

	Negated bool `json:"negated"`
}

// Text returns the gloss text: the buckets in gloss order joined by single
// spaces, with NOT appended when negated. Characters other than ASCII
// letters, digits and space are replaced by a space.
func (s Sequence) Text() string {
	var parts []string
	parts = append(parts, s.Time...)
	parts = append(parts, s.Topics...)
	parts = append(parts, s.Objects...)
	parts = append(parts, s.Verbs...)

	if s.Negated {
		parts = append(parts, Not)
	}

	text := strings.Join(parts, " ")
	return strings.TrimSpace(nonAlnum.ReplaceAllString(text, " "))
}

// Tokens splits the gloss text on spaces. An empty gloss has zero tokens.
func (s Sequence) Tokens() []string {
	return Split(s.Text())
}

// Split splits a gloss text on single spaces discarding the empty substrings
// of repeated separators.
func Split(text string) []string {
	tokens := []string{}
	for _, t := range strings.Split(text, " ") {
		if t == "" {
			continue
		}

		tokens = append(tokens, t)
	}

	return tokens
}

// Order classifies the tokens of one utterance in a single pass. The first
// matching rule wins for each token. A malformed token fails the whole
// utterance.
func Order(tokens []sent.Token) (Sequence, error) {
	var s Sequence

	for _, t := range tokens {
		if err := t.Validate(); err != nil {
			return Sequence{}, err
		}

		word := strings.ToUpper(t.Text)

		switch {
		case t.Dep == sent.DepNeg:
			s.Negated = true

		case isTimeMarker(t):
			s.Time = append(s.Time, word)

		case t.Pos == sent.PosDet || (t.Lemma == "be" && t.Pos == sent.PosAux):
			// dropped

		case t.Dep == sent.DepNsubj || t.Dep == sent.DepNsubjPass:
			s.Topics = append(s.Topics, word)

		case t.Pos == sent.PosVerb:
			s.Verbs = append(s.Verbs, word)

		case t.Dep == sent.DepDobj || t.Dep == sent.DepPobj:
			s.Objects = append(s.Objects, word)

		case t.Pos != sent.PosPunct && t.Pos != sent.PosAdp && t.Pos != sent.PosPart:
			s.Others = append(s.Others, word)
		}
	}

	return s, nil
}

func isTimeMarker(t sent.Token) bool {
	if t.Ent == sent.EntDate || t.Ent == sent.EntTime {
		return true
	}

	return timeWords[strings.ToLower(t.Text)]
}
