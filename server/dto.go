package server

import (
	"github.com/revelaction/signpose/gloss"
	"github.com/revelaction/signpose/pipeline"
	"github.com/revelaction/signpose/resolve"
	sent "github.com/revelaction/signpose/sentence"
	"github.com/revelaction/signpose/stat"
)

// TimelineRequest carries exactly one of the three inputs. Presence counts,
// not content: an empty token list, text or gloss is an empty utterance and
// gives the placeholder clip.
type TimelineRequest struct {
	Tokens []sent.Token `json:"tokens,omitempty"`
	Text   *string      `json:"text,omitempty"`
	Gloss  *string      `json:"gloss,omitempty"`
}

func (r TimelineRequest) inputs() int {
	n := 0
	if r.Tokens != nil {
		n++
	}
	if r.Text != nil {
		n++
	}
	if r.Gloss != nil {
		n++
	}

	return n
}

type GlossRequest struct {
	Tokens []sent.Token `json:"tokens" binding:"required"`
}

type GlossResponse struct {
	Gloss    string         `json:"gloss"`
	Tokens   []string       `json:"tokens"`
	Sequence gloss.Sequence `json:"sequence"`
}

type ResolveRequest struct {
	Gloss string `json:"gloss"`
}

type ResolveResponse struct {
	Gloss  string          `json:"gloss"`
	Tokens []resolve.Token `json:"tokens"`
	Stats  stat.Stats      `json:"stats"`
	Cached bool            `json:"cached"`
}

func ToResolveResponse(res pipeline.Result) *ResolveResponse {
	return &ResolveResponse{
		Gloss:  res.Text,
		Tokens: res.Tokens,
		Stats:  res.Stats,
		Cached: res.Cached,
	}
}

type KeysResponse struct {
	Keys []string `json:"keys"`
}
