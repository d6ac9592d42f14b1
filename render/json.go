package render

import (
	"encoding/json"
	"io"

	"github.com/revelaction/signpose/timeline"
)

// JSONRenderer writes timelines as JSON to a writer.
type JSONRenderer struct {
	W io.Writer

	Indent bool
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Render serializes the timeline as a JSON object.
func (r *JSONRenderer) Render(tl timeline.Timeline) error {
	enc := json.NewEncoder(r.W)
	if r.Indent {
		enc.SetIndent("", "  ")
	}

	return enc.Encode(tl)
}

// compile-time interface check
var _ Renderer = (*JSONRenderer)(nil)
