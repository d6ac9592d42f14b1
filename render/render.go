package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/gloss"
	"github.com/revelaction/signpose/resolve"
	"github.com/revelaction/signpose/stat"
	"github.com/revelaction/signpose/timeline"
)

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"
	//Yellow256  = "\033[1;38;5;202m"
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
	ClearLine = "\033[K"
)

// Renderer encodes a timeline for a consumer.
type Renderer interface {
	Render(tl timeline.Timeline) error
}

// Terminal prints human readable summaries of the pipeline stages.
type Terminal struct {
	W io.Writer

	HasColor bool

	// HasPrefix adds an icon prefix to every line
	HasPrefix bool
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{W: w}
}

// Gloss prints the gloss text of the sequence, with the buckets the
// annotated tokens were sorted into.
func (r *Terminal) Gloss(seq gloss.Sequence) {
	prefix := r.prefix("🤟 ")
	text := seq.Text()
	if text == "" {
		text = r.color(Gray, "(empty)")
	}

	fmt.Fprintf(r.W, "%s%s\n", prefix, text)

	buckets := []struct {
		name   string
		tokens []string
	}{
		{"time", seq.Time},
		{"topic", seq.Topics},
		{"object", seq.Objects},
		{"verb", seq.Verbs},
		{"other", seq.Others},
	}

	for _, b := range buckets {
		if len(b.tokens) == 0 {
			continue
		}

		fmt.Fprintf(r.W, "%s  %-7s %s\n", prefix, r.color(Grey256, b.name), strings.Join(b.tokens, " "))
	}

	if seq.Negated {
		fmt.Fprintf(r.W, "%s  %-7s %s\n", prefix, r.color(Grey256, "negated"), r.color(Red, gloss.Not))
	}
}

// Tokens prints one line per resolved token: whole words in green,
// fingerspelled words in yellow and unknown characters in red.
func (r *Terminal) Tokens(tokens []resolve.Token) {
	prefix := r.prefix("✋ ")
	for _, t := range tokens {
		var kind string
		switch {
		case !t.Spelled:
			kind = r.color(Green256, "word ")
		default:
			kind = r.color(Yellow256, "spell")
		}

		line := fmt.Sprintf("%s%s %-20s %3d", prefix, kind, t.Text, len(t.Entries))
		if len(t.Unknown) > 0 {
			line += " " + r.color(Red, "unknown "+strings.Join(t.Unknown, ""))
		}

		fmt.Fprintln(r.W, line)
	}
}

// Stats prints the aggregated counts.
func (r *Terminal) Stats(s stat.Stats) {
	fmt.Fprintf(r.W, "tokens:   %d (spelled %d, unknown chars %d)\n", s.NumTokens, s.NumSpelled, s.NumUnknown)

	kinds := []string{}
	for _, k := range stat.Kinds() {
		kinds = append(kinds, fmt.Sprintf("%s %d", k, s.EntriesKind[k]))
	}
	fmt.Fprintf(r.W, "entries:  %d (%s)\n", s.NumEntries, strings.Join(kinds, ", "))

	fmt.Fprintf(r.W, "frames:   %d (pose %d, caption %d)\n", s.NumFrames, s.NumPose, s.NumCaption)
	fmt.Fprintf(r.W, "duration: %s\n", s.Duration)
}

// Render prints the caption track of the timeline, one line per run of
// identical frames.
func (r *Terminal) Render(tl timeline.Timeline) error {
	prefix := r.prefix("🎞  ")
	start := 0
	for i := 1; i <= len(tl.Frames); i++ {
		if i < len(tl.Frames) && sameRun(tl.Frames[i-1], tl.Frames[i]) {
			continue
		}

		f := tl.Frames[start]
		caption := f.Caption
		if caption == "" {
			caption = r.color(Gray, "·")
		}

		_, err := fmt.Fprintf(r.W, "%s[%5d %4d] %-7s %s\n", prefix, start, i-start, f.Kind, caption)
		if err != nil {
			return err
		}

		start = i
	}

	return nil
}

func sameRun(a, b timeline.Frame) bool {
	return a.Kind == b.Kind && a.Caption == b.Caption && sameJoints(a.Left, b.Left) && sameJoints(a.Right, b.Right)
}

func sameJoints(a, b coord.Joints) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func (r *Terminal) prefix(icon string) string {
	if !r.HasPrefix {
		return ""
	}

	return icon
}

func (r *Terminal) color(c, s string) string {
	if !r.HasColor {
		return s
	}

	return c + s + Off
}

// compile-time interface check
var _ Renderer = (*Terminal)(nil)
