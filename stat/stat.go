package stat

import (
	"time"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/resolve"
	"github.com/revelaction/signpose/timeline"
)

type Handler struct {
	stats Stats
}

type Stats struct {
	NumTokens   int            `json:"num_tokens"`
	NumEntries  int            `json:"num_entries"`
	NumSpelled  int            `json:"num_spelled"`
	NumUnknown  int            `json:"num_unknown"`
	NumFrames   int            `json:"num_frames"`
	NumPose     int            `json:"num_pose"`
	NumCaption  int            `json:"num_caption"`
	EntriesKind map[string]int `json:"entries_kind"`

	Duration time.Duration `json:"duration"`
}

func (h *Handler) Get() Stats {
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{EntriesKind: map[string]int{}}
	return &Handler{
		stats: stats,
	}
}

// Tokens adds the counts of the resolved tokens.
func (h *Handler) Tokens(tokens []resolve.Token) {
	h.stats.NumTokens += len(tokens)
	for _, t := range tokens {
		if t.Spelled {
			h.stats.NumSpelled++
		}

		h.stats.NumUnknown += len(t.Unknown)
		h.stats.NumEntries += len(t.Entries)

		for _, e := range t.Entries {
			h.stats.EntriesKind[e.Kind.String()]++
		}
	}
}

// Aggregate adds the frame counts and the play time of the timeline.
func (h *Handler) Aggregate(tl timeline.Timeline) {
	h.stats.NumFrames += len(tl.Frames)
	for _, f := range tl.Frames {
		switch f.Kind {
		case timeline.Pose:
			h.stats.NumPose++
		case timeline.Caption:
			h.stats.NumCaption++
		}
	}

	h.stats.Duration += tl.Duration()
}

// Kinds returns the entry kinds in their declaration order, for printing.
func Kinds() []string {
	return []string{coord.WholeWord.String(), coord.Letter.String(), coord.Blank.String()}
}
