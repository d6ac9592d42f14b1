package resolve

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/revelaction/signpose/coord"
)

func letter(x float64) coord.Entries {
	return coord.Entries{{Kind: coord.Letter, Hand: coord.Joints{{Name: "WRIST", Pos: coord.Vec3{x, 0, 0}}}}}
}

func testDict() coord.Dictionary {
	return coord.Dictionary{
		"X": letter(1),
		"Y": letter(2),
		"Z": letter(3),
		"J": coord.Entries{
			{Kind: coord.Letter, Hand: coord.Joints{{Name: "WRIST", Pos: coord.Vec3{4, 0, 0}}}},
			{Kind: coord.Letter, Hand: coord.Joints{{Name: "WRIST", Pos: coord.Vec3{5, 0, 0}}}},
		},
		"HELLO": coord.Entries{{Kind: coord.WholeWord, Right: coord.Joints{{Name: "WRIST"}}}},
		"MOVE": coord.Entries{
			{Kind: coord.WholeWord, Left: coord.Joints{{Name: "WRIST"}}},
			{Kind: coord.WholeWord, Left: coord.Joints{{Name: "WRIST"}}},
		},
	}
}

func newResolver(buf *bytes.Buffer) *Resolver {
	r := NewResolver(testDict())
	r.Logger = slog.New(slog.NewTextHandler(buf, nil))
	return r
}

func TestResolveFingerspellUnknownLetter(t *testing.T) {
	var buf bytes.Buffer
	r := newResolver(&buf)

	tokens := r.Resolve(context.Background(), "XYZQ")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}

	tk := tokens[0]
	if !tk.Spelled {
		t.Fatalf("expected spelled token")
	}

	if len(tk.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(tk.Entries))
	}

	for i, x := range []float64{1, 2, 3} {
		if tk.Entries[i].Kind != coord.Letter || tk.Entries[i].Hand[0].Pos[0] != x {
			t.Fatalf("entry %d: expected letter at %v, got %v", i, x, tk.Entries[i])
		}
	}

	if tk.Entries[3].Kind != coord.Blank {
		t.Fatalf("expected blank entry last, got %s", tk.Entries[3].Kind)
	}

	if len(tk.Unknown) != 1 || tk.Unknown[0] != "Q" {
		t.Fatalf("expected unknown [Q], got %v", tk.Unknown)
	}

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "char=Q") {
		t.Fatalf("expected a warning for Q, got %q", out)
	}
}

func TestResolveWholeWord(t *testing.T) {
	var buf bytes.Buffer
	r := newResolver(&buf)

	tokens := r.Resolve(context.Background(), "HELLO MOVE")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}

	if tokens[0].Spelled || len(tokens[0].Entries) != 1 {
		t.Fatalf("expected HELLO as one whole word entry, got %+v", tokens[0])
	}

	if len(tokens[1].Entries) != 2 {
		t.Fatalf("expected MOVE list used verbatim, got %d entries", len(tokens[1].Entries))
	}

	if buf.Len() != 0 {
		t.Fatalf("expected no warning, got %q", buf.String())
	}
}

func TestResolveFlattensLetterLists(t *testing.T) {
	r := newResolver(&bytes.Buffer{})

	tokens := r.Resolve(context.Background(), "JX")
	if got := len(tokens[0].Entries); got != 3 {
		t.Fatalf("expected 3 entries (J has two), got %d", got)
	}
}

func TestResolveAllUnknown(t *testing.T) {
	r := newResolver(&bytes.Buffer{})

	tokens := r.Resolve(context.Background(), "42")
	if len(tokens[0].Entries) != 2 {
		t.Fatalf("expected one blank per character, got %d", len(tokens[0].Entries))
	}

	for _, e := range tokens[0].Entries {
		if e.Kind != coord.Blank {
			t.Fatalf("expected blank entries, got %s", e.Kind)
		}
	}
}

func TestResolveEmptyAndSeparators(t *testing.T) {
	r := newResolver(&bytes.Buffer{})

	if got := r.Resolve(context.Background(), ""); len(got) != 0 {
		t.Fatalf("expected no tokens for empty gloss, got %v", got)
	}

	got := r.Resolve(context.Background(), "X  Y ")
	if len(got) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(got))
	}
}

func TestResolveNeverEmpty(t *testing.T) {
	r := newResolver(&bytes.Buffer{})

	for _, tk := range r.Resolve(context.Background(), "HELLO XYZ QQ 7 MOVE") {
		if len(tk.Entries) == 0 {
			t.Fatalf("token %s resolved to no entries", tk.Text)
		}
	}
}

func TestResolveRepeatedWords(t *testing.T) {
	r := newResolver(&bytes.Buffer{})

	tokens := r.Resolve(context.Background(), "HELLO X HELLO")
	if len(tokens) != 3 {
		t.Fatalf("expected one token per occurrence, got %d", len(tokens))
	}

	r.Legacy = true
	tokens = r.Resolve(context.Background(), "HELLO X HELLO")
	if len(tokens) != 2 {
		t.Fatalf("expected collapsed tokens, got %d", len(tokens))
	}

	if tokens[0].Text != "HELLO" || tokens[1].Text != "X" {
		t.Fatalf("expected first occurrence order, got %s %s", tokens[0].Text, tokens[1].Text)
	}
}

func TestCollapseKeepsLastValue(t *testing.T) {
	in := []Token{
		{Text: "A", Entries: letter(1)},
		{Text: "B", Entries: letter(2)},
		{Text: "A", Entries: letter(3)},
	}

	out := Collapse(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(out))
	}

	if out[0].Entries[0].Hand[0].Pos[0] != 3 {
		t.Fatalf("expected last value for A, got %v", out[0].Entries[0].Hand[0].Pos)
	}

	if Entries(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", Entries(out))
	}
}
