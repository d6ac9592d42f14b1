package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revelaction/signpose/render"
	"github.com/revelaction/signpose/storage"
	"github.com/revelaction/signpose/storage/loader"
	"github.com/revelaction/signpose/timeline"
)

const testDict = `{
	"HELLO": {
		"Left Hand Coordinates": {},
		"Right Hand Coordinates": {"WRIST": [0.1, 0.2, 0.3], "THUMB_CMC": [0.2, 0.2, 0.3]}
	},
	"A": {"WRIST": [0, 0, 0], "THUMB_CMC": [0, 0.1, 0]}
}`

func writeDict(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.json")
	if err := os.WriteFile(path, []byte(testDict), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testUI() (UI, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return UI{Out: &out, Err: &errOut, In: strings.NewReader("")}, &out, &errOut
}

func TestParseMainArgs(t *testing.T) {
	ui, _, _ := testUI()

	cmd, args, err := parseMainArgs([]string{"timeline", "-f", "json", "HELLO"}, ui)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cmd != "timeline" {
		t.Errorf("expected timeline, got %s", cmd)
	}

	if len(args) != 3 {
		t.Errorf("expected 3 args, got %v", args)
	}

	if _, _, err := parseMainArgs(nil, ui); err == nil {
		t.Error("expected error without command")
	}
}

func TestParseTimelineArgs(t *testing.T) {
	ui, _, _ := testUI()

	opts, err := parseTimelineArgs([]string{"-d", "dict.json", "-f", "msgpack", "-l", "HELLO", "WORLD"}, ui)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.Format != formatMsgpack || !opts.Legacy || opts.DictPath != "dict.json" {
		t.Errorf("unexpected options %+v", opts)
	}

	if strings.Join(opts.Gloss, " ") != "HELLO WORLD" {
		t.Errorf("expected gloss words, got %v", opts.Gloss)
	}

	if _, err := parseTimelineArgs([]string{"-d", "dict.json", "-f", "xml"}, ui); err == nil {
		t.Error("expected error for unknown format")
	}

	if _, err := parseTimelineArgs([]string{"-d", "dict.json", "-t", "tokens.json", "HELLO"}, ui); err == nil {
		t.Error("expected error for two inputs")
	}

	if _, err := parseTimelineArgs([]string{"-d", "dict.json", "-text", "hello"}, ui); err == nil {
		t.Error("expected error for -text without annotator")
	}

	if _, err := parseTimelineArgs([]string{"-h"}, ui); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
}

func TestParseImportArgs(t *testing.T) {
	ui, _, _ := testUI()

	if _, err := parseImportArgs([]string{"--from", "dict.json", "--to", "dict.db"}, ui); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := parseImportArgs([]string{"--from", "dict.json", "--to", "other.json"}, ui); err == nil {
		t.Error("expected error for non SQLite target")
	}

	if _, err := parseExportArgs([]string{"--from", "dict.json", "--to", "other.json"}, ui); err == nil {
		t.Error("expected error for non SQLite source")
	}
}

func TestGetCompletions(t *testing.T) {
	got := getCompletions([]string{"signpose", "t"})
	if len(got) != 1 || got[0] != "timeline" {
		t.Errorf("expected [timeline], got %v", got)
	}

	got = getCompletions([]string{"signpose", "help", "qu"})
	if len(got) != 1 || got[0] != "query" {
		t.Errorf("expected [query], got %v", got)
	}

	got = getCompletions([]string{"signpose", "timeline", "--in"})
	if len(got) != 1 || got[0] != "-indent" {
		t.Errorf("expected [-indent], got %v", got)
	}

	if got := getCompletions([]string{"signpose", "timeline", "HEL"}); got != nil {
		t.Errorf("expected no completion, got %v", got)
	}
}

func TestTimelineCommand(t *testing.T) {
	path := writeDict(t)
	ui, out, _ := testUI()

	if err := runCommand(context.Background(), "timeline", []string{"-d", path, "hello", "ab"}, ui); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var tl timeline.Timeline
	if err := json.Unmarshal(out.Bytes(), &tl); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	// HELLO: 5 + 40, AB: (30 + 30) * 2 + 40
	want := 5 + 40 + 60*2 + 40
	if len(tl.Frames) != want {
		t.Errorf("expected %d frames, got %d", want, len(tl.Frames))
	}

	if tl.FPS != timeline.FPS {
		t.Errorf("expected fps %d, got %d", timeline.FPS, tl.FPS)
	}
}

func TestTimelineCommandMsgpack(t *testing.T) {
	path := writeDict(t)
	ui, out, _ := testUI()

	if err := runCommand(context.Background(), "timeline", []string{"-d", path, "-f", "msgpack"}, ui); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tl, err := render.ReadMsgpack(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tl.Frames) != timeline.PlaceholderFrames {
		t.Errorf("expected placeholder clip, got %d frames", len(tl.Frames))
	}
}

func TestTimelineCommandTokens(t *testing.T) {
	path := writeDict(t)
	ui, out, _ := testUI()
	ui.In = strings.NewReader(`[
		{"text": "Hello", "lemma": "hello", "pos": "INTJ", "dep": "nsubj"},
		{"text": "!", "lemma": "!", "pos": "PUNCT", "dep": "punct"}
	]`)

	if err := runCommand(context.Background(), "stat", []string{"-d", path, "-t", "-"}, ui); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "gloss:    HELLO\n") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestMissingDictionary(t *testing.T) {
	ui, _, _ := testUI()

	err := runCommand(context.Background(), "timeline", []string{"-d", filepath.Join(t.TempDir(), "none.json")}, ui)
	if !errors.Is(err, storage.ErrDictionary) {
		t.Errorf("expected ErrDictionary, got %v", err)
	}
}

func TestImportExport(t *testing.T) {
	src := writeDict(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "dict.db")
	dst := filepath.Join(dir, "exported.json")

	ui, _, _ := testUI()

	if err := runCommand(context.Background(), "import", []string{"--from", src, "--to", db, "--no-progress"}, ui); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if err := runCommand(context.Background(), "export", []string{"--from", db, "--to", dst, "--no-progress"}, ui); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	want, err := loader.Load(src)
	if err != nil {
		t.Fatal(err)
	}

	got, err := loader.Load(dst)
	if err != nil {
		t.Fatal(err)
	}

	if want.Fingerprint() != got.Fingerprint() {
		t.Errorf("exported dictionary differs: keys %v, want %v", got.Keys(), want.Keys())
	}
}

func TestKeysCommand(t *testing.T) {
	path := writeDict(t)
	ui, out, _ := testUI()

	if err := runCommand(context.Background(), "keys", []string{"-d", path, "he"}, ui); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.String() != "HELLO 1\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}
