package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/resolve"
	"github.com/revelaction/signpose/timeline"
)

func entry() Entry {
	tokens := []resolve.Token{
		{Text: "HELLO", Entries: coord.Entries{{Kind: coord.WholeWord, Right: coord.Joints{{Name: "WRIST", Pos: coord.Vec3{0.1, 0.2, 0.3}}}}}},
		{Text: "Q", Spelled: true, Unknown: []string{"Q"}, Entries: coord.Entries{coord.Default()}},
	}

	return Entry{Tokens: tokens, Timeline: timeline.Assemble(tokens)}
}

func TestKey(t *testing.T) {
	k := Key("I EAT", "abc", false)
	if !strings.HasPrefix(k, keyPrefix) {
		t.Fatalf("expected prefix %s, got %s", keyPrefix, k)
	}

	if k != Key("I EAT", "abc", false) {
		t.Fatalf("expected stable keys")
	}

	for _, other := range []string{Key("I EAT", "abd", false), Key("I EAT", "abc", true), Key("I  EAT", "abc", false)} {
		if other == k {
			t.Fatalf("expected a different key for a different input")
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	e := entry()
	data, err := Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Tokens) != 2 || got.Tokens[1].Entries[0].Kind != coord.Blank || !got.Tokens[1].Spelled {
		t.Fatalf("unexpected tokens %+v", got.Tokens)
	}

	if got.Tokens[0].Entries[0].Right[0] != e.Tokens[0].Entries[0].Right[0] {
		t.Fatalf("expected joint %v, got %v", e.Tokens[0].Entries[0].Right[0], got.Tokens[0].Entries[0].Right[0])
	}

	if len(got.Timeline.Frames) != len(e.Timeline.Frames) || got.Timeline.Mean != e.Timeline.Mean {
		t.Fatalf("expected the same timeline")
	}

	if _, err := Decode([]byte{0xc1}); err == nil {
		t.Fatalf("expected error for invalid msgpack")
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}

	if err := c.Set(ctx, "k", entry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Tokens[0].Text != "HELLO" || c.Len() != 1 {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestRedisUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedis(client, time.Minute)
	_, err := c.Get(context.Background(), "k")
	if err == nil || errors.Is(err, ErrMiss) {
		t.Fatalf("expected a connection error, got %v", err)
	}
}
