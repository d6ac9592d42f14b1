// Package cache stores assembled timelines keyed by gloss text and
// dictionary fingerprint.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/revelaction/signpose/resolve"
	"github.com/revelaction/signpose/timeline"
)

const keyPrefix = "signpose:timeline:"

var ErrMiss = errors.New("cache miss")

// Cache is a timeline store. Get returns ErrMiss for an absent key.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, e Entry) error
}

// Entry is what the pipeline needs to answer a gloss again without
// resolving it.
type Entry struct {
	Tokens   []resolve.Token   `msgpack:"tokens"`
	Timeline timeline.Timeline `msgpack:"timeline"`
}

// Key identifies a gloss resolved against a dictionary. The legacy flag is
// part of the key since it changes the tokens.
func Key(gloss, fingerprint string, legacy bool) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(legacy)))
	h.Write([]byte{0})
	h.Write([]byte(gloss))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func Encode(e Entry) ([]byte, error) {
	data, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return data, nil
}

func Decode(data []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	return e, nil
}

// Redis keeps msgpack encoded entries with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (Entry, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrMiss
		}
		return Entry{}, fmt.Errorf("redis get: %w", err)
	}

	return Decode(data)
}

func (r *Redis) Set(ctx context.Context, key string, e Entry) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Memory is an in process cache with no expiry. Entries are stored encoded
// so that callers never share slices with the cache.
type Memory struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: map[string][]byte{}}
}

func (c *Memory) Get(ctx context.Context, key string) (Entry, error) {
	c.mu.Lock()
	data, ok := c.m[key]
	c.mu.Unlock()

	if !ok {
		return Entry{}, ErrMiss
	}

	return Decode(data)
}

func (c *Memory) Set(ctx context.Context, key string, e Entry) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.m[key] = data
	c.mu.Unlock()
	return nil
}

func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// compile-time interface check
var (
	_ Cache = (*Redis)(nil)
	_ Cache = (*Memory)(nil)
)
