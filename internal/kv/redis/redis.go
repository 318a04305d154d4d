// Package redis is a kv.Store on top of a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/itchan-dev/textboard/internal/kv"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 256

type Store struct {
	client    *redis.Client
	namespace string
}

var (
	_ kv.Store       = (*Store)(nil)
	_ kv.BatchSetter = (*Store)(nil)
	_ kv.Pinger      = (*Store)(nil)
	_ kv.Closer      = (*Store)(nil)
)

// New wraps client. Every key is stored under namespace, which may be empty.
func New(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", kv.ErrUnavailable, key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", kv.ErrUnavailable, key, err)
	}
	return nil
}

// SetMany uses MSET, which Redis applies atomically.
func (s *Store) SetMany(ctx context.Context, entries []kv.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	pairs := make([]any, 0, 2*len(entries))
	for _, e := range entries {
		pairs = append(pairs, s.namespace+e.Key, e.Value)
	}
	if err := s.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("%w: mset: %v", kv.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeGlob(s.namespace+prefix) + "*"
	keys := make([]string, 0)
	seen := make(map[string]struct{})

	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", kv.ErrUnavailable, prefix, err)
		}
		for _, k := range batch {
			// SCAN may return a key more than once
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, strings.TrimPrefix(k, s.namespace))
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// escapeGlob quotes the characters SCAN MATCH treats specially.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
