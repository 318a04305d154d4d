// Package kv defines the key-value capability the forum core persists through.
//
// A Store only has to provide Get, Set and List. Backends that can write several
// entries all-or-nothing implement BatchSetter; the core uses it to persist a
// thread together with its post.
//
// Key layout:
//
//	board:<boardId>
//	thread:<boardId>:<threadId>
//	post:<threadId>:<number>
package kv

import (
	"context"
	"errors"
	"strconv"
)

// ErrUnavailable is wrapped by adapters when the backend can't be reached.
var ErrUnavailable = errors.New("storage unavailable")

type Store interface {
	// Get returns ok=false without error when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set must not leave a partially written value behind on failure.
	Set(ctx context.Context, key, value string) error
	// List returns the sorted keys starting with prefix, or an empty slice.
	List(ctx context.Context, prefix string) ([]string, error)
}

type Entry struct {
	Key   string
	Value string
}

// BatchSetter writes all entries or none of them.
type BatchSetter interface {
	SetMany(ctx context.Context, entries []Entry) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Closer interface {
	Close() error
}

const (
	BoardPrefix  = "board:"
	threadPrefix = "thread:"
	postPrefix   = "post:"
)

func BoardKey(board string) string {
	return BoardPrefix + board
}

func ThreadPrefix(board string) string {
	return threadPrefix + board + ":"
}

func ThreadKey(board, thread string) string {
	return ThreadPrefix(board) + thread
}

func PostPrefix(thread string) string {
	return postPrefix + thread + ":"
}

func PostKey(thread string, number int) string {
	return PostPrefix(thread) + strconv.Itoa(number)
}

// SetAll writes entries with SetMany when the store supports it and falls back
// to sequential Set calls otherwise. The fallback stops at the first failure, so
// callers order entries such that a prefix of them is still a readable state.
func SetAll(ctx context.Context, s Store, entries []Entry) error {
	if b, ok := s.(BatchSetter); ok {
		return b.SetMany(ctx, entries)
	}
	for _, e := range entries {
		if err := s.Set(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
