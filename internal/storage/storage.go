// Package storage maps boards, threads and posts onto a kv.Store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	internal_errors "github.com/itchan-dev/textboard/internal/errors"
	"github.com/itchan-dev/textboard/internal/kv"
	"github.com/itchan-dev/textboard/internal/logger"
	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("not found")

// parallel Get calls when loading a collection
const fetchConcurrency = 8

type Storage struct {
	kv kv.Store
}

func New(store kv.Store) *Storage {
	return &Storage{kv: store}
}

// Ping reports whether the underlying store is reachable. Stores that can't
// be pinged are assumed healthy.
func (s *Storage) Ping(ctx context.Context) error {
	if p, ok := s.kv.(kv.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func notFound(what string) error {
	return &internal_errors.ErrorWithStatusCode{
		Message:    what + " not found",
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// loadAll fetches every key under prefix. Keys that vanish between List and
// Get, or whose Get fails, are skipped: a broken record must not hide the
// rest of the collection.
func (s *Storage) loadAll(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.kv.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
	}

	values := make([]string, len(keys))
	found := make([]bool, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			v, ok, err := s.kv.Get(gctx, key)
			if err != nil {
				logger.Log.Warn("skipping unreadable record", "key", key, "error", err)
				return nil
			}
			values[i], found[i] = v, ok
			return nil
		})
	}
	_ = g.Wait()

	out := values[:0]
	for i, v := range values {
		if found[i] {
			out = append(out, v)
		}
	}
	return out, nil
}
