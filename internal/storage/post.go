package storage

import (
	"context"
	"fmt"

	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/kv"
	"github.com/itchan-dev/textboard/internal/logger"
)

// Posts returns the posts of thread in key order, which is not numeric order.
func (s *Storage) Posts(ctx context.Context, thread domain.ThreadId) ([]domain.Post, error) {
	values, err := s.loadAll(ctx, kv.PostPrefix(thread))
	if err != nil {
		return nil, err
	}
	posts := make([]domain.Post, 0, len(values))
	for _, v := range values {
		p, err := decodePost(v)
		if err != nil {
			logger.Log.Warn("skipping undecodable post", "thread", thread, "error", err)
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// PostCount counts the stored posts of thread straight from the key listing.
func (s *Storage) PostCount(ctx context.Context, thread domain.ThreadId) (int, error) {
	keys, err := s.kv.List(ctx, kv.PostPrefix(thread))
	if err != nil {
		return 0, fmt.Errorf("failed to count posts of %s: %w", thread, err)
	}
	return len(keys), nil
}
