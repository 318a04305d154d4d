package storage

import (
	"context"
	"fmt"

	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/kv"
	"github.com/itchan-dev/textboard/internal/logger"
)

// Threads returns the threads stored under board, unsorted.
func (s *Storage) Threads(ctx context.Context, board domain.BoardId) ([]domain.Thread, error) {
	values, err := s.loadAll(ctx, kv.ThreadPrefix(board))
	if err != nil {
		return nil, err
	}
	threads := make([]domain.Thread, 0, len(values))
	for _, v := range values {
		t, err := decodeThread(v)
		if err != nil {
			logger.Log.Warn("skipping undecodable thread", "board", board, "error", err)
			continue
		}
		threads = append(threads, t)
	}
	return threads, nil
}

func (s *Storage) Thread(ctx context.Context, board domain.BoardId, id domain.ThreadId) (domain.Thread, error) {
	v, ok, err := s.kv.Get(ctx, kv.ThreadKey(board, id))
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to get thread %s: %w", id, err)
	}
	if !ok {
		return domain.Thread{}, notFound("Thread")
	}
	t, err := decodeThread(v)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to decode thread %s: %w", id, err)
	}
	return t, nil
}

// CreateThread persists a new thread with its first post. The post goes
// first, so a store without batch writes never lists a thread lacking its OP.
func (s *Storage) CreateThread(ctx context.Context, thread domain.Thread, op domain.Post) error {
	if err := s.writePair(ctx, thread, op); err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}
	return nil
}

// AppendPost persists post together with the owning thread's new state.
func (s *Storage) AppendPost(ctx context.Context, thread domain.Thread, post domain.Post) error {
	if err := s.writePair(ctx, thread, post); err != nil {
		return fmt.Errorf("failed to append post: %w", err)
	}
	return nil
}

func (s *Storage) writePair(ctx context.Context, thread domain.Thread, post domain.Post) error {
	tv, err := encodeThread(thread)
	if err != nil {
		return err
	}
	pv, err := encodePost(post)
	if err != nil {
		return err
	}
	return kv.SetAll(ctx, s.kv, []kv.Entry{
		{Key: kv.PostKey(post.ThreadId, post.Number), Value: pv},
		{Key: kv.ThreadKey(thread.BoardId, thread.Id), Value: tv},
	})
}
