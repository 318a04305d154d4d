package storage

import (
	"context"
	"fmt"

	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/kv"
	"github.com/itchan-dev/textboard/internal/logger"
)

// Boards returns every decodable board in key order.
func (s *Storage) Boards(ctx context.Context) ([]domain.Board, error) {
	values, err := s.loadAll(ctx, kv.BoardPrefix)
	if err != nil {
		return nil, err
	}
	boards := make([]domain.Board, 0, len(values))
	for _, v := range values {
		b, err := decodeBoard(v)
		if err != nil {
			logger.Log.Warn("skipping undecodable board", "error", err)
			continue
		}
		boards = append(boards, b)
	}
	return boards, nil
}

// SaveBoards persists boards in one batch when the store supports it.
func (s *Storage) SaveBoards(ctx context.Context, boards []domain.Board) error {
	entries := make([]kv.Entry, 0, len(boards))
	for _, b := range boards {
		v, err := encodeBoard(b)
		if err != nil {
			return fmt.Errorf("failed to encode board %s: %w", b.Id, err)
		}
		entries = append(entries, kv.Entry{Key: kv.BoardKey(b.Id), Value: v})
	}
	if err := kv.SetAll(ctx, s.kv, entries); err != nil {
		return fmt.Errorf("failed to save boards: %w", err)
	}
	return nil
}
