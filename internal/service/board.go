package service

import (
	"cmp"
	"context"
	"net/http"
	"slices"

	"github.com/itchan-dev/textboard/internal/domain"
	internal_errors "github.com/itchan-dev/textboard/internal/errors"
	"github.com/itchan-dev/textboard/internal/logger"
	"github.com/itchan-dev/textboard/internal/storage"
)

// DefaultBoards is the board set seeded into empty storage.
func DefaultBoards() []domain.Board {
	return []domain.Board{
		{Id: "news", Name: "ニュース速報", Description: "最新ニュースを語ろう", Position: 0},
		{Id: "tech", Name: "技術", Description: "プログラミング・IT技術", Position: 1},
		{Id: "life", Name: "生活", Description: "日常生活の話題", Position: 2},
		{Id: "hobby", Name: "趣味", Description: "趣味の話題", Position: 3},
	}
}

// Boards lists boards in display order. Empty or unreadable storage is
// seeded with the default set, which is returned even if persisting it fails.
func (f *Forum) Boards(ctx context.Context) []domain.Board {
	boards, err := f.storage.Boards(ctx)
	if err != nil {
		readFailed("boards", err)
	}
	if len(boards) == 0 {
		return f.seedBoards(ctx)
	}
	sortBoards(boards)
	return boards
}

func (f *Forum) Board(ctx context.Context, id domain.BoardId) (domain.Board, error) {
	for _, b := range f.Boards(ctx) {
		if b.Id == id {
			return b, nil
		}
	}
	return domain.Board{}, &internal_errors.ErrorWithStatusCode{
		Message:    "Board not found",
		StatusCode: http.StatusNotFound,
		Err:        storage.ErrNotFound,
	}
}

func (f *Forum) seedBoards(ctx context.Context) []domain.Board {
	// concurrent first requests write the seed once
	f.seeding.Do("seed", func() (any, error) {
		if err := f.storage.SaveBoards(ctx, f.seed); err != nil {
			logger.Log.Warn("failed to persist default boards", "error", err)
			return nil, err
		}
		logger.Log.Info("seeded default boards", "count", len(f.seed))
		return nil, nil
	})
	boards := slices.Clone(f.seed)
	sortBoards(boards)
	return boards
}

func sortBoards(boards []domain.Board) {
	slices.SortStableFunc(boards, func(a, b domain.Board) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.Id, b.Id))
	})
}
