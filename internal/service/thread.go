package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/logger"
)

// CreateThread validates the input and persists a new thread together with
// its first post. Blank title or body yields ErrRejected.
func (f *Forum) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
	if strings.TrimSpace(data.Title) == "" || strings.TrimSpace(data.OpPost.Content) == "" {
		return domain.Thread{}, rejected()
	}
	if err := f.validator.Title(data.Title); err != nil {
		return domain.Thread{}, err
	}
	if err := f.validator.Text(data.OpPost.Content); err != nil {
		return domain.Thread{}, err
	}
	if err := f.validator.Name(data.OpPost.Name); err != nil {
		return domain.Thread{}, err
	}
	if _, err := f.Board(ctx, data.Board); err != nil {
		return domain.Thread{}, err
	}

	now := f.timestamp()
	thread := domain.Thread{
		Id:        f.ids.threadId(data.Board, now),
		BoardId:   data.Board,
		Title:     data.Title,
		CreatedAt: now,
		UpdatedAt: now,
		PostCount: 1,
	}
	op := domain.Post{
		Id:        domain.NewPostId(thread.Id, 1),
		ThreadId:  thread.Id,
		Number:    1,
		Name:      f.names.DisplayName(data.OpPost.Name),
		Content:   data.OpPost.Content,
		Timestamp: now,
	}

	if err := f.storage.CreateThread(ctx, thread, op); err != nil {
		logger.Log.Error("failed to create thread", "board", data.Board, "error", err)
		return domain.Thread{}, unavailable(err)
	}
	threadsCreated.WithLabelValues(data.Board).Inc()
	logger.Log.Info("thread created", "board", data.Board, "thread", thread.Id)
	return thread, nil
}

func (f *Forum) Thread(ctx context.Context, board domain.BoardId, id domain.ThreadId) (domain.Thread, error) {
	thread, err := f.storage.Thread(ctx, board, id)
	if err != nil {
		return domain.Thread{}, unavailable(err)
	}
	return thread, nil
}

// ListThreads returns the board's threads, most recently updated first. A
// storage failure yields an empty list.
func (f *Forum) ListThreads(ctx context.Context, board domain.BoardId) []domain.Thread {
	stored, err := f.storage.Threads(ctx, board)
	if err != nil {
		readFailed("threads", err, "board", board)
		return []domain.Thread{}
	}

	threads := make([]domain.Thread, 0, len(stored))
	for _, t := range stored {
		if t.BoardId != board {
			logger.Log.Warn("skipping thread stored under foreign board", "board", board, "thread", t.Id, "thread_board", t.BoardId)
			continue
		}
		threads = append(threads, t)
	}
	sortThreads(threads)
	return threads
}

// newest activity first; equal times put the newer thread id first
func sortThreads(threads []domain.Thread) {
	slices.SortFunc(threads, func(a, b domain.Thread) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(b.Id, a.Id))
	})
}
