package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/itchan-dev/textboard/internal/domain"
	internal_errors "github.com/itchan-dev/textboard/internal/errors"
	"golang.org/x/sync/singleflight"
)

// ErrRejected is returned when a thread title or a post body is blank.
// The session layer treats it as a silent no-op.
var ErrRejected = errors.New("empty title or body")

type ForumStorage interface {
	Boards(ctx context.Context) ([]domain.Board, error)
	SaveBoards(ctx context.Context, boards []domain.Board) error
	Threads(ctx context.Context, board domain.BoardId) ([]domain.Thread, error)
	Thread(ctx context.Context, board domain.BoardId, id domain.ThreadId) (domain.Thread, error)
	Posts(ctx context.Context, thread domain.ThreadId) ([]domain.Post, error)
	PostCount(ctx context.Context, thread domain.ThreadId) (int, error)
	CreateThread(ctx context.Context, thread domain.Thread, op domain.Post) error
	AppendPost(ctx context.Context, thread domain.Thread, post domain.Post) error
	Ping(ctx context.Context) error
}

type ForumValidator interface {
	Title(title string) error
	Text(text string) error
	Name(name string) error
}

type NameFormatter interface {
	DisplayName(raw string) domain.DisplayName
}

type Forum struct {
	storage   ForumStorage
	validator ForumValidator
	names     NameFormatter
	seed      []domain.Board
	now       func() time.Time
	ids       idGenerator
	seeding   singleflight.Group
}

type Option func(*Forum)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Forum) { f.now = now }
}

func NewForum(storage ForumStorage, validator ForumValidator, names NameFormatter, seed []domain.Board, opts ...Option) *Forum {
	if len(seed) == 0 {
		seed = DefaultBoards()
	}
	f := &Forum{
		storage:   storage,
		validator: validator,
		names:     names,
		seed:      seed,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Ready reports whether storage is reachable.
func (f *Forum) Ready(ctx context.Context) error {
	return f.storage.Ping(ctx)
}

// stored times have millisecond resolution, keep in-memory values identical
func (f *Forum) timestamp() time.Time {
	return time.UnixMilli(f.now().UnixMilli())
}

func rejected() error {
	return &internal_errors.ErrorWithStatusCode{
		Message:    "Title and body must not be empty",
		StatusCode: http.StatusBadRequest,
		Err:        ErrRejected,
	}
}

// unavailable keeps errors that already carry a status and turns the rest
// into a 503.
func unavailable(err error) error {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		return err
	}
	return &internal_errors.ErrorWithStatusCode{
		Message:    "Storage unavailable, try again later",
		StatusCode: http.StatusServiceUnavailable,
		Err:        err,
	}
}
