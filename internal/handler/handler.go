// Package handler serves the JSON API under /v1 and the health checks.
package handler

import (
	"context"
	"time"

	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/session"
)

type ForumService interface {
	Boards(ctx context.Context) []domain.Board
	Board(ctx context.Context, id domain.BoardId) (domain.Board, error)
	Thread(ctx context.Context, board domain.BoardId, id domain.ThreadId) (domain.Thread, error)
	ListThreads(ctx context.Context, board domain.BoardId) []domain.Thread
	ListPosts(ctx context.Context, thread domain.ThreadId) []domain.Post
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error)
	CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, domain.Thread, error)
	Ready(ctx context.Context) error
}

// Limiter throttles create intents sent through the session endpoint.
type Limiter interface {
	Allow(id string) bool
}

type Handler struct {
	forum   ForumService
	guard   *session.Guard
	loc     *time.Location
	creates Limiter
}

func New(forum ForumService, guard *session.Guard, loc *time.Location) *Handler {
	return &Handler{forum: forum, guard: guard, loc: loc}
}

// WithCreateLimit makes ApplyIntent answer 429 to create intents once the
// client address runs out of tokens.
func (h *Handler) WithCreateLimit(l Limiter) *Handler {
	h.creates = l
	return h
}

func (h *Handler) formatPost(p domain.Post) string {
	return domain.FormatTimestamp(p.Timestamp.In(h.loc))
}
