package session

import (
	"context"
	"net/http"

	internal_errors "github.com/itchan-dev/textboard/internal/errors"
	"github.com/itchan-dev/textboard/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Guard applies intents and coalesces create submissions of one session that
// are still in flight: a double submit writes once and both callers get the
// same result. Submissions that carry form contents go through Submit so the
// form cannot be refilled while the first write runs.
type Guard struct {
	group singleflight.Group
}

func (g *Guard) Apply(ctx context.Context, s *Session, in Intent) error {
	if !in.IsCreate() {
		return s.Apply(ctx, in)
	}
	return g.do(s, in.Kind, func() error { return s.Apply(ctx, in) })
}

// Submit fills the form and runs the create intent kind as one unit.
func (g *Guard) Submit(ctx context.Context, s *Session, kind string, form Form) error {
	switch kind {
	case IntentCreateThread:
		return g.do(s, kind, func() error { return s.SubmitThread(ctx, form) })
	case IntentCreatePost:
		return g.do(s, kind, func() error { return s.SubmitPost(ctx, form.Body, form.Name) })
	default:
		return &internal_errors.ErrorWithStatusCode{Message: "Unknown submission " + kind, StatusCode: http.StatusBadRequest}
	}
}

func (g *Guard) do(s *Session, kind string, fn func() error) error {
	_, err, shared := g.group.Do(s.Id()+"/"+kind, func() (any, error) {
		return nil, fn()
	})
	if shared {
		logger.Log.Debug("coalesced duplicate submission", "session", s.Id(), "intent", kind)
	}
	return err
}
