package session

import (
	"context"
	"net/http"

	internal_errors "github.com/itchan-dev/textboard/internal/errors"
)

const (
	IntentOpenBoard    = "openBoard"
	IntentOpenThread   = "openThread"
	IntentBack         = "back"
	IntentSetTitle     = "setTitle"
	IntentSetBody      = "setBody"
	IntentSetName      = "setName"
	IntentCreateThread = "createThread"
	IntentCreatePost   = "createPost"
)

// Intent is a serialized user action. Target names the board or thread to
// open, Value carries the new text of a form field.
type Intent struct {
	Kind   string
	Target string
	Value  string
}

// IsCreate reports whether the intent writes to storage.
func (in Intent) IsCreate() bool {
	return in.Kind == IntentCreateThread || in.Kind == IntentCreatePost
}

func (s *Session) Apply(ctx context.Context, in Intent) error {
	switch in.Kind {
	case IntentOpenBoard:
		return s.OpenBoard(ctx, in.Target)
	case IntentOpenThread:
		return s.OpenThread(ctx, in.Target)
	case IntentBack:
		return s.Back(ctx)
	case IntentSetTitle:
		s.SetTitle(in.Value)
	case IntentSetBody:
		s.SetBody(in.Value)
	case IntentSetName:
		s.SetName(in.Value)
	case IntentCreateThread:
		return s.CreateThread(ctx)
	case IntentCreatePost:
		return s.CreatePost(ctx)
	default:
		return &internal_errors.ErrorWithStatusCode{Message: "Unknown intent " + in.Kind, StatusCode: http.StatusBadRequest}
	}
	return nil
}
