package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/itchan-dev/textboard/internal/logger"
	"github.com/itchan-dev/textboard/internal/session"
	"github.com/itchan-dev/textboard/internal/utils"
)

const SessionCookie = "textboard_session"

type sessionKey struct{}

type TokenService interface {
	NewToken(sessionId string) (string, error)
	SessionId(token string) (string, error)
}

// Session attaches the caller's session to the request context, starting a
// new one when the cookie is missing, invalid or points at an expired session.
func Session(manager *session.Manager, tokens TokenService, secure bool, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s := lookup(r, manager, tokens); s != nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
				return
			}

			s := manager.Create(r.Context())
			token, err := tokens.NewToken(s.Id())
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

func lookup(r *http.Request, manager *session.Manager, tokens TokenService) *session.Session {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	sid, err := tokens.SessionId(cookie.Value)
	if err != nil {
		logger.Log.Debug("dropping invalid session cookie", "error", err)
		return nil
	}
	s, ok := manager.Get(sid)
	if !ok {
		return nil
	}
	return s
}

// GetSession returns the session attached by the Session middleware.
func GetSession(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionKey{}).(*session.Session)
	return s
}
