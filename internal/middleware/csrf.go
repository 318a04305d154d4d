package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/itchan-dev/textboard/internal/logger"
)

const (
	CSRFCookie    = "textboard_csrf"
	CSRFFormField = "csrf_token"

	csrfTokenLength = 32
)

type csrfKey struct{}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CSRF issues a double-submit token cookie and, for POST requests, requires
// the form to carry the same token.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(CSRFCookie); err == nil && cookie.Value != "" {
				token = cookie.Value
			}

			if r.Method == http.MethodPost {
				if token == "" {
					logger.Log.Warn("csrf cookie missing", "path", r.URL.Path)
					http.Error(w, "CSRF token missing", http.StatusForbidden)
					return
				}
				if err := r.ParseForm(); err != nil {
					http.Error(w, "Invalid form data", http.StatusBadRequest)
					return
				}
				form := r.PostForm.Get(CSRFFormField)
				if subtle.ConstantTimeCompare([]byte(token), []byte(form)) != 1 {
					logger.Log.Warn("csrf token mismatch", "path", r.URL.Path)
					http.Error(w, "CSRF token invalid", http.StatusForbidden)
					return
				}
			}

			if token == "" {
				var err error
				if token, err = newCSRFToken(); err != nil {
					logger.Log.Error("failed to generate csrf token", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
		})
	}
}

// CSRFToken is the token forms must echo back, or "" outside the CSRF middleware.
func CSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfKey{}).(string)
	return token
}
