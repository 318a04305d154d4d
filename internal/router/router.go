package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	mw "github.com/itchan-dev/textboard/internal/middleware"
	"github.com/itchan-dev/textboard/internal/middleware/metrics"
	"github.com/itchan-dev/textboard/internal/setup"
)

// New creates the router serving the HTML board at "/", the JSON API under
// /v1 and the operational endpoints.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config.Public
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeadersWithCSP(cfg.SecureCookies, mw.DefaultCSP))

	h := deps.Handler.WithCreateLimit(deps.CreateLimit)
	v := deps.View
	sessions := mw.Session(deps.Sessions, deps.Jwt, cfg.SecureCookies, cfg.SessionTTL)
	limitCreates := mw.RateLimitByIP(deps.CreateLimit)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	// HTML board
	r.Group(func(r chi.Router) {
		r.Use(mw.CSRF(cfg.SecureCookies))
		r.Use(sessions)
		r.Get("/", v.Index)
		r.Post("/open/board", v.OpenBoard)
		r.Post("/open/thread", v.OpenThread)
		r.Post("/back", v.Back)
		r.With(limitCreates).Post("/threads", v.CreateThread)
		r.With(limitCreates).Post("/posts", v.CreatePost)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(chimw.AllowContentType("application/json"))

		r.Get("/boards", h.GetBoards)
		r.Get("/boards/{board}/threads", h.GetThreads)
		r.With(limitCreates).Post("/boards/{board}/threads", h.CreateThread)
		r.Get("/boards/{board}/threads/{thread}/posts", h.GetPosts)
		r.With(limitCreates).Post("/boards/{board}/threads/{thread}/posts", h.CreatePost)

		r.Group(func(r chi.Router) {
			r.Use(sessions)
			r.Get("/session", h.GetSession)
			r.Post("/session/intents", h.ApplyIntent)
		})
	})

	return r
}
