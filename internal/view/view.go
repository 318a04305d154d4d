// Package view renders a session as server-side HTML and turns form posts
// into session intents. Every POST redirects back to "/".
package view

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/logger"
	"github.com/itchan-dev/textboard/internal/markdown"
	mw "github.com/itchan-dev/textboard/internal/middleware"
	"github.com/itchan-dev/textboard/internal/session"
	"github.com/itchan-dev/textboard/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

type View struct {
	tmpl  *template.Template
	md    *markdown.Renderer
	guard *session.Guard
	loc   *time.Location
}

func New(md *markdown.Renderer, guard *session.Guard, loc *time.Location) *View {
	return &View{
		tmpl:  template.Must(template.New("").ParseFS(templateFS, "templates/*.html")),
		md:    md,
		guard: guard,
		loc:   loc,
	}
}

type threadItem struct {
	domain.Thread
	Updated string
}

type postItem struct {
	domain.Post
	Time string
	HTML template.HTML
}

type page struct {
	View          string
	Boards        []domain.Board
	Threads       []threadItem
	Posts         []postItem
	CurrentBoard  *domain.Board
	CurrentThread *domain.Thread
	Form          session.Form
	Error         string
	CSRF          string
}

func (v *View) format(t time.Time) string {
	return domain.FormatTimestamp(t.In(v.loc))
}

func (v *View) page(st session.State, errMsg, csrf string) page {
	p := page{
		View:          st.View.String(),
		Boards:        st.Boards,
		CurrentBoard:  st.CurrentBoard,
		CurrentThread: st.CurrentThread,
		Form:          st.Form,
		Error:         errMsg,
		CSRF:          csrf,
	}
	for _, t := range st.Threads {
		p.Threads = append(p.Threads, threadItem{Thread: t, Updated: v.format(t.UpdatedAt)})
	}
	for _, post := range st.Posts {
		p.Posts = append(p.Posts, postItem{Post: post, Time: v.format(post.Timestamp), HTML: v.md.Render(post.Content)})
	}
	return p
}

// Index renders the caller's current view.
func (v *View) Index(w http.ResponseWriter, r *http.Request) {
	s := mw.GetSession(r)
	if s == nil {
		http.Error(w, "No session", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := v.tmpl.ExecuteTemplate(buf, "base", v.page(s.State(), r.URL.Query().Get("error"), mw.CSRFToken(r))); err != nil {
		logger.Log.Error("error executing template", "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (v *View) OpenBoard(w http.ResponseWriter, r *http.Request) {
	v.apply(w, r, session.IntentOpenBoard, func(s *session.Session) error {
		return v.guard.Apply(r.Context(), s, session.Intent{Kind: session.IntentOpenBoard, Target: r.PostFormValue("board")})
	})
}

func (v *View) OpenThread(w http.ResponseWriter, r *http.Request) {
	v.apply(w, r, session.IntentOpenThread, func(s *session.Session) error {
		return v.guard.Apply(r.Context(), s, session.Intent{Kind: session.IntentOpenThread, Target: r.PostFormValue("thread")})
	})
}

func (v *View) Back(w http.ResponseWriter, r *http.Request) {
	v.apply(w, r, session.IntentBack, func(s *session.Session) error {
		return v.guard.Apply(r.Context(), s, session.Intent{Kind: session.IntentBack})
	})
}

// CreateThread stores the submitted fields in the session form before
// creating, so a failed submission is shown again with the input intact.
func (v *View) CreateThread(w http.ResponseWriter, r *http.Request) {
	form := session.Form{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
		Name:  r.PostFormValue("name"),
	}
	v.apply(w, r, session.IntentCreateThread, func(s *session.Session) error {
		return v.guard.Submit(r.Context(), s, session.IntentCreateThread, form)
	})
}

func (v *View) CreatePost(w http.ResponseWriter, r *http.Request) {
	form := session.Form{
		Body: r.PostFormValue("body"),
		Name: r.PostFormValue("name"),
	}
	v.apply(w, r, session.IntentCreatePost, func(s *session.Session) error {
		return v.guard.Submit(r.Context(), s, session.IntentCreatePost, form)
	})
}

func (v *View) apply(w http.ResponseWriter, r *http.Request, kind string, fn func(s *session.Session) error) {
	s := mw.GetSession(r)
	if s == nil {
		http.Error(w, "No session", http.StatusInternalServerError)
		return
	}

	if err := fn(s); err != nil {
		if utils.StatusCode(err) >= http.StatusInternalServerError {
			logger.Log.Warn("intent failed", "session", s.Id(), "intent", kind, "error", err)
		}
		http.Redirect(w, r, "/?error="+url.QueryEscape(errorMessage(err)), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
