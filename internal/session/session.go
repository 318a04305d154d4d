// Package session holds the navigation state of one client: which board or
// thread is open, the loaded collections and the contents of the input form.
// Every change goes through an intent method; State returns a snapshot.
package session

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itchan-dev/textboard/internal/domain"
	internal_errors "github.com/itchan-dev/textboard/internal/errors"
	"github.com/itchan-dev/textboard/internal/service"
)

var ErrInvalidTransition = errors.New("invalid transition")

type View int

const (
	ViewBoards View = iota
	ViewThreads
	ViewPosts
)

func (v View) String() string {
	switch v {
	case ViewBoards:
		return "boards"
	case ViewThreads:
		return "threads"
	case ViewPosts:
		return "posts"
	default:
		return "unknown"
	}
}

type Forum interface {
	Boards(ctx context.Context) []domain.Board
	Board(ctx context.Context, id domain.BoardId) (domain.Board, error)
	Thread(ctx context.Context, board domain.BoardId, id domain.ThreadId) (domain.Thread, error)
	ListThreads(ctx context.Context, board domain.BoardId) []domain.Thread
	ListPosts(ctx context.Context, thread domain.ThreadId) []domain.Post
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error)
	CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, domain.Thread, error)
}

type Form struct {
	Title string
	Body  string
	Name  string
}

type State struct {
	View          View
	Boards        []domain.Board
	Threads       []domain.Thread
	Posts         []domain.Post
	CurrentBoard  *domain.Board
	CurrentThread *domain.Thread
	Form          Form
}

type Session struct {
	id    string
	forum Forum

	mu    sync.Mutex
	state State

	lastSeen atomic.Int64 // unix nanos
	returned atomic.Bool  // looked up again after Create
}

func New(id string, forum Forum) *Session {
	return &Session{id: id, forum: forum}
}

func (s *Session) Id() string {
	return s.id
}

// Load fetches the board list. Boards never change at runtime, so this runs
// once when the session is created.
func (s *Session) Load(ctx context.Context) {
	boards := s.forum.Boards(ctx)
	s.mu.Lock()
	s.state.Boards = boards
	s.mu.Unlock()
}

// State returns a copy that shares nothing with the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Boards = slices.Clone(s.state.Boards)
	st.Threads = slices.Clone(s.state.Threads)
	st.Posts = slices.Clone(s.state.Posts)
	if s.state.CurrentBoard != nil {
		b := *s.state.CurrentBoard
		st.CurrentBoard = &b
	}
	if s.state.CurrentThread != nil {
		t := *s.state.CurrentThread
		st.CurrentThread = &t
	}
	return st
}

func invalidTransition(msg string) error {
	return &internal_errors.ErrorWithStatusCode{
		Message:    msg,
		StatusCode: http.StatusConflict,
		Err:        ErrInvalidTransition,
	}
}

func (s *Session) OpenBoard(ctx context.Context, id domain.BoardId) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.View != ViewBoards {
		return invalidTransition("A board can only be opened from the board list")
	}
	board, err := s.forum.Board(ctx, id)
	if err != nil {
		return err
	}
	s.state.CurrentBoard = &board
	s.state.Threads = s.forum.ListThreads(ctx, board.Id)
	s.state.View = ViewThreads
	return nil
}

func (s *Session) OpenThread(ctx context.Context, id domain.ThreadId) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.View != ViewThreads {
		return invalidTransition("A thread can only be opened from the thread list")
	}
	// lookup is scoped to the open board
	thread, err := s.forum.Thread(ctx, s.state.CurrentBoard.Id, id)
	if err != nil {
		return err
	}
	s.state.CurrentThread = &thread
	s.state.Posts = s.forum.ListPosts(ctx, thread.Id)
	s.state.View = ViewPosts
	return nil
}

// Back leaves the current view. It does nothing on the board list.
func (s *Session) Back(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.View {
	case ViewThreads:
		s.state.View = ViewBoards
		s.state.CurrentBoard = nil
		s.state.Threads = nil
	case ViewPosts:
		s.state.View = ViewThreads
		s.state.CurrentThread = nil
		s.state.Posts = nil
		// post counts may have changed while the thread was open
		s.state.Threads = s.forum.ListThreads(ctx, s.state.CurrentBoard.Id)
	}
	return nil
}

func (s *Session) SetTitle(v string) {
	s.mu.Lock()
	s.state.Form.Title = v
	s.mu.Unlock()
}

func (s *Session) SetBody(v string) {
	s.mu.Lock()
	s.state.Form.Body = v
	s.mu.Unlock()
}

func (s *Session) SetName(v string) {
	s.mu.Lock()
	s.state.Form.Name = v
	s.mu.Unlock()
}

// CreateThread submits the form as a new thread on the open board. Blank
// input is ignored without error. On failure the state is left as it was.
func (s *Session) CreateThread(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createThread(ctx)
}

// SubmitThread fills the whole form and creates the thread under one lock, so
// no other intent can change the form in between.
func (s *Session) SubmitThread(ctx context.Context, form Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Form = form
	return s.createThread(ctx)
}

func (s *Session) createThread(ctx context.Context) error {
	if s.state.View != ViewThreads {
		return invalidTransition("Threads can only be created from the thread list")
	}
	board := s.state.CurrentBoard.Id
	_, err := s.forum.CreateThread(ctx, domain.ThreadCreationData{
		Board: board,
		Title: s.state.Form.Title,
		OpPost: domain.PostCreationData{
			Board:   board,
			Name:    s.state.Form.Name,
			Content: s.state.Form.Body,
		},
	})
	if errors.Is(err, service.ErrRejected) {
		return nil
	}
	if err != nil {
		return err
	}

	s.state.Form = Form{}
	s.state.Threads = s.forum.ListThreads(ctx, board)
	return nil
}

// CreatePost submits the form as a reply to the open thread. The title field
// is kept.
func (s *Session) CreatePost(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createPost(ctx)
}

// SubmitPost fills body and name and posts the reply under one lock.
func (s *Session) SubmitPost(ctx context.Context, body, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Form.Body = body
	s.state.Form.Name = name
	return s.createPost(ctx)
}

func (s *Session) createPost(ctx context.Context) error {
	if s.state.View != ViewPosts {
		return invalidTransition("Replies can only be posted from an open thread")
	}
	_, thread, err := s.forum.CreatePost(ctx, domain.PostCreationData{
		Board:   s.state.CurrentBoard.Id,
		Thread:  s.state.CurrentThread.Id,
		Name:    s.state.Form.Name,
		Content: s.state.Form.Body,
	})
	if errors.Is(err, service.ErrRejected) {
		return nil
	}
	if err != nil {
		return err
	}

	s.state.Form.Body = ""
	s.state.Form.Name = ""
	s.state.CurrentThread = &thread
	s.state.Posts = s.forum.ListPosts(ctx, thread.Id)
	return nil
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}
