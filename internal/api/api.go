// Package api holds the JSON request and response bodies of the /v1 surface.
package api

import (
	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/session"
)

// Request DTOs

type CreateThreadRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
	Name  string `json:"name,omitempty"`
}

type CreatePostRequest struct {
	Body string `json:"body" validate:"required"`
	Name string `json:"name,omitempty"`
}

type IntentRequest struct {
	Intent string `json:"intent" validate:"required,oneof=openBoard openThread back setTitle setBody setName createThread createPost"`
	Target string `json:"target,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Response DTOs

type BoardResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ThreadResponse struct {
	Id        string `json:"id"`
	BoardId   string `json:"boardId"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	PostCount int    `json:"postCount"`
}

type PostResponse struct {
	Id        string `json:"id"`
	ThreadId  string `json:"threadId"`
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Display   string `json:"display"` // formatted timestamp
}

type FormResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Name  string `json:"name"`
}

type SessionResponse struct {
	View          string           `json:"view"`
	Boards        []BoardResponse  `json:"boards"`
	Threads       []ThreadResponse `json:"threads"`
	Posts         []PostResponse   `json:"posts"`
	CurrentBoard  *BoardResponse   `json:"currentBoard"`
	CurrentThread *ThreadResponse  `json:"currentThread"`
	Form          FormResponse     `json:"form"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func NewBoard(b domain.Board) BoardResponse {
	return BoardResponse{Id: b.Id, Name: b.Name, Description: b.Description}
}

func NewThread(t domain.Thread) ThreadResponse {
	return ThreadResponse{
		Id:        t.Id,
		BoardId:   t.BoardId,
		Title:     t.Title,
		CreatedAt: t.CreatedAt.UnixMilli(),
		UpdatedAt: t.UpdatedAt.UnixMilli(),
		PostCount: t.PostCount,
	}
}

// NewPost fills Display using format, which converts to the display zone.
func NewPost(p domain.Post, format func(domain.Post) string) PostResponse {
	return PostResponse{
		Id:        p.Id,
		ThreadId:  p.ThreadId,
		Number:    p.Number,
		Name:      p.Name,
		Content:   p.Content,
		Timestamp: p.Timestamp.UnixMilli(),
		Display:   format(p),
	}
}

func NewBoards(boards []domain.Board) []BoardResponse {
	out := make([]BoardResponse, 0, len(boards))
	for _, b := range boards {
		out = append(out, NewBoard(b))
	}
	return out
}

func NewThreads(threads []domain.Thread) []ThreadResponse {
	out := make([]ThreadResponse, 0, len(threads))
	for _, t := range threads {
		out = append(out, NewThread(t))
	}
	return out
}

func NewPosts(posts []domain.Post, format func(domain.Post) string) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPost(p, format))
	}
	return out
}

func NewSession(st session.State, format func(domain.Post) string) SessionResponse {
	resp := SessionResponse{
		View:    st.View.String(),
		Boards:  NewBoards(st.Boards),
		Threads: NewThreads(st.Threads),
		Posts:   NewPosts(st.Posts, format),
		Form:    FormResponse{Title: st.Form.Title, Body: st.Form.Body, Name: st.Form.Name},
	}
	if st.CurrentBoard != nil {
		b := NewBoard(*st.CurrentBoard)
		resp.CurrentBoard = &b
	}
	if st.CurrentThread != nil {
		t := NewThread(*st.CurrentThread)
		resp.CurrentThread = &t
	}
	return resp
}
