package storage

import (
	"encoding/json"
	"time"

	"github.com/itchan-dev/textboard/internal/domain"
)

// Stored values are JSON objects; times are Unix milliseconds.

type boardRecord struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

type threadRecord struct {
	Id        string `json:"id"`
	BoardId   string `json:"boardId"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	PostCount int    `json:"postCount"`
}

type postRecord struct {
	Id        string `json:"id"`
	ThreadId  string `json:"threadId"`
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func encodeBoard(b domain.Board) (string, error) {
	data, err := json.Marshal(boardRecord{
		Id:          b.Id,
		Name:        b.Name,
		Description: b.Description,
		Position:    b.Position,
	})
	return string(data), err
}

func decodeBoard(value string) (domain.Board, error) {
	var r boardRecord
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return domain.Board{}, err
	}
	return domain.Board{Id: r.Id, Name: r.Name, Description: r.Description, Position: r.Position}, nil
}

func encodeThread(t domain.Thread) (string, error) {
	data, err := json.Marshal(threadRecord{
		Id:        t.Id,
		BoardId:   t.BoardId,
		Title:     t.Title,
		CreatedAt: t.CreatedAt.UnixMilli(),
		UpdatedAt: t.UpdatedAt.UnixMilli(),
		PostCount: t.PostCount,
	})
	return string(data), err
}

func decodeThread(value string) (domain.Thread, error) {
	var r threadRecord
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return domain.Thread{}, err
	}
	return domain.Thread{
		Id:        r.Id,
		BoardId:   r.BoardId,
		Title:     r.Title,
		CreatedAt: time.UnixMilli(r.CreatedAt),
		UpdatedAt: time.UnixMilli(r.UpdatedAt),
		PostCount: r.PostCount,
	}, nil
}

func encodePost(p domain.Post) (string, error) {
	data, err := json.Marshal(postRecord{
		Id:        p.Id,
		ThreadId:  p.ThreadId,
		Number:    p.Number,
		Name:      p.Name,
		Content:   p.Content,
		Timestamp: p.Timestamp.UnixMilli(),
	})
	return string(data), err
}

func decodePost(value string) (domain.Post, error) {
	var r postRecord
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return domain.Post{}, err
	}
	return domain.Post{
		Id:        r.Id,
		ThreadId:  r.ThreadId,
		Number:    r.Number,
		Name:      r.Name,
		Content:   r.Content,
		Timestamp: time.UnixMilli(r.Timestamp),
	}, nil
}
