package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Board  BoardId
	Title  ThreadTitle
	OpPost PostCreationData
}

type Thread struct {
	Id        ThreadId
	BoardId   BoardId
	Title     ThreadTitle
	CreatedAt time.Time
	UpdatedAt time.Time
	PostCount int
}
