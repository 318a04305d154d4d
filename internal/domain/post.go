package domain

import (
	"strconv"
	"time"
)

type PostCreationData struct {
	Board   BoardId
	Thread  ThreadId
	Name    DisplayName
	Content PostContent
}

type Post struct {
	Id        PostId
	ThreadId  ThreadId
	Number    PostNumber
	Name      DisplayName
	Content   PostContent
	Timestamp time.Time
}

// NewPostId builds the id of the n-th post of a thread.
func NewPostId(thread ThreadId, number PostNumber) PostId {
	return thread + "_" + strconv.Itoa(number)
}

// IsOp reports whether the post opened its thread.
func (p Post) IsOp() bool {
	return p.Number == 1
}
