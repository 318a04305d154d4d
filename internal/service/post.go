package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/logger"
)

// CreatePost appends a reply to an existing thread and returns the post with
// the thread's updated state. Blank body yields ErrRejected.
//
// The post number is count+1 where count comes from storage at call time.
// Two writers racing on the same thread can produce the same number.
func (f *Forum) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, domain.Thread, error) {
	if strings.TrimSpace(data.Content) == "" {
		return domain.Post{}, domain.Thread{}, rejected()
	}
	if err := f.validator.Text(data.Content); err != nil {
		return domain.Post{}, domain.Thread{}, err
	}
	if err := f.validator.Name(data.Name); err != nil {
		return domain.Post{}, domain.Thread{}, err
	}

	thread, err := f.Thread(ctx, data.Board, data.Thread)
	if err != nil {
		return domain.Post{}, domain.Thread{}, err
	}
	count, err := f.storage.PostCount(ctx, thread.Id)
	if err != nil {
		return domain.Post{}, domain.Thread{}, unavailable(err)
	}

	now := f.timestamp()
	number := count + 1
	post := domain.Post{
		Id:        domain.NewPostId(thread.Id, number),
		ThreadId:  thread.Id,
		Number:    number,
		Name:      f.names.DisplayName(data.Name),
		Content:   data.Content,
		Timestamp: now,
	}
	thread.UpdatedAt = now
	thread.PostCount = number

	if err := f.storage.AppendPost(ctx, thread, post); err != nil {
		logger.Log.Error("failed to append post", "thread", thread.Id, "number", number, "error", err)
		return domain.Post{}, domain.Thread{}, unavailable(err)
	}
	postsCreated.Inc()
	logger.Log.Debug("post created", "thread", thread.Id, "number", number)
	return post, thread, nil
}

// ListPosts returns the thread's posts by ascending number. A storage failure
// yields an empty list.
func (f *Forum) ListPosts(ctx context.Context, thread domain.ThreadId) []domain.Post {
	posts, err := f.storage.Posts(ctx, thread)
	if err != nil {
		readFailed("posts", err, "thread", thread)
		return []domain.Post{}
	}
	slices.SortFunc(posts, func(a, b domain.Post) int {
		return cmp.Compare(a.Number, b.Number)
	})
	return posts
}
