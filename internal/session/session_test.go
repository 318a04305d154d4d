package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/itchan-dev/textboard/internal/config"
	"github.com/itchan-dev/textboard/internal/domain"
	internal_errors "github.com/itchan-dev/textboard/internal/errors"
	"github.com/itchan-dev/textboard/internal/kv/memory"
	"github.com/itchan-dev/textboard/internal/service"
	"github.com/itchan-dev/textboard/internal/storage"
	"github.com/itchan-dev/textboard/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockForum forwards to a real forum unless a func field overrides the call.
type mockForum struct {
	*service.Forum

	createThreadFunc func(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error)
	createPostFunc   func(ctx context.Context, data domain.PostCreationData) (domain.Post, domain.Thread, error)
	listThreadsCalls int
}

func (m *mockForum) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
	if m.createThreadFunc != nil {
		return m.createThreadFunc(ctx, data)
	}
	return m.Forum.CreateThread(ctx, data)
}

func (m *mockForum) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, domain.Thread, error) {
	if m.createPostFunc != nil {
		return m.createPostFunc(ctx, data)
	}
	return m.Forum.CreatePost(ctx, data)
}

func (m *mockForum) ListThreads(ctx context.Context, board domain.BoardId) []domain.Thread {
	m.listThreadsCalls++
	return m.Forum.ListThreads(ctx, board)
}

func newTestForum() *mockForum {
	f := service.NewForum(
		storage.New(memory.New()),
		utils.NewValidator(&config.Public{ThreadTitleMaxLen: 50, PostTextMaxLen: 500, NameMaxLen: 20}),
		utils.NewNameFormatter("salt"),
		nil,
	)
	return &mockForum{Forum: f}
}

func newTestSession(t *testing.T) (*Session, *mockForum) {
	t.Helper()
	f := newTestForum()
	s := New("test", f)
	s.Load(context.Background())
	return s, f
}

func requireInvalidTransition(t *testing.T, err error) {
	t.Helper()
	require.ErrorIs(t, err, ErrInvalidTransition)
	var e *internal_errors.ErrorWithStatusCode
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusConflict, e.StatusCode)
}

// openThread walks the session to the posts view of a fresh thread.
func openThread(t *testing.T, s *Session, board string) domain.Thread {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.OpenBoard(ctx, board))
	s.SetTitle("スレ")
	s.SetBody("最初の書き込み")
	require.NoError(t, s.CreateThread(ctx))
	st := s.State()
	require.NotEmpty(t, st.Threads)
	require.NoError(t, s.OpenThread(ctx, st.Threads[0].Id))
	return *s.State().CurrentThread
}

func TestInitialState(t *testing.T) {
	s, _ := newTestSession(t)
	st := s.State()

	assert.Equal(t, ViewBoards, st.View)
	assert.Equal(t, service.DefaultBoards(), st.Boards)
	assert.Nil(t, st.CurrentBoard)
	assert.Nil(t, st.CurrentThread)
	assert.Equal(t, Form{}, st.Form)
}

func TestNavigation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.OpenBoard(ctx, "tech"))
	st := s.State()
	assert.Equal(t, ViewThreads, st.View)
	require.NotNil(t, st.CurrentBoard)
	assert.Equal(t, "tech", st.CurrentBoard.Id)
	assert.NotNil(t, st.Threads)
	assert.Empty(t, st.Threads, "empty board shows no threads")

	s.SetTitle("Hello")
	s.SetBody("World")
	require.NoError(t, s.CreateThread(ctx))
	st = s.State()
	require.Len(t, st.Threads, 1)
	threadId := st.Threads[0].Id

	require.NoError(t, s.OpenThread(ctx, threadId))
	st = s.State()
	assert.Equal(t, ViewPosts, st.View)
	require.NotNil(t, st.CurrentThread)
	assert.Equal(t, threadId, st.CurrentThread.Id)
	require.Len(t, st.Posts, 1)
	assert.Equal(t, "名無しさん", st.Posts[0].Name)

	require.NoError(t, s.Back(ctx))
	st = s.State()
	assert.Equal(t, ViewThreads, st.View)
	assert.Nil(t, st.CurrentThread)
	assert.Empty(t, st.Posts)
	require.NotNil(t, st.CurrentBoard, "board selection is kept")
	assert.Equal(t, "tech", st.CurrentBoard.Id)

	require.NoError(t, s.Back(ctx))
	st = s.State()
	assert.Equal(t, ViewBoards, st.View)
	assert.Nil(t, st.CurrentBoard)
	assert.Empty(t, st.Threads)

	require.NoError(t, s.Back(ctx), "back on the board list is a no-op")
	assert.Equal(t, ViewBoards, s.State().View)
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("from boards", func(t *testing.T) {
		s, _ := newTestSession(t)
		requireInvalidTransition(t, s.OpenThread(ctx, "tech_1"))
		requireInvalidTransition(t, s.CreateThread(ctx))
		requireInvalidTransition(t, s.CreatePost(ctx))
		assert.Equal(t, ViewBoards, s.State().View)
	})

	t.Run("from threads", func(t *testing.T) {
		s, _ := newTestSession(t)
		require.NoError(t, s.OpenBoard(ctx, "news"))
		requireInvalidTransition(t, s.OpenBoard(ctx, "tech"))
		requireInvalidTransition(t, s.CreatePost(ctx))
		assert.Equal(t, "news", s.State().CurrentBoard.Id)
	})

	t.Run("from posts", func(t *testing.T) {
		s, _ := newTestSession(t)
		thread := openThread(t, s, "tech")
		requireInvalidTransition(t, s.OpenBoard(ctx, "news"))
		requireInvalidTransition(t, s.OpenThread(ctx, thread.Id))
		requireInvalidTransition(t, s.CreateThread(ctx))
		assert.Equal(t, ViewPosts, s.State().View)
	})
}

func TestOpenUnknown(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	err := s.OpenBoard(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, ViewBoards, s.State().View)

	require.NoError(t, s.OpenBoard(ctx, "tech"))
	err = s.OpenThread(ctx, "tech_404")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, ViewThreads, s.State().View)
}

func TestOpenThreadOfOtherBoard(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	thread := openThread(t, s, "news")
	require.NoError(t, s.Back(ctx))
	require.NoError(t, s.Back(ctx))

	require.NoError(t, s.OpenBoard(ctx, "tech"))
	err := s.OpenThread(ctx, thread.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateThreadClearsForm(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	require.NoError(t, s.OpenBoard(ctx, "tech"))

	s.SetTitle("title")
	s.SetBody("body")
	s.SetName("taro")
	require.NoError(t, s.CreateThread(ctx))

	st := s.State()
	assert.Equal(t, Form{}, st.Form)
	require.Len(t, st.Threads, 1)
	assert.Equal(t, 1, st.Threads[0].PostCount)
}

func TestCreateThreadRejectedSilently(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	require.NoError(t, s.OpenBoard(ctx, "tech"))
	s.SetTitle("title")
	s.SetBody("body")
	require.NoError(t, s.CreateThread(ctx))
	before := s.State()

	s.SetTitle("another")
	s.SetBody("   ")
	s.SetName("taro")
	require.NoError(t, s.CreateThread(ctx))

	after := s.State()
	assert.Equal(t, before.Threads, after.Threads)
	assert.Equal(t, Form{Title: "another", Body: "   ", Name: "taro"}, after.Form, "form is kept as typed")
}

func TestCreateThreadFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	s, f := newTestSession(t)
	require.NoError(t, s.OpenBoard(ctx, "tech"))
	f.createThreadFunc = func(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
		return domain.Thread{}, &internal_errors.ErrorWithStatusCode{Message: "Storage unavailable", StatusCode: http.StatusServiceUnavailable}
	}
	s.SetTitle("title")
	s.SetBody("body")
	calls := f.listThreadsCalls

	err := s.CreateThread(ctx)
	require.Error(t, err)

	st := s.State()
	assert.Equal(t, Form{Title: "title", Body: "body"}, st.Form)
	assert.Empty(t, st.Threads)
	assert.Equal(t, calls, f.listThreadsCalls, "no reload after a failed write")
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	thread := openThread(t, s, "tech")

	s.SetTitle("kept")
	for i := 0; i < 3; i++ {
		s.SetBody("reply")
		s.SetName("taro")
		require.NoError(t, s.CreatePost(ctx))
	}

	st := s.State()
	assert.Equal(t, Form{Title: "kept"}, st.Form, "body and name cleared, title kept")
	require.Len(t, st.Posts, 4)
	for i, p := range st.Posts {
		assert.Equal(t, i+1, p.Number)
	}
	assert.Equal(t, "taro", st.Posts[3].Name)
	require.NotNil(t, st.CurrentThread)
	assert.Equal(t, thread.Id, st.CurrentThread.Id)
	assert.Equal(t, 4, st.CurrentThread.PostCount)

	require.NoError(t, s.Back(ctx))
	st = s.State()
	require.Len(t, st.Threads, 1)
	assert.Equal(t, 4, st.Threads[0].PostCount, "thread list is reloaded on back")
}

func TestCreatePostRejectedAndFailure(t *testing.T) {
	ctx := context.Background()
	s, f := newTestSession(t)
	openThread(t, s, "tech")

	s.SetBody(" \n ")
	require.NoError(t, s.CreatePost(ctx))
	assert.Len(t, s.State().Posts, 1)

	f.createPostFunc = func(ctx context.Context, data domain.PostCreationData) (domain.Post, domain.Thread, error) {
		return domain.Post{}, domain.Thread{}, errors.New("boom")
	}
	s.SetBody("reply")
	require.Error(t, s.CreatePost(ctx))
	st := s.State()
	assert.Len(t, st.Posts, 1)
	assert.Equal(t, 1, st.CurrentThread.PostCount)
	assert.Equal(t, "reply", st.Form.Body)
}

func TestStateIsASnapshot(t *testing.T) {
	s, _ := newTestSession(t)
	openThread(t, s, "tech")

	st := s.State()
	st.Posts[0].Content = "changed"
	st.CurrentThread.Title = "changed"
	st.Boards[0].Name = "changed"

	again := s.State()
	assert.NotEqual(t, "changed", again.Posts[0].Content)
	assert.NotEqual(t, "changed", again.CurrentThread.Title)
	assert.NotEqual(t, "changed", again.Boards[0].Name)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	steps := []Intent{
		{Kind: IntentOpenBoard, Target: "life"},
		{Kind: IntentSetTitle, Value: "t"},
		{Kind: IntentSetBody, Value: "b"},
		{Kind: IntentSetName, Value: "n"},
		{Kind: IntentCreateThread},
	}
	for _, in := range steps {
		require.NoError(t, s.Apply(ctx, in), in.Kind)
	}
	st := s.State()
	require.Len(t, st.Threads, 1)

	require.NoError(t, s.Apply(ctx, Intent{Kind: IntentOpenThread, Target: st.Threads[0].Id}))
	require.NoError(t, s.Apply(ctx, Intent{Kind: IntentSetBody, Value: "reply"}))
	require.NoError(t, s.Apply(ctx, Intent{Kind: IntentCreatePost}))
	assert.Len(t, s.State().Posts, 2)
	require.NoError(t, s.Apply(ctx, Intent{Kind: IntentBack}))
	assert.Equal(t, ViewThreads, s.State().View)

	err := s.Apply(ctx, Intent{Kind: "dance"})
	var e *internal_errors.ErrorWithStatusCode
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusBadRequest, e.StatusCode)

	assert.True(t, Intent{Kind: IntentCreatePost}.IsCreate())
	assert.False(t, Intent{Kind: IntentBack}.IsCreate())
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "boards", ViewBoards.String())
	assert.Equal(t, "threads", ViewThreads.String())
	assert.Equal(t, "posts", ViewPosts.String())
	assert.Equal(t, "unknown", View(9).String())
}
