package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"postline/internal/models"
	"postline/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiStub is a function-field stub for the feed API.
type apiStub struct {
	listPostsFn     func(context.Context, string) ([]models.Post, error)
	listTrendingFn  func(context.Context) ([]models.Post, error)
	createPostFn    func(context.Context, models.PostRequest) error
	updatePostFn    func(context.Context, models.PostRequest) error
	deletePostFn    func(context.Context, uint) error
	createCommentFn func(context.Context, models.CommentRequest) error
	createVoteFn    func(context.Context, models.VoteRequest) error
}

func (s *apiStub) ListPosts(ctx context.Context, author string) ([]models.Post, error) {
	return s.listPostsFn(ctx, author)
}
func (s *apiStub) ListTrending(ctx context.Context) ([]models.Post, error) {
	return s.listTrendingFn(ctx)
}
func (s *apiStub) CreatePost(ctx context.Context, req models.PostRequest) error {
	return s.createPostFn(ctx, req)
}
func (s *apiStub) UpdatePost(ctx context.Context, req models.PostRequest) error {
	return s.updatePostFn(ctx, req)
}
func (s *apiStub) DeletePost(ctx context.Context, id uint) error {
	return s.deletePostFn(ctx, id)
}
func (s *apiStub) CreateComment(ctx context.Context, req models.CommentRequest) error {
	return s.createCommentFn(ctx, req)
}
func (s *apiStub) CreateVote(ctx context.Context, req models.VoteRequest) error {
	return s.createVoteFn(ctx, req)
}

func noopAPI() *apiStub {
	return &apiStub{
		listPostsFn:     func(_ context.Context, _ string) ([]models.Post, error) { return []models.Post{}, nil },
		listTrendingFn:  func(_ context.Context) ([]models.Post, error) { return []models.Post{}, nil },
		createPostFn:    func(_ context.Context, _ models.PostRequest) error { return nil },
		updatePostFn:    func(_ context.Context, _ models.PostRequest) error { return nil },
		deletePostFn:    func(_ context.Context, _ uint) error { return nil },
		createCommentFn: func(_ context.Context, _ models.CommentRequest) error { return nil },
		createVoteFn:    func(_ context.Context, _ models.VoteRequest) error { return nil },
	}
}

type identityStub struct{ id uint }

func (s identityStub) UserID() uint { return s.id }

type notifierRecorder struct {
	successes []string
	failures  []string
}

func (n *notifierRecorder) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *notifierRecorder) Failure(msg string) { n.failures = append(n.failures, msg) }

func alwaysConfirm(string) bool { return true }
func neverConfirm(string) bool  { return false }

func newTestEngine(api API, confirm Confirm) (*Engine, *notifierRecorder) {
	rec := &notifierRecorder{}
	e := NewEngine(api, identityStub{id: 42}, rec, confirm, observability.NewTextLogger())
	return e, rec
}

func postFixture(id uint, title string, createdAt time.Time, likes, dislikes int) models.Post {
	p := models.Post{ID: id, Title: title, Content: "body", CreatedAt: createdAt}
	for i := 0; i < likes; i++ {
		p.Votes = append(p.Votes, models.Vote{PostID: id, UserID: uint(100 + i), IsLike: true})
	}
	for i := 0; i < dislikes; i++ {
		p.Votes = append(p.Votes, models.Vote{PostID: id, UserID: uint(200 + i), IsLike: false})
	}
	return p
}

func TestLoadPostsReplacesFeedAndDerivesForms(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, author string) ([]models.Post, error) {
		assert.Equal(t, "bob", author)
		return []models.Post{{ID: 1}, {ID: 2}}, nil
	}
	e, _ := newTestEngine(api, nil)

	e.LoadPosts(context.Background(), "bob")

	assert.Len(t, e.Posts(), 2)
	assert.Equal(t, "bob", e.AuthorFilter())
	_, ok := e.CommentDraft(1)
	assert.True(t, ok)
	_, ok = e.CommentDraft(2)
	assert.True(t, ok)
}

func TestLoadPostsFailureLeavesFeedUntouched(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{{ID: 1}}, nil
	}
	e, rec := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")
	require.Len(t, e.Posts(), 1)

	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return nil, models.ErrorFromStatus(500)
	}
	e.LoadPosts(context.Background(), "")

	assert.Len(t, e.Posts(), 1, "prior feed survives a failed reload")
	assert.Equal(t, []string{"Internal server error"}, rec.failures)
}

func TestReloadPrunesStaleBuffersKeepsSurvivingDrafts(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{{ID: 1}, {ID: 2}}, nil
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")
	require.NoError(t, e.SetCommentDraft(1, "draft for one"))

	// Post 2 disappears on the next reload.
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{{ID: 1}, {ID: 3}}, nil
	}
	e.LoadPosts(context.Background(), "")

	content, ok := e.CommentDraft(1)
	require.True(t, ok)
	assert.Equal(t, "draft for one", content, "surviving buffer keeps its draft")
	_, ok = e.CommentDraft(2)
	assert.False(t, ok, "buffer for removed post is pruned")
	_, ok = e.CommentDraft(3)
	assert.True(t, ok, "new post gets a fresh buffer")
}

func TestTrendingIsIndependentOfFeed(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{{ID: 1}}, nil
	}
	api.listTrendingFn = func(_ context.Context) ([]models.Post, error) {
		return nil, models.ErrorFromStatus(500)
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")

	e.LoadTrendingPosts(context.Background())
	assert.Len(t, e.Posts(), 1, "feed unaffected by trending failure")
	assert.False(t, e.IsTrending(1))

	api.listTrendingFn = func(_ context.Context) ([]models.Post, error) {
		return []models.Post{{ID: 1}, {ID: 9}}, nil
	}
	e.LoadTrendingPosts(context.Background())
	assert.True(t, e.IsTrending(1))
	assert.True(t, e.IsTrending(9))
	assert.False(t, e.IsTrending(2))
}

func TestSortByLikeCount(t *testing.T) {
	now := time.Now()
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{
			postFixture(1, "one like", now.Add(-time.Hour), 1, 0),
			postFixture(2, "three likes", now.Add(-2*time.Hour), 3, 0),
			postFixture(3, "two likes", now.Add(-3*time.Hour), 2, 0),
		}, nil
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")

	e.SortByLikeCount()

	posts := e.Posts()
	assert.Equal(t, []uint{2, 3, 1}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, SortLikes, e.SortMode())
}

func TestSortByLikeCountThenRecency(t *testing.T) {
	now := time.Now()
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{
			postFixture(1, "older, two likes", now.Add(-2*time.Hour), 2, 0),
			postFixture(2, "newer, two likes", now.Add(-time.Hour), 2, 0),
			postFixture(3, "five likes", now.Add(-9*time.Hour), 5, 0),
		}, nil
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")

	e.SortByLikeCountThenRecency()

	posts := e.Posts()
	assert.Equal(t, []uint{3, 2, 1}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestSortByRecency(t *testing.T) {
	now := time.Now()
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{
			postFixture(1, "old", now.Add(-3*time.Hour), 9, 0),
			postFixture(2, "new", now.Add(-time.Minute), 0, 0),
		}, nil
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")

	e.SortByRecency()

	posts := e.Posts()
	assert.Equal(t, uint(2), posts[0].ID)
}

func TestClearFiltersResetsMarkerAndReloads(t *testing.T) {
	var lastAuthor string
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, author string) ([]models.Post, error) {
		lastAuthor = author
		return []models.Post{}, nil
	}
	e, _ := newTestEngine(api, nil)

	e.FilterByAuthor(context.Background(), "bob")
	assert.Equal(t, "bob", lastAuthor)
	e.SortByRecency()

	e.ClearFilters(context.Background())
	assert.Equal(t, "", lastAuthor)
	assert.Equal(t, SortNone, e.SortMode())
	assert.Equal(t, "", e.AuthorFilter())
}

func TestHasVotedPolaritiesAreIndependent(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{
			{ID: 7, Votes: []models.Vote{{PostID: 7, UserID: 42, IsLike: true}}},
		}, nil
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")

	assert.True(t, e.HasVoted(7, true))
	assert.False(t, e.HasVoted(7, false))
	assert.False(t, e.HasVoted(8, true), "unknown post has no votes")
}

func TestVoteSubmitsAndReloads(t *testing.T) {
	var gotVote models.VoteRequest
	var reloads int
	api := noopAPI()
	api.createVoteFn = func(_ context.Context, req models.VoteRequest) error {
		gotVote = req
		return nil
	}
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		reloads++
		return []models.Post{}, nil
	}
	e, _ := newTestEngine(api, nil)

	require.NoError(t, e.Vote(context.Background(), 7, true))

	assert.Equal(t, models.VoteRequest{PostID: 7, UserID: 42, IsLike: true}, gotVote)
	assert.Equal(t, 1, reloads, "vote counts re-derive from the server")
}

func TestVoteFailureDoesNotReload(t *testing.T) {
	var reloads int
	api := noopAPI()
	api.createVoteFn = func(_ context.Context, _ models.VoteRequest) error {
		return models.ErrorFromStatus(500)
	}
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		reloads++
		return []models.Post{}, nil
	}
	e, rec := newTestEngine(api, nil)

	err := e.Vote(context.Background(), 7, false)

	assert.Error(t, err)
	assert.Zero(t, reloads)
	assert.Equal(t, []string{"Internal server error"}, rec.failures)
}

func TestSavePostInjectsActingUser(t *testing.T) {
	var gotReq models.PostRequest
	api := noopAPI()
	api.createPostFn = func(_ context.Context, req models.PostRequest) error {
		gotReq = req
		return nil
	}
	e, rec := newTestEngine(api, nil)
	e.OpenComposer()
	e.SetPostForm("Title", "Content")

	require.NoError(t, e.SavePost(context.Background()))

	assert.Equal(t, uint(42), gotReq.UserID, "author comes from the session, not the form")
	assert.Equal(t, PostForm{}, e.Form(), "form resets on success")
	assert.False(t, e.ComposerOpen(), "composer collapses on success")
	assert.Equal(t, []string{"Successfully created post"}, rec.successes)
}

func TestSavePostValidationNeverReachesNetwork(t *testing.T) {
	var calls int
	api := noopAPI()
	api.createPostFn = func(_ context.Context, _ models.PostRequest) error {
		calls++
		return nil
	}
	e, rec := newTestEngine(api, nil)
	e.SetPostForm("  ", "")

	err := e.SavePost(context.Background())

	assert.Error(t, err)
	assert.Zero(t, calls)
	assert.NotEmpty(t, rec.failures)
}

func TestSavePostFailureRetainsForm(t *testing.T) {
	api := noopAPI()
	api.createPostFn = func(_ context.Context, _ models.PostRequest) error {
		return models.ErrorFromStatus(400)
	}
	e, rec := newTestEngine(api, nil)
	e.SetPostForm("Title", "Content")

	err := e.SavePost(context.Background())

	assert.Error(t, err)
	assert.Equal(t, PostForm{Title: "Title", Content: "Content"}, e.Form())
	assert.Equal(t, []string{"Invalid input"}, rec.failures)
}

func TestEnterEditModeDeepCopies(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{postFixture(7, "original title", time.Now(), 1, 0)}, nil
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")

	e.EnterEditMode(7)
	require.True(t, e.Editing())

	// Mutating through the form touches the draft only.
	e.SetPostForm("edited title", "body")
	assert.Equal(t, "original title", e.Posts()[0].Title, "feed entry is never aliased")
	assert.Equal(t, []string{"title"}, e.ChangeSummary())
}

func TestEnterEditModeUnknownIDIsNoOp(t *testing.T) {
	api := noopAPI()
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")

	e.EnterEditMode(7)

	assert.False(t, e.Editing())
	assert.Empty(t, e.ChangeSummary())
}

func TestEnterEditModeReplacesPairAtomically(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{
			postFixture(1, "first", time.Now(), 0, 0),
			postFixture(2, "second", time.Now(), 0, 0),
		}, nil
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")

	e.EnterEditMode(1)
	e.SetPostForm("first edited", "body")
	e.EnterEditMode(2)

	// No merge of old and new drafts.
	assert.Equal(t, PostForm{Title: "second", Content: "body"}, e.Form())
	assert.Empty(t, e.ChangeSummary())
}

func TestUpdatePostRefusesWhenUnchanged(t *testing.T) {
	var calls int
	api := noopAPI()
	api.updatePostFn = func(_ context.Context, _ models.PostRequest) error {
		calls++
		return nil
	}
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{postFixture(7, "title", time.Now(), 0, 0)}, nil
	}
	e, rec := newTestEngine(api, alwaysConfirm)
	e.LoadPosts(context.Background(), "")
	e.EnterEditMode(7)

	err := e.UpdatePost(context.Background())

	assert.Error(t, err)
	assert.Zero(t, calls, "nothing is sent to the network")
	assert.Equal(t, []string{"No changes to update"}, rec.failures)
	assert.True(t, e.Editing(), "edit mode is retained")
}

func TestUpdatePostRequiresConfirmation(t *testing.T) {
	var calls int
	api := noopAPI()
	api.updatePostFn = func(_ context.Context, _ models.PostRequest) error {
		calls++
		return nil
	}
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{postFixture(7, "title", time.Now(), 0, 0)}, nil
	}
	e, _ := newTestEngine(api, neverConfirm)
	e.LoadPosts(context.Background(), "")
	e.EnterEditMode(7)
	e.SetPostForm("new title", "body")

	require.NoError(t, e.UpdatePost(context.Background()))

	assert.Zero(t, calls, "denied confirmation aborts the submit")
	assert.True(t, e.Editing())
}

func TestUpdatePostSubmitsWithOriginalID(t *testing.T) {
	var gotReq models.PostRequest
	api := noopAPI()
	api.updatePostFn = func(_ context.Context, req models.PostRequest) error {
		gotReq = req
		return nil
	}
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{postFixture(7, "title", time.Now(), 0, 0)}, nil
	}
	e, rec := newTestEngine(api, alwaysConfirm)
	e.LoadPosts(context.Background(), "")
	e.EnterEditMode(7)
	e.SetPostForm("new title", "new body")

	require.NoError(t, e.UpdatePost(context.Background()))

	assert.Equal(t, uint(7), gotReq.ID)
	assert.Equal(t, "new title", gotReq.Title)
	assert.Equal(t, uint(42), gotReq.UserID)
	assert.False(t, e.Editing(), "edit lifecycle returns to idle")
	assert.Equal(t, []string{"Successfully updated post"}, rec.successes)
}

func TestDeletePostConfirmationGate(t *testing.T) {
	var deleted []uint
	api := noopAPI()
	api.deletePostFn = func(_ context.Context, id uint) error {
		deleted = append(deleted, id)
		return nil
	}
	e, _ := newTestEngine(api, neverConfirm)
	require.NoError(t, e.DeletePost(context.Background(), 7))
	assert.Empty(t, deleted)

	e2, _ := newTestEngine(api, alwaysConfirm)
	require.NoError(t, e2.DeletePost(context.Background(), 7))
	assert.Equal(t, []uint{7}, deleted)
}

func TestAddCommentClearsOnlyThatBuffer(t *testing.T) {
	var gotReq models.CommentRequest
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{{ID: 1}, {ID: 2}}, nil
	}
	api.createCommentFn = func(_ context.Context, req models.CommentRequest) error {
		gotReq = req
		return nil
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")
	require.NoError(t, e.SetCommentDraft(1, "submit me"))
	require.NoError(t, e.SetCommentDraft(2, "sibling draft"))

	require.NoError(t, e.AddComment(context.Background(), 1))

	assert.Equal(t, models.CommentRequest{PostID: 1, UserID: 42, Content: "submit me"}, gotReq)
	content, _ := e.CommentDraft(1)
	assert.Empty(t, content, "submitted buffer clears")
	content, _ = e.CommentDraft(2)
	assert.Equal(t, "sibling draft", content, "sibling buffers are untouched")
}

func TestAddCommentFailureKeepsBuffer(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return []models.Post{{ID: 1}}, nil
	}
	api.createCommentFn = func(_ context.Context, _ models.CommentRequest) error {
		return models.ErrorFromStatus(500)
	}
	e, _ := newTestEngine(api, nil)
	e.LoadPosts(context.Background(), "")
	require.NoError(t, e.SetCommentDraft(1, "keep me"))

	err := e.AddComment(context.Background(), 1)

	assert.Error(t, err)
	content, _ := e.CommentDraft(1)
	assert.Equal(t, "keep me", content)
}

func TestAddCommentMissingBufferIsPreconditionFailure(t *testing.T) {
	var calls int
	api := noopAPI()
	api.createCommentFn = func(_ context.Context, _ models.CommentRequest) error {
		calls++
		return nil
	}
	e, _ := newTestEngine(api, nil)

	err := e.AddComment(context.Background(), 99)

	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestRelativeAge(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "5 min ago", RelativeAge(now.Add(-5*time.Minute), now))
	assert.Equal(t, "1 hour ago", RelativeAge(now.Add(-90*time.Minute), now))
	assert.Equal(t, "3 hours ago", RelativeAge(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", RelativeAge(now.Add(-49*time.Hour), now))
}

func TestLoadPostsFailureDoesNotPanic(t *testing.T) {
	api := noopAPI()
	api.listPostsFn = func(_ context.Context, _ string) ([]models.Post, error) {
		return nil, errors.New("connection refused")
	}
	e, rec := newTestEngine(api, nil)

	e.LoadPosts(context.Background(), "")

	assert.Empty(t, e.Posts())
	assert.Equal(t, []string{"An unexpected error occurred"}, rec.failures)
}
