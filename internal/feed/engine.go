package feed

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"postline/internal/models"
	"postline/internal/notify"
	"postline/internal/observability"
)

// Identity is the slice of the session manager the engine needs: the acting
// user's numeric ID, used to scope every write.
type Identity interface {
	UserID() uint
}

// Confirm asks the user to approve a destructive action. Returning false
// aborts the action. A nil Confirm denies everything.
type Confirm func(prompt string) bool

// SortMode marks the client-side sort currently applied to the feed.
type SortMode int

const (
	SortNone SortMode = iota
	SortRecency
	SortLikes
	SortLikesThenRecency
)

func (m SortMode) String() string {
	switch m {
	case SortRecency:
		return "recency"
	case SortLikes:
		return "likes"
	case SortLikesThenRecency:
		return "likes,recency"
	default:
		return "none"
	}
}

// PostForm backs the post creation/edit form.
type PostForm struct {
	Title   string
	Content string
}

// Engine owns the feed state: the post list, the trending membership set,
// the per-post comment drafts, and the edit lifecycle. All state is mutated
// only by the engine under its lock; consumers must re-read after any
// operation that reloads, never cache a post across one.
type Engine struct {
	mu       sync.Mutex
	api      API
	identity Identity
	notifier notify.Notifier
	confirm  Confirm
	log      *observability.Logger

	posts        []models.Post
	trending     []models.Post
	commentForms formRegistry

	postForm     PostForm
	composerOpen bool

	editing  bool
	draft    *models.Post
	original *models.Post

	sortMode     SortMode
	authorFilter string
}

// NewEngine wires the engine to its collaborators. notifier and confirm may
// be nil; failures then only reach the log and destructive actions are
// denied.
func NewEngine(api API, identity Identity, notifier notify.Notifier, confirm Confirm, log *observability.Logger) *Engine {
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	return &Engine{
		api:          api,
		identity:     identity,
		notifier:     notifier,
		confirm:      confirm,
		log:          log,
		commentForms: make(formRegistry),
	}
}

// LoadPosts fetches the feed, optionally scoped by author name. On success
// the post list is replaced and the comment-form registry re-derived. On
// failure the previous list stays in place; the error is reported, never
// raised, so a transient read failure cannot take the feed down.
func (e *Engine) LoadPosts(ctx context.Context, author string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadPostsLocked(ctx, author)
}

func (e *Engine) loadPostsLocked(ctx context.Context, author string) {
	posts, err := e.api.ListPosts(ctx, author)
	if err != nil {
		e.log.ErrorContext(ctx, "loading posts failed", slog.String("error", err.Error()))
		notify.ReportError(e.notifier, err)
		return
	}
	e.posts = posts
	e.authorFilter = author
	e.commentForms.sync(posts)
}

// LoadTrendingPosts fetches the trending highlight set. Independent of the
// main feed: a failure here never touches posts.
func (e *Engine) LoadTrendingPosts(ctx context.Context) {
	trending, err := e.api.ListTrending(ctx)
	if err != nil {
		e.log.ErrorContext(ctx, "loading trending posts failed", slog.String("error", err.Error()))
		notify.ReportError(e.notifier, err)
		return
	}
	e.mu.Lock()
	e.trending = trending
	e.mu.Unlock()
}

// IsTrending reports membership of postID in the trending set. Pure.
func (e *Engine) IsTrending(postID uint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.trending {
		if p.ID == postID {
			return true
		}
	}
	return false
}

// FilterByAuthor re-issues the feed load scoped to the given author name.
// Author filtering is a server-side operation.
func (e *Engine) FilterByAuthor(ctx context.Context, name string) {
	e.LoadPosts(ctx, name)
}

// ClearFilters resets the sort marker and the author filter and reloads the
// unfiltered feed.
func (e *Engine) ClearFilters(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sortMode = SortNone
	e.loadPostsLocked(ctx, "")
}

// SortByRecency re-sorts the feed in place by creation time, newest first.
func (e *Engine) SortByRecency() {
	e.mu.Lock()
	defer e.mu.Unlock()
	slices.SortFunc(e.posts, func(a, b models.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	e.sortMode = SortRecency
}

// SortByLikeCount re-sorts the feed in place by like count, highest first.
// Like count is derived from the vote collection.
func (e *Engine) SortByLikeCount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	slices.SortFunc(e.posts, func(a, b models.Post) int {
		return b.LikeCount() - a.LikeCount()
	})
	e.sortMode = SortLikes
}

// SortByLikeCountThenRecency re-sorts by like count, breaking ties by
// creation time descending.
func (e *Engine) SortByLikeCountThenRecency() {
	e.mu.Lock()
	defer e.mu.Unlock()
	slices.SortFunc(e.posts, func(a, b models.Post) int {
		if d := b.LikeCount() - a.LikeCount(); d != 0 {
			return d
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	e.sortMode = SortLikesThenRecency
}

// Posts returns the current feed in its current order. The slice is owned by
// the engine; re-read after any reloading operation.
func (e *Engine) Posts() []models.Post {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.posts
}

// TrendingPosts returns the current trending set.
func (e *Engine) TrendingPosts() []models.Post {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trending
}

// SortMode returns the currently selected client-side sort marker.
func (e *Engine) SortMode() SortMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortMode
}

// AuthorFilter returns the author name the feed is currently scoped to.
func (e *Engine) AuthorFilter() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authorFilter
}

// SetPostForm stores the form fields backing the post draft. While editing,
// the fields flow into the draft copy, never into the feed entry itself.
func (e *Engine) SetPostForm(title, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.postForm = PostForm{Title: title, Content: content}
	if e.editing {
		e.draft.Title = title
		e.draft.Content = content
	}
}

// Form returns the current post form fields.
func (e *Engine) Form() PostForm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.postForm
}

// OpenComposer expands the post creation panel.
func (e *Engine) OpenComposer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.composerOpen = true
}

// ComposerOpen reports whether the creation panel is expanded.
func (e *Engine) ComposerOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.composerOpen
}

// SavePost submits the form as a new post authored by the acting user. On
// success the form resets, the composer collapses, and the feed reloads. On
// failure the form stays populated for retry.
func (e *Engine) SavePost(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(e.postForm.Title) == "" || strings.TrimSpace(e.postForm.Content) == "" {
		err := models.NewValidationError("Title and content are required")
		notify.ReportError(e.notifier, err)
		return err
	}

	// The author is always the session identity, never a form field.
	req := models.PostRequest{
		Title:   e.postForm.Title,
		Content: e.postForm.Content,
		UserID:  e.identity.UserID(),
	}
	if err := e.api.CreatePost(ctx, req); err != nil {
		notify.ReportError(e.notifier, err)
		return err
	}

	notify.Created(e.notifier, "post")
	e.postForm = PostForm{}
	e.composerOpen = false
	e.loadPostsLocked(ctx, e.authorFilter)
	return nil
}

// EnterEditMode looks up the post by id and flips to edit mode with two
// independent deep copies: the draft the form mutates and the original used
// for change diffing. An unknown id is a no-op; the post may have been
// removed by a concurrent reload. Entering edit while already editing
// replaces the pair wholesale.
func (e *Engine) EnterEditMode(postID uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.posts {
		if e.posts[i].ID == postID {
			e.draft = e.posts[i].Clone()
			e.original = e.posts[i].Clone()
			e.postForm = PostForm{Title: e.draft.Title, Content: e.draft.Content}
			e.editing = true
			return
		}
	}
}

// Editing reports whether the engine is in the edit lifecycle state.
func (e *Engine) Editing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing
}

// CancelEdit leaves edit mode and discards the draft pair.
func (e *Engine) CancelEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetEditLocked()
}

func (e *Engine) resetEditLocked() {
	e.editing = false
	e.draft = nil
	e.original = nil
	e.postForm = PostForm{}
}

// ChangeSummary compares the draft against the original field by field and
// returns the human-readable list of changed fields. Empty means nothing
// changed (or nothing is being edited).
func (e *Engine) ChangeSummary() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changeSummaryLocked()
}

func (e *Engine) changeSummaryLocked() []string {
	if !e.editing {
		return nil
	}
	var changed []string
	if e.draft.Title != e.original.Title {
		changed = append(changed, "title")
	}
	if e.draft.Content != e.original.Content {
		changed = append(changed, "content")
	}
	return changed
}

// UpdatePost submits the edited draft. It refuses when nothing changed and
// requires explicit confirmation before submitting. On success the feed
// reloads and edit mode ends; on failure the draft stays for retry.
func (e *Engine) UpdatePost(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := e.changeSummaryLocked()
	if len(changed) == 0 {
		err := models.NewValidationError("No changes to update")
		e.notifier.Failure(err.Message)
		return err
	}

	prompt := fmt.Sprintf("Update post %d? Changed: %s", e.original.ID, strings.Join(changed, ", "))
	if e.confirm == nil || !e.confirm(prompt) {
		return nil
	}

	req := models.PostRequest{
		ID:      e.original.ID,
		Title:   e.draft.Title,
		Content: e.draft.Content,
		UserID:  e.identity.UserID(),
	}
	if err := e.api.UpdatePost(ctx, req); err != nil {
		notify.ReportError(e.notifier, err)
		return err
	}

	e.notifier.Success("Successfully updated post")
	e.resetEditLocked()
	e.loadPostsLocked(ctx, e.authorFilter)
	return nil
}

// DeletePost removes a post after explicit confirmation and reloads the feed.
func (e *Engine) DeletePost(ctx context.Context, postID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.confirm == nil || !e.confirm(fmt.Sprintf("Delete post %d?", postID)) {
		return nil
	}

	if err := e.api.DeletePost(ctx, postID); err != nil {
		notify.ReportError(e.notifier, err)
		return err
	}

	e.loadPostsLocked(ctx, e.authorFilter)
	return nil
}

// Vote submits a like or dislike vote for the acting user and reloads the
// feed so counts and the caller's own vote state re-derive from the server.
// Local vote state is never patched optimistically. Like and dislike are
// independent facts; submitting one does not retract the other.
func (e *Engine) Vote(ctx context.Context, postID uint, isLike bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	req := models.VoteRequest{
		PostID: postID,
		UserID: e.identity.UserID(),
		IsLike: isLike,
	}
	if err := e.api.CreateVote(ctx, req); err != nil {
		notify.ReportError(e.notifier, err)
		return err
	}

	e.loadPostsLocked(ctx, e.authorFilter)
	return nil
}

// HasVoted reports whether the acting user holds a vote of the given
// polarity on the post. Pure; drives toggle-button highlighting.
func (e *Engine) HasVoted(postID uint, isLike bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.posts {
		if e.posts[i].ID == postID {
			return e.posts[i].HasVote(e.identity.UserID(), isLike)
		}
	}
	return false
}

// SetCommentDraft writes into the post's draft comment buffer. A missing
// buffer is a precondition failure: every visible post has one, so the id
// refers to a post not in the feed.
func (e *Engine) SetCommentDraft(postID uint, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	form, ok := e.commentForms[postID]
	if !ok {
		return models.NewNotFoundError("comment form for post", postID)
	}
	form.Content = content
	return nil
}

// CommentDraft returns the current draft buffer content for the post.
func (e *Engine) CommentDraft(postID uint) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	form, ok := e.commentForms[postID]
	if !ok {
		return "", false
	}
	return form.Content, true
}

// AddComment submits the post's draft buffer as a comment by the acting
// user. On success the feed reloads and only that post's buffer clears; on
// failure the buffer stays intact.
func (e *Engine) AddComment(ctx context.Context, postID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	form, ok := e.commentForms[postID]
	if !ok {
		err := models.NewNotFoundError("comment form for post", postID)
		notify.ReportError(e.notifier, err)
		return err
	}
	if strings.TrimSpace(form.Content) == "" {
		err := models.NewValidationError("Comment content is required")
		e.notifier.Failure(err.Message)
		return err
	}

	req := models.CommentRequest{
		PostID:  postID,
		UserID:  e.identity.UserID(),
		Content: form.Content,
	}
	if err := e.api.CreateComment(ctx, req); err != nil {
		notify.ReportError(e.notifier, err)
		return err
	}

	notify.Created(e.notifier, "comment")
	e.loadPostsLocked(ctx, e.authorFilter)
	// The reload keeps surviving buffers; clear only the submitted one.
	if form, ok := e.commentForms[postID]; ok {
		form.Content = ""
	}
	return nil
}
