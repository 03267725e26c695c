// Package feed drives the post feed: loading, sorting, filtering, post CRUD
// with change diffing, vote toggling, and per-post comment drafts.
package feed

import (
	"context"
	"net/url"

	"postline/internal/models"
	"postline/internal/transport"
)

// API is the slice of the data client the engine issues its CRUD calls
// through. Narrow on purpose so tests can stub it.
type API interface {
	ListPosts(ctx context.Context, author string) ([]models.Post, error)
	ListTrending(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, req models.PostRequest) error
	UpdatePost(ctx context.Context, req models.PostRequest) error
	DeletePost(ctx context.Context, id uint) error
	CreateComment(ctx context.Context, req models.CommentRequest) error
	CreateVote(ctx context.Context, req models.VoteRequest) error
}

// Paths holds the endpoint paths the feed talks to.
type Paths struct {
	Posts    string
	Trending string
	Comments string
	Votes    string
}

// NewAPI returns the production API over the generic data client.
func NewAPI(c *transport.Client, paths Paths) API {
	return &dataAPI{c: c, paths: paths}
}

type dataAPI struct {
	c     *transport.Client
	paths Paths
}

func (a *dataAPI) ListPosts(ctx context.Context, author string) ([]models.Post, error) {
	query := url.Values{"author": {author}}.Encode()
	return transport.GetData[models.Post](ctx, a.c, a.paths.Posts, query)
}

func (a *dataAPI) ListTrending(ctx context.Context) ([]models.Post, error) {
	return transport.GetData[models.Post](ctx, a.c, a.paths.Trending, "")
}

func (a *dataAPI) CreatePost(ctx context.Context, req models.PostRequest) error {
	_, err := transport.Save[models.Post](ctx, a.c, a.paths.Posts, req)
	return err
}

func (a *dataAPI) UpdatePost(ctx context.Context, req models.PostRequest) error {
	_, err := transport.Update[models.Post](ctx, a.c, a.paths.Posts, req)
	return err
}

func (a *dataAPI) DeletePost(ctx context.Context, id uint) error {
	return transport.Delete(ctx, a.c, a.paths.Posts, id)
}

func (a *dataAPI) CreateComment(ctx context.Context, req models.CommentRequest) error {
	_, err := transport.Save[models.Comment](ctx, a.c, a.paths.Comments, req)
	return err
}

func (a *dataAPI) CreateVote(ctx context.Context, req models.VoteRequest) error {
	_, err := transport.Save[models.Vote](ctx, a.c, a.paths.Votes, req)
	return err
}
