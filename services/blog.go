package services

import (
	"context"
	"net/url"

	"github.com/goliatone/go-portfolio-client/models"
)

const blogPath = "/blog/"

// Blog is the blog part of the API.
type Blog interface {
	List(ctx context.Context, opts models.PostListOptions) (models.Response[models.Page[models.BlogPost]], error)
	Get(ctx context.Context, id int) (models.Response[models.BlogPost], error)
	GetBySlug(ctx context.Context, slug string) (models.Response[models.BlogPost], error)
	Statuses(ctx context.Context) (models.Response[[]models.Option], error)
	Stats(ctx context.Context) (models.Response[models.BlogStats], error)
	Create(ctx context.Context, in models.PostInput) (models.Response[models.BlogPost], error)
	Update(ctx context.Context, id int, in models.PostInput) (models.Response[models.BlogPost], error)
	Delete(ctx context.Context, id int) (models.Response[models.Ack], error)
	Like(ctx context.Context, id int) (models.Response[models.LikeResult], error)
}

// BlogService implements Blog over the HTTP client.
type BlogService struct {
	caller
}

var _ Blog = (*BlogService)(nil)

// NewBlog returns a BlogService calling api.
func NewBlog(api API) *BlogService {
	return &BlogService{caller{api: api}}
}

// List fetches a page of blog posts matching opts.
func (s *BlogService) List(ctx context.Context, opts models.PostListOptions) (models.Response[models.Page[models.BlogPost]], error) {
	var out models.Response[models.Page[models.BlogPost]]
	err := s.get(ctx, blogPath, opts, &out)
	return out, err
}

// Get fetches one blog post by id.
func (s *BlogService) Get(ctx context.Context, id int) (models.Response[models.BlogPost], error) {
	var out models.Response[models.BlogPost]
	err := s.get(ctx, itemPath(blogPath, id), nil, &out)
	return out, err
}

// GetBySlug fetches a post by its slug.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (models.Response[models.BlogPost], error) {
	var out models.Response[models.BlogPost]
	err := s.get(ctx, "/blog/slug/"+url.PathEscape(slug), nil, &out)
	return out, err
}

// Statuses lists the blog post statuses.
func (s *BlogService) Statuses(ctx context.Context) (models.Response[[]models.Option], error) {
	var out models.Response[[]models.Option]
	err := s.get(ctx, "/blog/statuses", nil, &out)
	return out, err
}

// Stats fetches the blog post statistics.
func (s *BlogService) Stats(ctx context.Context) (models.Response[models.BlogStats], error) {
	var out models.Response[models.BlogStats]
	err := s.get(ctx, "/blog/stats", nil, &out)
	return out, err
}

// Create adds a blog post.
func (s *BlogService) Create(ctx context.Context, in models.PostInput) (models.Response[models.BlogPost], error) {
	var out models.Response[models.BlogPost]
	err := s.post(ctx, blogPath, in, &out)
	return out, err
}

// Update changes the blog post with id.
func (s *BlogService) Update(ctx context.Context, id int, in models.PostInput) (models.Response[models.BlogPost], error) {
	var out models.Response[models.BlogPost]
	err := s.put(ctx, itemPath(blogPath, id), in, &out)
	return out, err
}

// Delete removes the blog post with id.
func (s *BlogService) Delete(ctx context.Context, id int) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.delete(ctx, itemPath(blogPath, id), &out)
	return out, err
}

// Like adds one like to a post.
func (s *BlogService) Like(ctx context.Context, id int) (models.Response[models.LikeResult], error) {
	var out models.Response[models.LikeResult]
	err := s.post(ctx, itemPath(blogPath, id)+"/like", nil, &out)
	return out, err
}
