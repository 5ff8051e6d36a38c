package resourcecache

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/services"
)

var _ services.Blog = (*CachedBlog)(nil)

// A post is cached under both its id and its slug, and a write only knows
// one of them, so writes drop the whole blog-post family.
var (
	postWrites = []string{FamilyBlogPosts, FamilyBlogPost, FamilyBlogStats, FamilyPostStatuses}
	postLikes  = []string{FamilyBlogPosts, FamilyBlogPost, FamilyBlogStats}
)

// CachedBlog decorates a Blog service with the query cache.
type CachedBlog struct {
	decorator
	base services.Blog
}

// NewBlog wraps base with the query cache.
func NewBlog(base services.Blog, cacheService cache.CacheService, logger *zap.Logger) *CachedBlog {
	return &CachedBlog{decorator: newDecorator(cacheService, logger), base: base}
}

// List serves a page of posts from the query cache.
func (c *CachedBlog) List(ctx context.Context, opts models.PostListOptions) (models.Response[models.Page[models.BlogPost]], error) {
	return read(ctx, c.decorator, cache.Key(FamilyBlogPosts, opts), func(ctx context.Context) (models.Response[models.Page[models.BlogPost]], error) {
		return c.base.List(ctx, opts)
	})
}

// Get serves one post from the query cache.
func (c *CachedBlog) Get(ctx context.Context, id int) (models.Response[models.BlogPost], error) {
	return read(ctx, c.decorator, cache.Key(FamilyBlogPost, id), func(ctx context.Context) (models.Response[models.BlogPost], error) {
		return c.base.Get(ctx, id)
	})
}

// GetBySlug serves a post by slug from the query cache.
func (c *CachedBlog) GetBySlug(ctx context.Context, slug string) (models.Response[models.BlogPost], error) {
	return read(ctx, c.decorator, cache.Key(FamilyBlogPost, "slug", slug), func(ctx context.Context) (models.Response[models.BlogPost], error) {
		return c.base.GetBySlug(ctx, slug)
	})
}

// Statuses serves the post statuses from the query cache.
func (c *CachedBlog) Statuses(ctx context.Context) (models.Response[[]models.Option], error) {
	return read(ctx, c.decorator, cache.Key(FamilyPostStatuses), c.base.Statuses)
}

// Stats serves the post statistics from the query cache.
func (c *CachedBlog) Stats(ctx context.Context) (models.Response[models.BlogStats], error) {
	return read(ctx, c.decorator, cache.Key(FamilyBlogStats), c.base.Stats)
}

// Create adds a post and invalidates the post families.
func (c *CachedBlog) Create(ctx context.Context, in models.PostInput) (models.Response[models.BlogPost], error) {
	result, err := c.base.Create(ctx, in)
	if err == nil {
		c.invalidate(ctx, postWrites)
	}
	return result, err
}

// Update changes a post and invalidates the post families.
func (c *CachedBlog) Update(ctx context.Context, id int, in models.PostInput) (models.Response[models.BlogPost], error) {
	result, err := c.base.Update(ctx, id, in)
	if err == nil {
		c.invalidate(ctx, postWrites)
	}
	return result, err
}

// Delete removes a post and invalidates the post families.
func (c *CachedBlog) Delete(ctx context.Context, id int) (models.Response[models.Ack], error) {
	result, err := c.base.Delete(ctx, id)
	if err == nil {
		c.invalidate(ctx, postWrites)
	}
	return result, err
}

// Like records a like and invalidates the post reads that show the count.
func (c *CachedBlog) Like(ctx context.Context, id int) (models.Response[models.LikeResult], error) {
	result, err := c.base.Like(ctx, id)
	if err == nil {
		c.invalidate(ctx, postLikes)
	}
	return result, err
}
