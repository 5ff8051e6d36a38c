package resourcecache

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/services"
)

var _ services.Projects = (*CachedProjects)(nil)

var projectWrites = []string{FamilyProjects, FamilyProjectsStats, FamilyProjectStatuses}

// CachedProjects decorates a Projects service with the query cache.
type CachedProjects struct {
	decorator
	base services.Projects
}

// NewProjects wraps base with the query cache.
func NewProjects(base services.Projects, cacheService cache.CacheService, logger *zap.Logger) *CachedProjects {
	return &CachedProjects{decorator: newDecorator(cacheService, logger), base: base}
}

// List serves a page of projects from the query cache.
func (c *CachedProjects) List(ctx context.Context, opts models.ProjectListOptions) (models.Response[models.Page[models.Project]], error) {
	return read(ctx, c.decorator, cache.Key(FamilyProjects, opts), func(ctx context.Context) (models.Response[models.Page[models.Project]], error) {
		return c.base.List(ctx, opts)
	})
}

// Get serves one project from the query cache.
func (c *CachedProjects) Get(ctx context.Context, id int) (models.Response[models.Project], error) {
	return read(ctx, c.decorator, cache.Key(FamilyProject, id), func(ctx context.Context) (models.Response[models.Project], error) {
		return c.base.Get(ctx, id)
	})
}

// Statuses serves the project statuses from the query cache.
func (c *CachedProjects) Statuses(ctx context.Context) (models.Response[[]models.Option], error) {
	return read(ctx, c.decorator, cache.Key(FamilyProjectStatuses), c.base.Statuses)
}

// Stats serves the project statistics from the query cache.
func (c *CachedProjects) Stats(ctx context.Context) (models.Response[models.ProjectStats], error) {
	return read(ctx, c.decorator, cache.Key(FamilyProjectsStats), c.base.Stats)
}

// Create adds a project and invalidates the project families.
func (c *CachedProjects) Create(ctx context.Context, in models.ProjectInput) (models.Response[models.Project], error) {
	result, err := c.base.Create(ctx, in)
	if err == nil {
		c.invalidate(ctx, projectWrites)
	}
	return result, err
}

// Update changes a project and invalidates the project families.
func (c *CachedProjects) Update(ctx context.Context, id int, in models.ProjectInput) (models.Response[models.Project], error) {
	result, err := c.base.Update(ctx, id, in)
	if err == nil {
		c.invalidate(ctx, projectWrites, cache.Key(FamilyProject, id))
	}
	return result, err
}

// Delete removes a project and invalidates the project families.
func (c *CachedProjects) Delete(ctx context.Context, id int) (models.Response[models.Ack], error) {
	result, err := c.base.Delete(ctx, id)
	if err == nil {
		c.invalidate(ctx, projectWrites, cache.Key(FamilyProject, id))
	}
	return result, err
}
