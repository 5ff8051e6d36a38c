package resourcecache

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/services"
)

var _ services.Skills = (*CachedSkills)(nil)

// skillWrites lists the families every skill write touches. Categories
// carry per-category counts, so they move with the list.
var skillWrites = []string{FamilySkills, FamilySkillsStats, FamilySkillCategories}

// CachedSkills decorates a Skills service with the query cache.
type CachedSkills struct {
	decorator
	base services.Skills
}

// NewSkills wraps base with the query cache.
func NewSkills(base services.Skills, cacheService cache.CacheService, logger *zap.Logger) *CachedSkills {
	return &CachedSkills{decorator: newDecorator(cacheService, logger), base: base}
}

// List serves a page of skills from the query cache.
func (c *CachedSkills) List(ctx context.Context, opts models.SkillListOptions) (models.Response[models.Page[models.Skill]], error) {
	return read(ctx, c.decorator, cache.Key(FamilySkills, opts), func(ctx context.Context) (models.Response[models.Page[models.Skill]], error) {
		return c.base.List(ctx, opts)
	})
}

// Get serves one skill from the query cache.
func (c *CachedSkills) Get(ctx context.Context, id int) (models.Response[models.Skill], error) {
	return read(ctx, c.decorator, cache.Key(FamilySkill, id), func(ctx context.Context) (models.Response[models.Skill], error) {
		return c.base.Get(ctx, id)
	})
}

// Categories serves the skill categories from the query cache.
func (c *CachedSkills) Categories(ctx context.Context) (models.Response[[]models.Option], error) {
	return read(ctx, c.decorator, cache.Key(FamilySkillCategories), c.base.Categories)
}

// Stats serves the skill statistics from the query cache.
func (c *CachedSkills) Stats(ctx context.Context) (models.Response[models.SkillStats], error) {
	return read(ctx, c.decorator, cache.Key(FamilySkillsStats), c.base.Stats)
}

// Create adds a skill and invalidates the skill families.
func (c *CachedSkills) Create(ctx context.Context, in models.SkillInput) (models.Response[models.Skill], error) {
	result, err := c.base.Create(ctx, in)
	if err == nil {
		c.invalidate(ctx, skillWrites)
	}
	return result, err
}

// Update changes a skill and invalidates the skill families.
func (c *CachedSkills) Update(ctx context.Context, id int, in models.SkillInput) (models.Response[models.Skill], error) {
	result, err := c.base.Update(ctx, id, in)
	if err == nil {
		c.invalidate(ctx, skillWrites, cache.Key(FamilySkill, id))
	}
	return result, err
}

// Delete removes a skill and invalidates the skill families.
func (c *CachedSkills) Delete(ctx context.Context, id int) (models.Response[models.Ack], error) {
	result, err := c.base.Delete(ctx, id)
	if err == nil {
		c.invalidate(ctx, skillWrites, cache.Key(FamilySkill, id))
	}
	return result, err
}
