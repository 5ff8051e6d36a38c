package resourcecache

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/services"
)

var _ services.Portfolio = (*CachedPortfolio)(nil)

// Every section feeds the summary.
var (
	educationWrites  = []string{FamilyEducation, FamilyPortfolioSummary}
	experienceWrites = []string{FamilyWorkExperience, FamilyPortfolioSummary}
	interestWrites   = []string{FamilyInterests, FamilyInterestCategories, FamilyPortfolioSummary}
)

// CachedPortfolio decorates a Portfolio service. Education and experience
// entries share the family of their section list.
type CachedPortfolio struct {
	decorator
	base services.Portfolio
}

// NewPortfolio wraps base with the query cache.
func NewPortfolio(base services.Portfolio, cacheService cache.CacheService, logger *zap.Logger) *CachedPortfolio {
	return &CachedPortfolio{decorator: newDecorator(cacheService, logger), base: base}
}

// ListEducation serves the education entries from the query cache.
func (c *CachedPortfolio) ListEducation(ctx context.Context) (models.Response[[]models.Education], error) {
	return read(ctx, c.decorator, cache.Key(FamilyEducation), c.base.ListEducation)
}

// GetEducation serves one education entry from the query cache.
func (c *CachedPortfolio) GetEducation(ctx context.Context, id int) (models.Response[models.Education], error) {
	return read(ctx, c.decorator, cache.Key(FamilyEducation, id), func(ctx context.Context) (models.Response[models.Education], error) {
		return c.base.GetEducation(ctx, id)
	})
}

// CreateEducation adds an entry and invalidates education and the summary.
func (c *CachedPortfolio) CreateEducation(ctx context.Context, in models.EducationInput) (models.Response[models.Education], error) {
	result, err := c.base.CreateEducation(ctx, in)
	if err == nil {
		c.invalidate(ctx, educationWrites)
	}
	return result, err
}

// UpdateEducation changes an entry and invalidates education and the summary.
func (c *CachedPortfolio) UpdateEducation(ctx context.Context, id int, in models.EducationInput) (models.Response[models.Education], error) {
	result, err := c.base.UpdateEducation(ctx, id, in)
	if err == nil {
		c.invalidate(ctx, educationWrites)
	}
	return result, err
}

// ListExperience serves the experience entries from the query cache.
func (c *CachedPortfolio) ListExperience(ctx context.Context) (models.Response[[]models.WorkExperience], error) {
	return read(ctx, c.decorator, cache.Key(FamilyWorkExperience), c.base.ListExperience)
}

// GetExperience serves one experience entry from the query cache.
func (c *CachedPortfolio) GetExperience(ctx context.Context, id int) (models.Response[models.WorkExperience], error) {
	return read(ctx, c.decorator, cache.Key(FamilyWorkExperience, id), func(ctx context.Context) (models.Response[models.WorkExperience], error) {
		return c.base.GetExperience(ctx, id)
	})
}

// CreateExperience adds an entry and invalidates experience and the summary.
func (c *CachedPortfolio) CreateExperience(ctx context.Context, in models.ExperienceInput) (models.Response[models.WorkExperience], error) {
	result, err := c.base.CreateExperience(ctx, in)
	if err == nil {
		c.invalidate(ctx, experienceWrites)
	}
	return result, err
}

// UpdateExperience changes an entry and invalidates experience and the summary.
func (c *CachedPortfolio) UpdateExperience(ctx context.Context, id int, in models.ExperienceInput) (models.Response[models.WorkExperience], error) {
	result, err := c.base.UpdateExperience(ctx, id, in)
	if err == nil {
		c.invalidate(ctx, experienceWrites)
	}
	return result, err
}

// ListInterests serves the interests matching opts from the query cache.
func (c *CachedPortfolio) ListInterests(ctx context.Context, opts models.InterestListOptions) (models.Response[[]models.Interest], error) {
	return read(ctx, c.decorator, cache.Key(FamilyInterests, opts), func(ctx context.Context) (models.Response[[]models.Interest], error) {
		return c.base.ListInterests(ctx, opts)
	})
}

// GetInterest serves one interest from the query cache.
func (c *CachedPortfolio) GetInterest(ctx context.Context, id int) (models.Response[models.Interest], error) {
	return read(ctx, c.decorator, cache.Key(FamilyInterest, id), func(ctx context.Context) (models.Response[models.Interest], error) {
		return c.base.GetInterest(ctx, id)
	})
}

// InterestCategories serves the interest categories from the query cache.
func (c *CachedPortfolio) InterestCategories(ctx context.Context) (models.Response[[]models.Option], error) {
	return read(ctx, c.decorator, cache.Key(FamilyInterestCategories), c.base.InterestCategories)
}

// CreateInterest adds an interest and invalidates interests and the summary.
func (c *CachedPortfolio) CreateInterest(ctx context.Context, in models.InterestInput) (models.Response[models.Interest], error) {
	result, err := c.base.CreateInterest(ctx, in)
	if err == nil {
		c.invalidate(ctx, interestWrites)
	}
	return result, err
}

// UpdateInterest changes an interest and invalidates interests and the summary.
func (c *CachedPortfolio) UpdateInterest(ctx context.Context, id int, in models.InterestInput) (models.Response[models.Interest], error) {
	result, err := c.base.UpdateInterest(ctx, id, in)
	if err == nil {
		c.invalidate(ctx, interestWrites, cache.Key(FamilyInterest, id))
	}
	return result, err
}

// Summary serves the portfolio summary from the query cache.
func (c *CachedPortfolio) Summary(ctx context.Context) (models.Response[models.PortfolioSummary], error) {
	return read(ctx, c.decorator, cache.Key(FamilyPortfolioSummary), c.base.Summary)
}
