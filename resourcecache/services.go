package resourcecache

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/localcache"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/services"
)

// Options configures Wrap.
type Options struct {
	// Local holds the profile and the contact card snapshot. Nil disables both.
	Local  *localcache.Cache
	Logger *zap.Logger
	// Keys renders query keys. Nil uses the default serializer.
	Keys cache.KeySerializer
}

// Services is a services.Set with every member decorated, plus the
// operations that span families.
type Services struct {
	Auth      *CachedAuth
	Skills    *CachedSkills
	Projects  *CachedProjects
	Blog      *CachedBlog
	Contact   *CachedContact
	Portfolio *CachedPortfolio
	Uploads   *CachedUploads

	cache  cache.CacheService
	local  *localcache.Cache
	logger *zap.Logger
}

// Stats reports both caches.
type Stats struct {
	Query cache.Stats      `json:"query"`
	Local localcache.Stats `json:"local"`
}

// Wrap decorates every member of set with the query cache.
func Wrap(set services.Set, cacheService cache.CacheService, opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("resourcecache")

	s := &Services{
		Auth:      NewAuth(set.Auth, cacheService, opts.Local, logger),
		Skills:    NewSkills(set.Skills, cacheService, logger),
		Projects:  NewProjects(set.Projects, cacheService, logger),
		Blog:      NewBlog(set.Blog, cacheService, logger),
		Contact:   NewContact(set.Contact, cacheService, opts.Local, logger),
		Portfolio: NewPortfolio(set.Portfolio, cacheService, logger),
		Uploads:   NewUploads(set.Uploads, cacheService, logger),
		cache:     cacheService,
		local:     opts.Local,
		logger:    logger,
	}

	if opts.Keys != nil {
		for _, d := range []*decorator{
			&s.Auth.decorator, &s.Skills.decorator, &s.Projects.decorator, &s.Blog.decorator,
			&s.Contact.decorator, &s.Portfolio.decorator, &s.Uploads.decorator,
		} {
			d.keys = opts.Keys
		}
	}
	return s
}

// Set returns the decorated services behind their interfaces.
func (s *Services) Set() services.Set {
	return services.Set{
		Auth:      s.Auth,
		Skills:    s.Skills,
		Projects:  s.Projects,
		Blog:      s.Blog,
		Contact:   s.Contact,
		Portfolio: s.Portfolio,
		Uploads:   s.Uploads,
	}
}

// Warm fetches the unfiltered read of each family into the query cache,
// concurrently. Without families it warms CriticalFamilies.
func (s *Services) Warm(ctx context.Context, families ...string) error {
	if len(families) == 0 {
		families = CriticalFamilies
	}

	warmers := s.warmers()
	for _, family := range families {
		if _, ok := warmers[family]; !ok {
			return fmt.Errorf("resourcecache: family %q cannot be warmed", family)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, family := range families {
		warm := warmers[family]
		g.Go(func() error {
			if err := warm(ctx); err != nil {
				return fmt.Errorf("warm %s: %w", family, err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		s.logger.Debug("query cache warmed", zap.Strings("families", families))
	}
	return err
}

// Warmable lists the families Warm accepts.
func (s *Services) Warmable() []string {
	warmers := s.warmers()
	out := make([]string, 0, len(warmers))
	for _, family := range AllFamilies() {
		if _, ok := warmers[family]; ok {
			out = append(out, family)
		}
	}
	return out
}

func (s *Services) warmers() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		FamilySkills: func(ctx context.Context) error {
			_, err := s.Skills.List(ctx, models.SkillListOptions{})
			return err
		},
		FamilySkillCategories: func(ctx context.Context) error {
			_, err := s.Skills.Categories(ctx)
			return err
		},
		FamilyProjects: func(ctx context.Context) error {
			_, err := s.Projects.List(ctx, models.ProjectListOptions{})
			return err
		},
		FamilyProjectStatuses: func(ctx context.Context) error {
			_, err := s.Projects.Statuses(ctx)
			return err
		},
		FamilyBlogPosts: func(ctx context.Context) error {
			_, err := s.Blog.List(ctx, models.PostListOptions{})
			return err
		},
		FamilyContactInfo: func(ctx context.Context) error {
			_, err := s.Contact.Info(ctx)
			return err
		},
		FamilyEducation: func(ctx context.Context) error {
			_, err := s.Portfolio.ListEducation(ctx)
			return err
		},
		FamilyWorkExperience: func(ctx context.Context) error {
			_, err := s.Portfolio.ListExperience(ctx)
			return err
		},
		FamilyInterests: func(ctx context.Context) error {
			_, err := s.Portfolio.ListInterests(ctx, models.InterestListOptions{})
			return err
		},
		FamilyPortfolioSummary: func(ctx context.Context) error {
			_, err := s.Portfolio.Summary(ctx)
			return err
		},
	}
}

// Stats returns the counters of both caches.
func (s *Services) Stats(ctx context.Context) Stats {
	var stats Stats
	stats.Query, _ = cache.StatsOf(s.cache)
	if s.local != nil {
		stats.Local = s.local.Stats(ctx)
	}
	return stats
}

// Clear drops every query family and empties the local cache.
func (s *Services) Clear(ctx context.Context) error {
	err := cache.InvalidateFamilies(ctx, s.cache, AllFamilies()...)
	if s.local != nil {
		s.local.Clear(ctx)
	}
	return err
}
