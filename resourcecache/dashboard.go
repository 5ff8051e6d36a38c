package resourcecache

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-portfolio-client/models"
)

// Dashboard gathers the admin statistics of every section.
type Dashboard struct {
	Skills   models.SkillStats   `json:"skills"`
	Projects models.ProjectStats `json:"projects"`
	Blog     models.BlogStats    `json:"blog"`
	Contact  models.ContactStats `json:"contact"`
}

// Dashboard reads the four stats families concurrently through the query
// cache. Any failure fails the whole read.
func (s *Services) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.Skills.Stats(ctx)
		d.Skills = res.Data
		return err
	})
	g.Go(func() error {
		res, err := s.Projects.Stats(ctx)
		d.Projects = res.Data
		return err
	})
	g.Go(func() error {
		res, err := s.Blog.Stats(ctx)
		d.Blog = res.Data
		return err
	})
	g.Go(func() error {
		res, err := s.Contact.Stats(ctx)
		d.Contact = res.Data
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
