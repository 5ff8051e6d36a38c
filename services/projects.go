package services

import (
	"context"

	"github.com/goliatone/go-portfolio-client/models"
)

const projectsPath = "/projects/"

// Projects is the projects part of the API.
type Projects interface {
	List(ctx context.Context, opts models.ProjectListOptions) (models.Response[models.Page[models.Project]], error)
	Get(ctx context.Context, id int) (models.Response[models.Project], error)
	Statuses(ctx context.Context) (models.Response[[]models.Option], error)
	Stats(ctx context.Context) (models.Response[models.ProjectStats], error)
	Create(ctx context.Context, in models.ProjectInput) (models.Response[models.Project], error)
	Update(ctx context.Context, id int, in models.ProjectInput) (models.Response[models.Project], error)
	Delete(ctx context.Context, id int) (models.Response[models.Ack], error)
}

// ProjectsService implements Projects over the HTTP client.
type ProjectsService struct {
	caller
}

var _ Projects = (*ProjectsService)(nil)

// NewProjects returns a ProjectsService calling api.
func NewProjects(api API) *ProjectsService {
	return &ProjectsService{caller{api: api}}
}

// List fetches a page of projects matching opts.
func (s *ProjectsService) List(ctx context.Context, opts models.ProjectListOptions) (models.Response[models.Page[models.Project]], error) {
	var out models.Response[models.Page[models.Project]]
	err := s.get(ctx, projectsPath, opts, &out)
	return out, err
}

// Get fetches one project by id.
func (s *ProjectsService) Get(ctx context.Context, id int) (models.Response[models.Project], error) {
	var out models.Response[models.Project]
	err := s.get(ctx, itemPath(projectsPath, id), nil, &out)
	return out, err
}

// Statuses lists the project statuses.
func (s *ProjectsService) Statuses(ctx context.Context) (models.Response[[]models.Option], error) {
	var out models.Response[[]models.Option]
	err := s.get(ctx, "/projects/statuses", nil, &out)
	return out, err
}

// Stats fetches the project statistics.
func (s *ProjectsService) Stats(ctx context.Context) (models.Response[models.ProjectStats], error) {
	var out models.Response[models.ProjectStats]
	err := s.get(ctx, "/projects/stats", nil, &out)
	return out, err
}

// Create adds a project.
func (s *ProjectsService) Create(ctx context.Context, in models.ProjectInput) (models.Response[models.Project], error) {
	var out models.Response[models.Project]
	err := s.post(ctx, projectsPath, in, &out)
	return out, err
}

// Update changes the project with id.
func (s *ProjectsService) Update(ctx context.Context, id int, in models.ProjectInput) (models.Response[models.Project], error) {
	var out models.Response[models.Project]
	err := s.put(ctx, itemPath(projectsPath, id), in, &out)
	return out, err
}

// Delete removes the project with id.
func (s *ProjectsService) Delete(ctx context.Context, id int) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.delete(ctx, itemPath(projectsPath, id), &out)
	return out, err
}
