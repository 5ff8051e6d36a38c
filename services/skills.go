package services

import (
	"context"

	"github.com/goliatone/go-portfolio-client/models"
)

const skillsPath = "/skills/"

// Skills is the skills part of the API.
type Skills interface {
	List(ctx context.Context, opts models.SkillListOptions) (models.Response[models.Page[models.Skill]], error)
	Get(ctx context.Context, id int) (models.Response[models.Skill], error)
	Categories(ctx context.Context) (models.Response[[]models.Option], error)
	Stats(ctx context.Context) (models.Response[models.SkillStats], error)
	Create(ctx context.Context, in models.SkillInput) (models.Response[models.Skill], error)
	Update(ctx context.Context, id int, in models.SkillInput) (models.Response[models.Skill], error)
	Delete(ctx context.Context, id int) (models.Response[models.Ack], error)
}

// SkillsService implements Skills over the HTTP client.
type SkillsService struct {
	caller
}

var _ Skills = (*SkillsService)(nil)

// NewSkills returns a SkillsService calling api.
func NewSkills(api API) *SkillsService {
	return &SkillsService{caller{api: api}}
}

// List fetches a page of skills matching opts.
func (s *SkillsService) List(ctx context.Context, opts models.SkillListOptions) (models.Response[models.Page[models.Skill]], error) {
	var out models.Response[models.Page[models.Skill]]
	err := s.get(ctx, skillsPath, opts, &out)
	return out, err
}

// Get fetches one skill by id.
func (s *SkillsService) Get(ctx context.Context, id int) (models.Response[models.Skill], error) {
	var out models.Response[models.Skill]
	err := s.get(ctx, itemPath(skillsPath, id), nil, &out)
	return out, err
}

// Categories lists the skill categories.
func (s *SkillsService) Categories(ctx context.Context) (models.Response[[]models.Option], error) {
	var out models.Response[[]models.Option]
	err := s.get(ctx, "/skills/categories", nil, &out)
	return out, err
}

// Stats fetches the skill statistics.
func (s *SkillsService) Stats(ctx context.Context) (models.Response[models.SkillStats], error) {
	var out models.Response[models.SkillStats]
	err := s.get(ctx, "/skills/stats", nil, &out)
	return out, err
}

// Create adds a skill.
func (s *SkillsService) Create(ctx context.Context, in models.SkillInput) (models.Response[models.Skill], error) {
	var out models.Response[models.Skill]
	err := s.post(ctx, skillsPath, in, &out)
	return out, err
}

// Update changes the skill with id.
func (s *SkillsService) Update(ctx context.Context, id int, in models.SkillInput) (models.Response[models.Skill], error) {
	var out models.Response[models.Skill]
	err := s.put(ctx, itemPath(skillsPath, id), in, &out)
	return out, err
}

// Delete removes the skill with id.
func (s *SkillsService) Delete(ctx context.Context, id int) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.delete(ctx, itemPath(skillsPath, id), &out)
	return out, err
}
