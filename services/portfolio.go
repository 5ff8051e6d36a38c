package services

import (
	"context"

	"github.com/goliatone/go-portfolio-client/models"
)

const (
	educationPath  = "/portfolio/education"
	experiencePath = "/portfolio/experience"
	interestsPath  = "/portfolio/interests"
)

// Portfolio covers the education, experience and interests sections plus
// the aggregated summary. The API exposes no delete operation for them.
type Portfolio interface {
	ListEducation(ctx context.Context) (models.Response[[]models.Education], error)
	GetEducation(ctx context.Context, id int) (models.Response[models.Education], error)
	CreateEducation(ctx context.Context, in models.EducationInput) (models.Response[models.Education], error)
	UpdateEducation(ctx context.Context, id int, in models.EducationInput) (models.Response[models.Education], error)

	ListExperience(ctx context.Context) (models.Response[[]models.WorkExperience], error)
	GetExperience(ctx context.Context, id int) (models.Response[models.WorkExperience], error)
	CreateExperience(ctx context.Context, in models.ExperienceInput) (models.Response[models.WorkExperience], error)
	UpdateExperience(ctx context.Context, id int, in models.ExperienceInput) (models.Response[models.WorkExperience], error)

	ListInterests(ctx context.Context, opts models.InterestListOptions) (models.Response[[]models.Interest], error)
	GetInterest(ctx context.Context, id int) (models.Response[models.Interest], error)
	InterestCategories(ctx context.Context) (models.Response[[]models.Option], error)
	CreateInterest(ctx context.Context, in models.InterestInput) (models.Response[models.Interest], error)
	UpdateInterest(ctx context.Context, id int, in models.InterestInput) (models.Response[models.Interest], error)

	Summary(ctx context.Context) (models.Response[models.PortfolioSummary], error)
}

// PortfolioService implements Portfolio over the HTTP client.
type PortfolioService struct {
	caller
}

var _ Portfolio = (*PortfolioService)(nil)

// NewPortfolio returns a PortfolioService calling api.
func NewPortfolio(api API) *PortfolioService {
	return &PortfolioService{caller{api: api}}
}

// ListEducation fetches every education entry.
func (s *PortfolioService) ListEducation(ctx context.Context) (models.Response[[]models.Education], error) {
	var out models.Response[[]models.Education]
	err := s.get(ctx, educationPath, nil, &out)
	return out, err
}

// GetEducation fetches one education entry.
func (s *PortfolioService) GetEducation(ctx context.Context, id int) (models.Response[models.Education], error) {
	var out models.Response[models.Education]
	err := s.get(ctx, itemPath(educationPath, id), nil, &out)
	return out, err
}

// CreateEducation adds an education entry.
func (s *PortfolioService) CreateEducation(ctx context.Context, in models.EducationInput) (models.Response[models.Education], error) {
	var out models.Response[models.Education]
	err := s.post(ctx, educationPath, in, &out)
	return out, err
}

// UpdateEducation changes an education entry.
func (s *PortfolioService) UpdateEducation(ctx context.Context, id int, in models.EducationInput) (models.Response[models.Education], error) {
	var out models.Response[models.Education]
	err := s.put(ctx, itemPath(educationPath, id), in, &out)
	return out, err
}

// ListExperience fetches every work experience entry.
func (s *PortfolioService) ListExperience(ctx context.Context) (models.Response[[]models.WorkExperience], error) {
	var out models.Response[[]models.WorkExperience]
	err := s.get(ctx, experiencePath, nil, &out)
	return out, err
}

// GetExperience fetches one work experience entry.
func (s *PortfolioService) GetExperience(ctx context.Context, id int) (models.Response[models.WorkExperience], error) {
	var out models.Response[models.WorkExperience]
	err := s.get(ctx, itemPath(experiencePath, id), nil, &out)
	return out, err
}

// CreateExperience adds a work experience entry.
func (s *PortfolioService) CreateExperience(ctx context.Context, in models.ExperienceInput) (models.Response[models.WorkExperience], error) {
	var out models.Response[models.WorkExperience]
	err := s.post(ctx, experiencePath, in, &out)
	return out, err
}

// UpdateExperience changes a work experience entry.
func (s *PortfolioService) UpdateExperience(ctx context.Context, id int, in models.ExperienceInput) (models.Response[models.WorkExperience], error) {
	var out models.Response[models.WorkExperience]
	err := s.put(ctx, itemPath(experiencePath, id), in, &out)
	return out, err
}

// ListInterests fetches the interests matching opts.
func (s *PortfolioService) ListInterests(ctx context.Context, opts models.InterestListOptions) (models.Response[[]models.Interest], error) {
	var out models.Response[[]models.Interest]
	err := s.get(ctx, interestsPath, opts, &out)
	return out, err
}

// GetInterest fetches one interest.
func (s *PortfolioService) GetInterest(ctx context.Context, id int) (models.Response[models.Interest], error) {
	var out models.Response[models.Interest]
	err := s.get(ctx, itemPath(interestsPath, id), nil, &out)
	return out, err
}

// InterestCategories lists the interest categories.
func (s *PortfolioService) InterestCategories(ctx context.Context) (models.Response[[]models.Option], error) {
	var out models.Response[[]models.Option]
	err := s.get(ctx, interestsPath+"/categories", nil, &out)
	return out, err
}

// CreateInterest adds an interest.
func (s *PortfolioService) CreateInterest(ctx context.Context, in models.InterestInput) (models.Response[models.Interest], error) {
	var out models.Response[models.Interest]
	err := s.post(ctx, interestsPath, in, &out)
	return out, err
}

// UpdateInterest changes an interest.
func (s *PortfolioService) UpdateInterest(ctx context.Context, id int, in models.InterestInput) (models.Response[models.Interest], error) {
	var out models.Response[models.Interest]
	err := s.put(ctx, itemPath(interestsPath, id), in, &out)
	return out, err
}

// Summary fetches the aggregated portfolio counts.
func (s *PortfolioService) Summary(ctx context.Context) (models.Response[models.PortfolioSummary], error) {
	var out models.Response[models.PortfolioSummary]
	err := s.get(ctx, "/portfolio/summary", nil, &out)
	return out, err
}
