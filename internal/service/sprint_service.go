package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/repository"
	"github.com/google/uuid"
)

type sprintService struct {
	sprints  repository.SprintRepo
	projects repository.ProjectRepo
}

func NewSprintService(sprints repository.SprintRepo, projects repository.ProjectRepo) SprintService {
	return &sprintService{sprints: sprints, projects: projects}
}

// Create appends a sprint after the project's existing sprints.
func (s *sprintService) Create(ctx context.Context, projectID, name string) (*domain.Sprint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("sprint name is required: %w", domain.ErrInvalidInput)
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	existing, err := s.sprints.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	position := 0
	for _, sp := range existing {
		if sp.Position >= position {
			position = sp.Position + 1
		}
	}
	sp := &domain.Sprint{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Position:  position,
		Status:    domain.SprintPlanned,
		CreatedAt: nowUTC(),
	}
	if err := s.sprints.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *sprintService) GetByID(ctx context.Context, id string) (*domain.Sprint, error) {
	return s.sprints.GetByID(ctx, id)
}

func (s *sprintService) ListByProject(ctx context.Context, projectID string) ([]*domain.Sprint, error) {
	return s.sprints.ListByProject(ctx, projectID)
}
