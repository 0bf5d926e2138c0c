package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	teams    repository.TeamRepo
	schedule ScheduleService
}

func NewProjectService(projects repository.ProjectRepo, teams repository.TeamRepo, schedule ScheduleService) ProjectService {
	return &projectService{projects: projects, teams: teams, schedule: schedule}
}

func (s *projectService) validate(ctx context.Context, p *domain.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name is required: %w", domain.ErrInvalidInput)
	}
	if err := p.ValidateShortID(); err != nil {
		return err
	}
	if p.TeamID != nil {
		if _, err := s.teams.GetByID(ctx, *p.TeamID); err != nil {
			return err
		}
	}
	return nil
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.ShortID = strings.ToUpper(strings.TrimSpace(p.ShortID))
	if err := s.validate(ctx, p); err != nil {
		return err
	}
	if p.StartDate != nil {
		p.StartDate = domain.DatePtr(*p.StartDate)
	}
	p.ActualExpectedEndDate = nil
	now := nowUTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.projects.Create(ctx, p)
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

// Resolve accepts a short ID in any case or a full project ID.
func (s *projectService) Resolve(ctx context.Context, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	p, err := s.projects.GetByShortID(ctx, strings.ToUpper(ref))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProjectNotFound) {
		return nil, err
	}
	return s.projects.GetByID(ctx, ref)
}

func (s *projectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

// Update saves the project and recalculates it when its start date or team
// changed, since both feed every assignee's calendar.
func (s *projectService) Update(ctx context.Context, p *domain.Project) error {
	current, err := s.projects.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.ShortID = strings.ToUpper(strings.TrimSpace(p.ShortID))
	if err := s.validate(ctx, p); err != nil {
		return err
	}
	if p.StartDate != nil {
		p.StartDate = domain.DatePtr(*p.StartDate)
	}
	p.UpdatedAt = nowUTC()
	if err := s.projects.Update(ctx, p); err != nil {
		return err
	}

	if domain.SameDatePtr(current.StartDate, p.StartDate) && sameString(current.TeamID, p.TeamID) {
		return nil
	}
	if _, err := s.schedule.RecalculateProject(ctx, p.ID); err != nil {
		return fmt.Errorf("project %s saved, scheduling failed: %w", p.DisplayID(), err)
	}
	return nil
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
