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

type teamService struct {
	teams    repository.TeamRepo
	projects repository.ProjectRepo
	schedule ScheduleService
}

func NewTeamService(teams repository.TeamRepo, projects repository.ProjectRepo, schedule ScheduleService) TeamService {
	return &teamService{teams: teams, projects: projects, schedule: schedule}
}

func (s *teamService) Create(ctx context.Context, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("team name is required: %w", domain.ErrInvalidInput)
	}
	t := &domain.Team{ID: uuid.New().String(), Name: name, CreatedAt: nowUTC()}
	if err := s.teams.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Resolve accepts a team name or ID.
func (s *teamService) Resolve(ctx context.Context, ref string) (*domain.Team, error) {
	t, err := s.teams.GetByName(ctx, ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, domain.ErrTeamNotFound) {
		return nil, err
	}
	return s.teams.GetByID(ctx, ref)
}

func (s *teamService) List(ctx context.Context) ([]*domain.Team, error) {
	return s.teams.List(ctx)
}

// SetMember stores the member's capacity and recalculates the member's work
// in every project owned by the team.
func (s *teamService) SetMember(ctx context.Context, m *domain.TeamMember) error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("user is required: %w", domain.ErrInvalidInput)
	}
	if err := m.Capacity.Validate(); err != nil {
		return err
	}
	if _, err := s.teams.GetByID(ctx, m.TeamID); err != nil {
		return err
	}
	now := nowUTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if m.DisplayName == "" {
		m.DisplayName = m.UserID
	}
	if err := s.teams.UpsertMember(ctx, m); err != nil {
		return err
	}

	projects, err := s.projects.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range projects {
		if p.TeamID == nil || *p.TeamID != m.TeamID {
			continue
		}
		ref := AssigneeRef{ProjectID: p.ID, AssigneeID: m.UserID}
		if err := s.schedule.Reconcile(ctx, Impact{ProjectID: p.ID, Assignees: []AssigneeRef{ref}}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *teamService) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	return s.teams.ListMembers(ctx, teamID)
}
