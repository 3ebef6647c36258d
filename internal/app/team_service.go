package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"gincana-service/internal/domain"
)

// TeamPatch updates a team's name and/or color.
type TeamPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// TeamService is the registry of reusable teams.
type TeamService struct {
	repo TeamRepository
	now  func() time.Time
}

func NewTeamService(repo TeamRepository) *TeamService {
	return &TeamService{repo: repo, now: time.Now}
}

func (s *TeamService) Create(ctx context.Context, name, color string) (domain.Team, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateTeamName(name); err != nil {
		return domain.Team{}, err
	}
	team := domain.Team{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, team); err != nil {
		return domain.Team{}, err
	}
	return team, nil
}

func (s *TeamService) List(ctx context.Context) ([]domain.Team, error) {
	return s.repo.List(ctx)
}

func (s *TeamService) Get(ctx context.Context, id string) (domain.Team, error) {
	return s.repo.Get(ctx, id)
}

func (s *TeamService) Update(ctx context.Context, id string, patch TeamPatch) (domain.Team, error) {
	team, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Team{}, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := domain.ValidateTeamName(name); err != nil {
			return domain.Team{}, err
		}
		team.Name = name
	}
	if patch.Color != nil {
		team.Color = *patch.Color
	}
	if err := s.repo.Update(ctx, team); err != nil {
		return domain.Team{}, err
	}
	return team, nil
}

// Delete removes a team from the registry. Matches keep their own frozen copy.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
