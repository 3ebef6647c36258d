package memory

import (
	"context"
	"sync"

	"gincana-service/internal/domain"
)

// TeamStore is an in-memory implementation of app.TeamRepository.
type TeamStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Team
}

func NewTeamStore() *TeamStore {
	return &TeamStore{byID: make(map[string]domain.Team)}
}

func (s *TeamStore) List(_ context.Context) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Team, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *TeamStore) Get(_ context.Context, id string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return t, nil
}

func (s *TeamStore) Create(_ context.Context, t domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[t.ID]; exists {
		return domain.Validationf("team id %q already exists", t.ID)
	}
	s.byID[t.ID] = t
	s.order = append(s.order, t.ID)
	return nil
}

func (s *TeamStore) Update(_ context.Context, t domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[t.ID]; !ok {
		return domain.ErrTeamNotFound
	}
	s.byID[t.ID] = t
	return nil
}

func (s *TeamStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrTeamNotFound
	}
	delete(s.byID, id)
	s.order = removeID(s.order, id)
	return nil
}

func (s *TeamStore) ReplaceAll(_ context.Context, ts []domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]domain.Team, len(ts))
	s.order = make([]string, 0, len(ts))
	for _, t := range ts {
		s.byID[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	return nil
}
