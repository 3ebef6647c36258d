package memory

import (
	"context"
	"sync"

	"gincana-service/internal/domain"
)

// MatchStore is an in-memory implementation of app.MatchRepository. A single mutex
// serializes Update, which makes every read-modify-write atomic.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]domain.Match
}

func NewMatchStore() *MatchStore {
	return &MatchStore{matches: make(map[string]domain.Match)}
}

func (s *MatchStore) List(_ context.Context) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (s *MatchStore) Get(_ context.Context, id string) (domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return domain.Match{}, domain.ErrMatchNotFound
	}
	return m.Clone(), nil
}

func (s *MatchStore) Create(_ context.Context, m domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.matches[m.ID]; exists {
		return domain.Validationf("match id %q already exists", m.ID)
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

func (s *MatchStore) Update(_ context.Context, id string, fn func(m *domain.Match) error) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.matches[id]
	if !ok {
		return domain.Match{}, domain.ErrMatchNotFound
	}
	working := current.Clone()
	if err := fn(&working); err != nil {
		return domain.Match{}, err
	}
	s.matches[id] = working.Clone()
	return working, nil
}

func (s *MatchStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return domain.ErrMatchNotFound
	}
	delete(s.matches, id)
	return nil
}

func (s *MatchStore) ReplaceAll(_ context.Context, ms []domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = make(map[string]domain.Match, len(ms))
	for _, m := range ms {
		s.matches[m.ID] = m.Clone()
	}
	return nil
}
