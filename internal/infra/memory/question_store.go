package memory

import (
	"context"
	"sync"

	"gincana-service/internal/domain"
)

// QuestionStore is an in-memory implementation of app.QuestionRepository.
type QuestionStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Question
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{byID: make(map[string]domain.Question)}
}

func (s *QuestionStore) List(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneQuestion(s.byID[id]))
	}
	return out, nil
}

func (s *QuestionStore) Get(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.byID[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

func (s *QuestionStore) Create(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[q.ID]; exists {
		return domain.Validationf("question id %q already exists", q.ID)
	}
	s.byID[q.ID] = cloneQuestion(q)
	s.order = append(s.order, q.ID)
	return nil
}

func (s *QuestionStore) Update(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[q.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.byID[q.ID] = cloneQuestion(q)
	return nil
}

func (s *QuestionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.byID, id)
	s.order = removeID(s.order, id)
	return nil
}

func (s *QuestionStore) ReplaceAll(_ context.Context, qs []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]domain.Question, len(qs))
	s.order = make([]string, 0, len(qs))
	for _, q := range qs {
		s.byID[q.ID] = cloneQuestion(q)
		s.order = append(s.order, q.ID)
	}
	return nil
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
