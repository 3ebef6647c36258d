package app

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gincana-service/internal/domain"
)

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Inserted int              `json:"inserted"`
	Skipped  int              `json:"skipped"`
	Rejected []ImportRejected `json:"rejected,omitempty"`
}

// ImportRejected points at a batch entry that failed validation.
type ImportRejected struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// QuestionService is the question catalog: filtered listing, random draws and CRUD.
type QuestionService struct {
	repo   QuestionRepository
	logger zerolog.Logger
	now    func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// QuestionServiceOptions tunes randomness and time for deterministic tests.
type QuestionServiceOptions struct {
	Seed int64
	Now  func() time.Time
}

func NewQuestionService(repo QuestionRepository, logger zerolog.Logger, opts QuestionServiceOptions) *QuestionService {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &QuestionService{
		repo:   repo,
		logger: logger.With().Str("component", "questions").Logger(),
		now:    now,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// List returns the questions matching every set field of filter.
func (s *QuestionService) List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]domain.Question, 0, len(all))
	for _, q := range all {
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(q.Text), search) &&
			!strings.Contains(strings.ToLower(q.Reference), search) {
			continue
		}
		out = append(out, q)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *QuestionService) Get(ctx context.Context, id string) (domain.Question, error) {
	return s.repo.Get(ctx, id)
}

// Draw picks uniformly among the questions that pass categoryFilter and are not in
// exclude. It returns domain.ErrExhausted when no candidate is left.
func (s *QuestionService) Draw(ctx context.Context, exclude map[string]struct{}, categoryFilter string) (domain.Question, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return domain.Question{}, err
	}

	candidates := make([]domain.Question, 0, len(all))
	for _, q := range all {
		if _, asked := exclude[q.ID]; asked {
			continue
		}
		if !domain.MatchesFilter(q, categoryFilter) {
			continue
		}
		candidates = append(candidates, q)
	}
	if len(candidates) == 0 {
		return domain.Question{}, domain.ErrExhausted
	}

	s.rndMu.Lock()
	idx := s.rnd.Intn(len(candidates))
	s.rndMu.Unlock()
	return candidates[idx], nil
}

// Add validates and stores a new question. Missing ids and timestamps are filled in.
func (s *QuestionService) Add(ctx context.Context, q domain.Question) (domain.Question, error) {
	q = s.prepare(q)
	if err := domain.ValidateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// Update applies patch to the stored question and re-validates the result.
func (s *QuestionService) Update(ctx context.Context, id string, patch domain.QuestionPatch) (domain.Question, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	updated := patch.Apply(current)
	if err := domain.ValidateQuestion(updated); err != nil {
		return domain.Question{}, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return domain.Question{}, err
	}
	return updated, nil
}

func (s *QuestionService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Import inserts a batch. Entries whose text already exists in the catalog (or earlier in
// the batch) are skipped; invalid entries are rejected one by one without aborting the rest.
func (s *QuestionService) Import(ctx context.Context, batch []domain.Question) (ImportReport, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return ImportReport{}, err
	}
	texts := make(map[string]struct{}, len(existing)+len(batch))
	for _, q := range existing {
		texts[q.Text] = struct{}{}
	}

	var report ImportReport
	for i, q := range batch {
		if _, dup := texts[q.Text]; dup {
			report.Skipped++
			continue
		}
		q = s.prepare(q)
		if err := domain.ValidateQuestion(q); err != nil {
			report.Rejected = append(report.Rejected, ImportRejected{Index: i, Text: q.Text, Reason: err.Error()})
			continue
		}
		if err := s.repo.Create(ctx, q); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				report.Rejected = append(report.Rejected, ImportRejected{Index: i, Text: q.Text, Reason: err.Error()})
				continue
			}
			return report, err
		}
		texts[q.Text] = struct{}{}
		report.Inserted++
	}

	s.logger.Info().
		Int("inserted", report.Inserted).
		Int("skipped", report.Skipped).
		Int("rejected", len(report.Rejected)).
		Msg("question import finished")
	return report, nil
}

func (s *QuestionService) prepare(q domain.Question) domain.Question {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now().UTC()
	}
	if q.Kind == "" {
		q.Kind = domain.KindMultipleChoice
	}
	return q
}
