package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

const catalogKey = "catalog"

// CachedQuestionRepository caches the full catalog snapshot of a slower repository
// (Postgres) with TTL, so draws during play do not hit the database each time.
// Writes go straight to the backing repository and invalidate the snapshot.
type CachedQuestionRepository struct {
	app.QuestionRepository

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu        sync.RWMutex
	snapshot  []domain.Question
	expiresAt time.Time
	gen       uint64
}

var _ app.QuestionRepository = (*CachedQuestionRepository)(nil)

func NewCachedQuestionRepository(backing app.QuestionRepository, ttl time.Duration) *CachedQuestionRepository {
	return &CachedQuestionRepository{
		QuestionRepository: backing,
		ttl:                ttl,
		clock:              time.Now,
		rnd:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CachedQuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := r.cached(); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		if qs, ok := r.cached(); ok {
			return qs, nil
		}

		r.mu.RLock()
		gen := r.gen
		r.mu.RUnlock()

		qs, err := r.QuestionRepository.List(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		// A write that landed while we were loading makes this snapshot stale.
		if r.gen == gen {
			r.snapshot = qs
			r.expiresAt = r.clock().Add(r.ttlWithJitter())
		}
		r.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (r *CachedQuestionRepository) Create(ctx context.Context, q domain.Question) error {
	defer r.Invalidate()
	return r.QuestionRepository.Create(ctx, q)
}

func (r *CachedQuestionRepository) Update(ctx context.Context, q domain.Question) error {
	defer r.Invalidate()
	return r.QuestionRepository.Update(ctx, q)
}

func (r *CachedQuestionRepository) Delete(ctx context.Context, id string) error {
	defer r.Invalidate()
	return r.QuestionRepository.Delete(ctx, id)
}

func (r *CachedQuestionRepository) ReplaceAll(ctx context.Context, qs []domain.Question) error {
	defer r.Invalidate()
	return r.QuestionRepository.ReplaceAll(ctx, qs)
}

// Invalidate drops the cached snapshot.
func (r *CachedQuestionRepository) Invalidate() {
	r.mu.Lock()
	r.snapshot = nil
	r.expiresAt = time.Time{}
	r.gen++
	r.mu.Unlock()
}

func (r *CachedQuestionRepository) cached() ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil || !r.expiresAt.After(r.clock()) {
		return nil, false
	}
	return cloneQuestions(r.snapshot), true
}

func (r *CachedQuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		out[i] = cloneQuestion(q)
	}
	return out
}
