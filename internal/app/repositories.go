package app

import (
	"context"

	"gincana-service/internal/domain"
)

// QuestionRepository abstracts how the catalog is stored (in-memory, Redis, Postgres).
// List returns questions in creation order. Unknown ids yield domain.ErrQuestionNotFound.
type QuestionRepository interface {
	List(ctx context.Context) ([]domain.Question, error)
	Get(ctx context.Context, id string) (domain.Question, error)
	Create(ctx context.Context, q domain.Question) error
	Update(ctx context.Context, q domain.Question) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, qs []domain.Question) error
}

// TeamRepository stores reusable team identities. Unknown ids yield domain.ErrTeamNotFound.
type TeamRepository interface {
	List(ctx context.Context) ([]domain.Team, error)
	Get(ctx context.Context, id string) (domain.Team, error)
	Create(ctx context.Context, t domain.Team) error
	Update(ctx context.Context, t domain.Team) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, ts []domain.Team) error
}

// MatchRepository stores match aggregates.
//
// Update is the only write path used during play: it loads the match, hands a copy to
// fn and persists the result as one atomic read-modify-write. When fn returns an error
// nothing is written and that error is returned unchanged. fn may run more than once
// on stores that retry optimistic transactions, so it must not have side effects
// beyond the match it mutates.
type MatchRepository interface {
	List(ctx context.Context) ([]domain.Match, error)
	Get(ctx context.Context, id string) (domain.Match, error)
	Create(ctx context.Context, m domain.Match) error
	Update(ctx context.Context, id string, fn func(m *domain.Match) error) (domain.Match, error)
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, ms []domain.Match) error
}
