package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

const uniqueViolation = "23505"

const questionColumns = `id, text, kind, difficulty, category, correct_answer, options, reference, created_at`

// QuestionStore persists the catalog in the questions table. Options live in a text[]
// column so a question round-trips without a join.
type QuestionStore struct {
	pool *pgxpool.Pool
}

var _ app.QuestionRepository = (*QuestionStore)(nil)

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *QuestionStore) Get(ctx context.Context, id string) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionStore) Create(ctx context.Context, q domain.Question) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO questions (`+questionColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		questionArgs(q)...)
	if isUniqueViolation(err) {
		return domain.Validationf("question id %q already exists", q.ID)
	}
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *QuestionStore) Update(ctx context.Context, q domain.Question) error {
	tag, err := s.pool.Exec(ctx, `UPDATE questions
		SET text=$2, kind=$3, difficulty=$4, category=$5, correct_answer=$6, options=$7, reference=$8, created_at=$9
		WHERE id=$1`, questionArgs(q)...)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *QuestionStore) ReplaceAll(ctx context.Context, qs []domain.Question) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		batch := &pgx.Batch{}
		for _, q := range qs {
			batch.Queue(`INSERT INTO questions (`+questionColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, questionArgs(q)...)
		}
		return sendBatch(ctx, tx, batch)
	})
}

func questionArgs(q domain.Question) []interface{} {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	return []interface{}{q.ID, q.Text, q.Kind, q.Difficulty, q.Category, q.CorrectAnswer, options, q.Reference, q.CreatedAt}
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Text, &q.Kind, &q.Difficulty, &q.Category, &q.CorrectAnswer, &q.Options, &q.Reference, &q.CreatedAt)
	if err != nil {
		return domain.Question{}, err
	}
	if len(q.Options) == 0 {
		q.Options = nil
	}
	return q, nil
}

// sendBatch runs every queued statement and reports the first failure.
func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			if isUniqueViolation(err) {
				return domain.Validationf("duplicate id in batch: %v", err)
			}
			return err
		}
	}
	return results.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
