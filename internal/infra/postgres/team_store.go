package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

type TeamStore struct {
	pool *pgxpool.Pool
}

var _ app.TeamRepository = (*TeamStore)(nil)

func NewTeamStore(pool *pgxpool.Pool) *TeamStore {
	return &TeamStore{pool: pool}
}

func (s *TeamStore) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, color, created_at FROM teams ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Team, 0)
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TeamStore) Get(ctx context.Context, id string) (domain.Team, error) {
	var t domain.Team
	err := s.pool.QueryRow(ctx, `SELECT id, name, color, created_at FROM teams WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

func (s *TeamStore) Create(ctx context.Context, t domain.Team) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO teams (id, name, color, created_at) VALUES ($1,$2,$3,$4)`,
		t.ID, t.Name, t.Color, t.CreatedAt)
	if isUniqueViolation(err) {
		return domain.Validationf("team id %q already exists", t.ID)
	}
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (s *TeamStore) Update(ctx context.Context, t domain.Team) error {
	tag, err := s.pool.Exec(ctx, `UPDATE teams SET name=$2, color=$3 WHERE id=$1`, t.ID, t.Name, t.Color)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func (s *TeamStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM teams WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func (s *TeamStore) ReplaceAll(ctx context.Context, ts []domain.Team) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM teams`); err != nil {
			return fmt.Errorf("clear teams: %w", err)
		}
		batch := &pgx.Batch{}
		for _, t := range ts {
			batch.Queue(`INSERT INTO teams (id, name, color, created_at) VALUES ($1,$2,$3,$4)`,
				t.ID, t.Name, t.Color, t.CreatedAt)
		}
		return sendBatch(ctx, tx, batch)
	})
}
