package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

// MatchStore keeps each match aggregate as a JSONB document. Status and created_at are
// duplicated into columns for filtering. Update locks the row with SELECT ... FOR UPDATE
// inside a transaction, so concurrent moves on one match are serialized by Postgres.
type MatchStore struct {
	pool *pgxpool.Pool
}

var _ app.MatchRepository = (*MatchStore)(nil)

func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

func (s *MatchStore) List(ctx context.Context) ([]domain.Match, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM matches ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Match, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		m, err := unmarshalMatch(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MatchStore) Get(ctx context.Context, id string) (domain.Match, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM matches WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Match{}, domain.ErrMatchNotFound
	}
	if err != nil {
		return domain.Match{}, fmt.Errorf("load match: %w", err)
	}
	return unmarshalMatch(raw)
}

func (s *MatchStore) Create(ctx context.Context, m domain.Match) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO matches (id, status, data, created_at) VALUES ($1,$2,$3,$4)`,
		m.ID, m.Status, data, m.CreatedAt)
	if isUniqueViolation(err) {
		return domain.Validationf("match id %q already exists", m.ID)
	}
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (s *MatchStore) Update(ctx context.Context, id string, fn func(m *domain.Match) error) (domain.Match, error) {
	var updated domain.Match
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx, `SELECT data FROM matches WHERE id=$1 FOR UPDATE`, id).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrMatchNotFound
		}
		if err != nil {
			return fmt.Errorf("lock match: %w", err)
		}
		m, err := unmarshalMatch(raw)
		if err != nil {
			return err
		}
		if err := fn(&m); err != nil {
			return err
		}
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal match: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE matches SET data=$2, status=$3, updated_at=now() WHERE id=$1`,
			id, data, m.Status); err != nil {
			return fmt.Errorf("update match: %w", err)
		}
		updated = m
		return nil
	})
	if err != nil {
		return domain.Match{}, err
	}
	return updated, nil
}

func (s *MatchStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM matches WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

func (s *MatchStore) ReplaceAll(ctx context.Context, ms []domain.Match) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM matches`); err != nil {
			return fmt.Errorf("clear matches: %w", err)
		}
		batch := &pgx.Batch{}
		for _, m := range ms {
			data, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshal match %s: %w", m.ID, err)
			}
			batch.Queue(`INSERT INTO matches (id, status, data, created_at) VALUES ($1,$2,$3,$4)`,
				m.ID, m.Status, data, m.CreatedAt)
		}
		return sendBatch(ctx, tx, batch)
	})
}

func unmarshalMatch(raw []byte) (domain.Match, error) {
	var m domain.Match
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Match{}, fmt.Errorf("unmarshal match: %w", err)
	}
	return m, nil
}
