package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

const (
	keyPrefix        = "gincana:"
	matchIndexKey    = keyPrefix + "matches"
	defaultTxRetries = 10
)

// ErrContention is returned when an optimistic match update keeps losing the race.
var ErrContention = errors.New("redis: match update retries exhausted")

// MatchStore keeps each match as a JSON document under gincana:match:{id} plus an id set.
// Update runs under WATCH so concurrent writers on different instances never interleave.
type MatchStore struct {
	client  *redis.Client
	retries int
}

var _ app.MatchRepository = (*MatchStore)(nil)

func NewMatchStore(client *redis.Client, retries int) *MatchStore {
	if retries <= 0 {
		retries = defaultTxRetries
	}
	return &MatchStore{client: client, retries: retries}
}

func (s *MatchStore) List(ctx context.Context) ([]domain.Match, error) {
	ids, err := s.client.SMembers(ctx, matchIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list match ids: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Match{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = matchKey(id)
	}
	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	out := make([]domain.Match, 0, len(raws))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// index entry without a document; a concurrent delete is in flight
			continue
		}
		m, err := decodeMatch([]byte(str))
		if err != nil {
			return nil, fmt.Errorf("decode match %s: %w", ids[i], err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *MatchStore) Get(ctx context.Context, id string) (domain.Match, error) {
	raw, err := s.client.Get(ctx, matchKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Match{}, domain.ErrMatchNotFound
	}
	if err != nil {
		return domain.Match{}, fmt.Errorf("get match %s: %w", id, err)
	}
	return decodeMatch(raw)
}

func (s *MatchStore) Create(ctx context.Context, m domain.Match) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match: %w", err)
	}
	created, err := s.client.SetNX(ctx, matchKey(m.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create match %s: %w", m.ID, err)
	}
	if !created {
		return domain.Validationf("match id %q already exists", m.ID)
	}
	return s.client.SAdd(ctx, matchIndexKey, m.ID).Err()
}

func (s *MatchStore) Update(ctx context.Context, id string, fn func(m *domain.Match) error) (domain.Match, error) {
	key := matchKey(id)
	var updated domain.Match

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrMatchNotFound
		}
		if err != nil {
			return err
		}
		m, err := decodeMatch(raw)
		if err != nil {
			return err
		}
		if err := fn(&m); err != nil {
			return err
		}
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			updated = m
		}
		return err
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.Match{}, err
		}
		return updated, nil
	}
	return domain.Match{}, fmt.Errorf("update match %s: %w", id, ErrContention)
}

func (s *MatchStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, matchKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrMatchNotFound
	}
	return s.client.SRem(ctx, matchIndexKey, id).Err()
}

func (s *MatchStore) ReplaceAll(ctx context.Context, ms []domain.Match) error {
	existing, err := s.client.SMembers(ctx, matchIndexKey).Result()
	if err != nil {
		return fmt.Errorf("list match ids: %w", err)
	}
	payloads := make([][]byte, len(ms))
	for i, m := range ms {
		if payloads[i], err = json.Marshal(m); err != nil {
			return fmt.Errorf("encode match %s: %w", m.ID, err)
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range existing {
			pipe.Del(ctx, matchKey(id))
		}
		pipe.Del(ctx, matchIndexKey)
		for i, m := range ms {
			pipe.Set(ctx, matchKey(m.ID), payloads[i], 0)
			pipe.SAdd(ctx, matchIndexKey, m.ID)
		}
		return nil
	})
	return err
}

func matchKey(id string) string {
	return keyPrefix + "match:" + id
}

func decodeMatch(raw []byte) (domain.Match, error) {
	var m domain.Match
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Match{}, err
	}
	return m, nil
}
