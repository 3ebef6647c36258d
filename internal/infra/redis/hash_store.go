package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gincana-service/internal/domain"
)

// The hash entry and its order-list slot always change together.
var (
	createScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 0 then return 0 end
redis.call('RPUSH', KEYS[2], ARGV[1])
return 1`)

	updateScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then return 0 end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1`)

	deleteScript = redis.NewScript(`
if redis.call('HDEL', KEYS[1], ARGV[1]) == 0 then return 0 end
redis.call('LREM', KEYS[2], 0, ARGV[1])
return 1`)
)

// hashStore keeps documents of one kind in a hash (HSET {hashKey} {id} {json}) and their
// creation order in a list, so List is stable across instances.
type hashStore[T any] struct {
	client   *redis.Client
	hashKey  string
	orderKey string
	kind     string
	idOf     func(T) string
	notFound error
}

func (s *hashStore[T]) List(ctx context.Context) ([]T, error) {
	ids, err := s.client.LRange(ctx, s.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", s.kind, err)
	}
	if len(ids) == 0 {
		return []T{}, nil
	}
	raws, err := s.client.HMGet(ctx, s.hashKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load %ss: %w", s.kind, err)
	}
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", s.kind, ids[i], err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *hashStore[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	raw, err := s.client.HGet(ctx, s.hashKey, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, s.notFound
	}
	if err != nil {
		return v, fmt.Errorf("get %s %s: %w", s.kind, id, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %s %s: %w", s.kind, id, err)
	}
	return v, nil
}

func (s *hashStore[T]) Create(ctx context.Context, v T) error {
	id := s.idOf(v)
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.kind, err)
	}
	created, err := createScript.Run(ctx, s.client, []string{s.hashKey, s.orderKey}, id, data).Int()
	if err != nil {
		return fmt.Errorf("create %s %s: %w", s.kind, id, err)
	}
	if created == 0 {
		return domain.Validationf("%s id %q already exists", s.kind, id)
	}
	return nil
}

func (s *hashStore[T]) Update(ctx context.Context, v T) error {
	id := s.idOf(v)
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.kind, err)
	}
	updated, err := updateScript.Run(ctx, s.client, []string{s.hashKey}, id, data).Int()
	if err != nil {
		return fmt.Errorf("update %s %s: %w", s.kind, id, err)
	}
	if updated == 0 {
		return s.notFound
	}
	return nil
}

func (s *hashStore[T]) Delete(ctx context.Context, id string) error {
	deleted, err := deleteScript.Run(ctx, s.client, []string{s.hashKey, s.orderKey}, id).Int()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.kind, id, err)
	}
	if deleted == 0 {
		return s.notFound
	}
	return nil
}

func (s *hashStore[T]) ReplaceAll(ctx context.Context, vs []T) error {
	payloads := make([][]byte, len(vs))
	for i, v := range vs {
		var err error
		if payloads[i], err = json.Marshal(v); err != nil {
			return fmt.Errorf("encode %s %s: %w", s.kind, s.idOf(v), err)
		}
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.hashKey, s.orderKey)
		for i, v := range vs {
			pipe.HSet(ctx, s.hashKey, s.idOf(v), payloads[i])
			pipe.RPush(ctx, s.orderKey, s.idOf(v))
		}
		return nil
	})
	return err
}
