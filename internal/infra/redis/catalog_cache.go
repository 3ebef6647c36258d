package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

const (
	catalogKey    = keyPrefix + "catalog"
	catalogGenKey = keyPrefix + "catalog:gen"
)

// CatalogCache caches the serialized question catalog in Redis and falls back to the
// backing repository on a miss. Every instance shares the snapshot:
//
//	SET gincana:catalog {json array} EX ttl
//
// Writes pass through to the backing repository, bump gincana:catalog:gen and drop the
// key. A load only fills the key if the generation did not move while it ran.
type CatalogCache struct {
	app.QuestionRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

var _ app.QuestionRepository = (*CatalogCache)(nil)

func NewCatalogCache(client *redis.Client, backing app.QuestionRepository, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		QuestionRepository: backing,
		client:             client,
		ttl:                ttl,
		rnd:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) List(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := c.cached(ctx); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := c.cached(ctx); ok {
			return qs, nil
		}
		gen, genErr := c.generation(ctx)
		qs, err := c.QuestionRepository.List(ctx)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			c.store(ctx, gen, qs)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	qs := result.([]domain.Question)
	out := make([]domain.Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (c *CatalogCache) Create(ctx context.Context, q domain.Question) error {
	defer c.Invalidate(ctx)
	return c.QuestionRepository.Create(ctx, q)
}

func (c *CatalogCache) Update(ctx context.Context, q domain.Question) error {
	defer c.Invalidate(ctx)
	return c.QuestionRepository.Update(ctx, q)
}

func (c *CatalogCache) Delete(ctx context.Context, id string) error {
	defer c.Invalidate(ctx)
	return c.QuestionRepository.Delete(ctx, id)
}

func (c *CatalogCache) ReplaceAll(ctx context.Context, qs []domain.Question) error {
	defer c.Invalidate(ctx)
	return c.QuestionRepository.ReplaceAll(ctx, qs)
}

// Invalidate drops the shared snapshot and fences off loads already in flight. Failures
// are ignored; the TTL bounds staleness.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	_, _ = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, catalogGenKey)
		pipe.Del(ctx, catalogKey)
		return nil
	})
}

func (c *CatalogCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, catalogGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// store writes the snapshot loaded at generation gen unless a write invalidated it since.
func (c *CatalogCache) store(ctx context.Context, gen int64, qs []domain.Question) {
	data, err := json.Marshal(qs)
	if err != nil {
		return
	}
	_ = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, catalogGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, catalogKey, data, c.ttlWithJitter())
			return nil
		})
		return err
	}, catalogGenKey)
}

func (c *CatalogCache) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; other errors degrade to the backing store
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, false
	}
	return qs, true
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
