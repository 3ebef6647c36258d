package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"gincana-service/internal/app"
	"gincana-service/internal/config"
	"gincana-service/internal/infra/memory"
	pgstore "gincana-service/internal/infra/postgres"
	redisstore "gincana-service/internal/infra/redis"
	"gincana-service/internal/logging"
	"gincana-service/internal/seed"
	transport "gincana-service/internal/transport/http"
)

// runtime is the wired application shared by every command.
type runtime struct {
	cfg      config.Config
	logger   zerolog.Logger
	feed     *app.MatchFeed
	services transport.Services
	redis    *redis.Client
	pool     *pgxpool.Pool
}

func loadRuntime(ctx context.Context, path string) (*runtime, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)
	return newRuntime(ctx, cfg, logger)
}

// newRuntime picks the stores from config: Postgres when a URL is set, otherwise Redis
// when an address is set, otherwise memory. Redis also fronts the Postgres catalog as a
// shared cache.
func newRuntime(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger, feed: app.NewMatchFeed()}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return nil, err
		}
		poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("parse postgres url: %w", err)
		}
		if cfg.Postgres.MaxConns > 0 {
			poolCfg.MaxConns = cfg.Postgres.MaxConns
		}
		rt.pool, err = pgxpool.ConnectConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	}

	if cfg.Redis.Addr != "" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rt.redis.Ping(ctx).Err(); err != nil {
			rt.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
	}

	var (
		questions app.QuestionRepository
		teams     app.TeamRepository
		matches   app.MatchRepository
	)
	cacheTTL := config.TTLDuration(cfg.Catalog.CacheTTL, 5*time.Minute)
	switch {
	case rt.pool != nil:
		questions = pgstore.NewQuestionStore(rt.pool)
		teams = pgstore.NewTeamStore(rt.pool)
		matches = pgstore.NewMatchStore(rt.pool)
		if rt.redis != nil {
			questions = redisstore.NewCatalogCache(rt.redis, questions, cacheTTL)
		} else {
			questions = memory.NewCachedQuestionRepository(questions, cacheTTL)
		}
		logger.Info().Bool("redis_cache", rt.redis != nil).Msg("using postgres stores")
	case rt.redis != nil:
		questions = redisstore.NewQuestionStore(rt.redis)
		teams = redisstore.NewTeamStore(rt.redis)
		matches = redisstore.NewMatchStore(rt.redis, cfg.Game.TxRetries)
		logger.Info().Msg("using redis stores")
	default:
		questions = memory.NewQuestionStore()
		teams = memory.NewTeamStore()
		matches = memory.NewMatchStore()
		logger.Warn().Msg("no database configured, state lives in memory")
	}

	qsvc := app.NewQuestionService(questions, logger, app.QuestionServiceOptions{Seed: cfg.Catalog.Seed})
	tsvc := app.NewTeamService(teams)
	rt.services = transport.Services{
		Questions: qsvc,
		Teams:     tsvc,
		Matches: app.NewMatchService(matches, tsvc, qsvc, rt.feed,
			app.MatchServiceOptions{PointsPerCorrect: cfg.Game.PointsPerCorrect}, logger),
		Backup: app.NewBackupService(questions, teams, matches, logger),
	}
	return rt, nil
}

// seedCatalog imports the embedded questions. Texts already in the catalog are skipped,
// so running it twice is harmless.
func (rt *runtime) seedCatalog(ctx context.Context) (app.ImportReport, error) {
	qs, err := seed.Questions()
	if err != nil {
		return app.ImportReport{}, err
	}
	rep, err := rt.services.Questions.Import(ctx, qs)
	if err != nil {
		return rep, err
	}
	rt.logger.Info().
		Int("inserted", rep.Inserted).
		Int("skipped", rep.Skipped).
		Int("rejected", len(rep.Rejected)).
		Msg("catalog seeded")
	return rep, nil
}

func (rt *runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
}
