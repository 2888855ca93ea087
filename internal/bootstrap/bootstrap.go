// Package bootstrap wires configuration into the planner. It is shared by
// the API and the CLI so both build the same source stack.
package bootstrap

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/adapters/cache"
	"hk_itinerary/internal/adapters/govhk"
	"hk_itinerary/internal/adapters/hko"
	"hk_itinerary/internal/adapters/llm"
	redisad "hk_itinerary/internal/adapters/redis"
	"hk_itinerary/internal/adapters/sources"
	"hk_itinerary/internal/app"
	"hk_itinerary/internal/domain"
	"hk_itinerary/internal/shared"
	mysqlrepo "hk_itinerary/internal/storage/mysql"
)

// Deps are the long-lived handles main needs to close or expose.
type Deps struct {
	DB      *sql.DB
	Repo    *mysqlrepo.Repo
	Cache   domain.Cache
	Planner *app.Planner
}

func (d *Deps) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// OpenCache prefers Redis and falls back to an in-process LRU when Redis
// does not answer.
func OpenCache(ctx context.Context, cfg shared.Config) domain.Cache {
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-process cache")
		return cache.NewMemory(4096)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
	return rc
}

// OpenDB opens MySQL. A failed ping is logged, not fatal: the database tier
// then reports itself unreachable per request.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		log.Warn().Err(err).Msg("database ping failed, cached_database tier will degrade")
	} else {
		log.Info().Msg("database connection ok")
	}
	return db, nil
}

// Build assembles every tier the configuration allows. withDB=false skips
// MySQL entirely (the CLI can run without it).
func Build(ctx context.Context, cfg shared.Config, withDB bool) (*Deps, error) {
	d := &Deps{Cache: OpenCache(ctx, cfg)}
	batches := cache.NewBatches(d.Cache, cfg.CacheTTL, 30*time.Second)

	curated, err := sources.Curated()
	if err != nil {
		return nil, err
	}
	srcs := []domain.VenueSource{sources.NewOffline(curated)}

	if withDB {
		db, err := OpenDB(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		d.DB = db
		d.Repo = mysqlrepo.New(db)
		srcs = append(srcs, sources.NewDatabase(d.Repo, batches))
	}

	gov, err := govhk.New(cfg.GovAttractionsURL, 2)
	if err != nil {
		log.Warn().Err(err).Msg("government source disabled")
	} else {
		srcs = append(srcs, sources.NewGovernment(gov, batches))
	}

	if cfg.LLMKey != "" {
		client, err := llm.New(cfg.LLMBaseURL, cfg.LLMKey, cfg.LLMModel)
		if err != nil {
			log.Warn().Err(err).Msg("ai source disabled")
		} else {
			srcs = append(srcs, sources.NewAI(client, batches))
		}
	}

	agg := app.NewAggregator(cfg.SourceTimeout, cfg.DedupRadiusM, srcs...)
	d.Planner = app.NewPlanner(agg, hko.New(cfg.HKOForecastURL, 2), app.OptionsFromConfig(cfg))
	log.Info().Int("sources", len(srcs)).Msg("planner ready")
	return d, nil
}
