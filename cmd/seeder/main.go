package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/adapters/sources"
	"hk_itinerary/internal/app"
	"hk_itinerary/internal/bootstrap"
	"hk_itinerary/internal/domain"
	"hk_itinerary/internal/shared"
	mysqlrepo "hk_itinerary/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	venues, err := sources.Curated()
	if err != nil {
		log.Fatal().Err(err).Msg("curated dataset invalid")
	}
	log.Info().
		Int("venues", len(venues)).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	db, err := bootstrap.OpenDB(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	seed := app.NewSeedService(mysqlrepo.New(db), bootstrap.OpenCache(ctx, cfg))
	sem := semaphore.NewWeighted(int64(max(cfg.SeedWorkers, 1)))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, v := range venues {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(v domain.VenueRecord) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := seed.SeedVenue(ctx, v); err != nil {
				failed.Add(1)
				log.Warn().Str("venue", v.ID).Err(err).Msg("seed failed")
				return
			}
			log.Debug().Str("venue", v.ID).Msg("seed ok")
		}(v)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Fatal().Int32("failed", n).Msg("seeding incomplete")
	}
	log.Info().Int("venues", len(venues)).Msg("seeding completed")
}
