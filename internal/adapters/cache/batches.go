// Package cache holds the shared venue-batch cache used by the remote source tiers.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/domain"
)

// Loader fetches a fresh batch from upstream.
type Loader func(ctx context.Context) ([]domain.VenueRecord, error)

// absentSetter is implemented by backends that can insert only when a key is missing.
type absentSetter interface {
	SetNX(ctx context.Context, key string, v any, ttlSec int) (bool, error)
}

// Batches caches whole source answers under venues:<source>:<fingerprint>.
// Concurrent misses for one key share a single upstream load, and a load
// keeps running after its callers give up so the result still lands in
// the cache.
type Batches struct {
	store       domain.Cache
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
}

func NewBatches(store domain.Cache, ttl, loadTimeout time.Duration) *Batches {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if loadTimeout <= 0 {
		loadTimeout = 30 * time.Second
	}
	return &Batches{store: store, ttl: ttl, loadTimeout: loadTimeout}
}

func Key(src domain.SourceKind, c domain.QueryCriteria) string {
	return fmt.Sprintf("venues:%s:%s", src, c.Fingerprint())
}

// Get returns the cached batch for (src, c) or loads it. hit reports whether
// the answer came from the cache.
func (b *Batches) Get(ctx context.Context, src domain.SourceKind, c domain.QueryCriteria, load Loader) (recs []domain.VenueRecord, hit bool, err error) {
	key := Key(src, c)
	if ok, err := b.store.Get(ctx, key, &recs); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("batch cache read failed")
	} else if ok {
		return recs, true, nil
	}

	ch := b.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.loadTimeout)
		defer cancel()
		fresh, err := load(lctx)
		if err != nil {
			return nil, err
		}
		if len(fresh) > 0 {
			b.put(lctx, key, fresh)
		}
		return fresh, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, false, r.Err
		}
		if r.Shared {
			observability.ObserveCache("batches", "shared")
		}
		return r.Val.([]domain.VenueRecord), false, nil
	case <-ctx.Done():
		log.Debug().Str("key", key).Msg("caller left, batch load continues in background")
		return nil, false, ctx.Err()
	}
}

func (b *Batches) put(ctx context.Context, key string, recs []domain.VenueRecord) {
	ttl := int(b.ttl.Seconds())
	if s, ok := b.store.(absentSetter); ok {
		if _, err := s.SetNX(ctx, key, recs, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("batch cache write failed")
		}
		return
	}
	if err := b.store.Set(ctx, key, recs, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("batch cache write failed")
	}
}
