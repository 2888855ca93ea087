package sources

import (
	"context"
	"time"

	"hk_itinerary/internal/adapters/cache"
	"hk_itinerary/internal/domain"
)

// Database reads venues previously seeded into MySQL. Query results share
// the batch cache with the other tiers, so a reseed shows up once the
// cached entry expires.
type Database struct {
	repo    domain.VenueRepository
	batches *cache.Batches
	now     func() time.Time
}

func NewDatabase(repo domain.VenueRepository, batches *cache.Batches) *Database {
	return &Database{repo: repo, batches: batches, now: time.Now}
}

func (s *Database) Kind() domain.SourceKind { return domain.SourceDatabase }

func (s *Database) Fetch(ctx context.Context, c domain.QueryCriteria) ([]domain.VenueRecord, error) {
	load := func(ctx context.Context) ([]domain.VenueRecord, error) { return s.load(ctx, c) }
	if s.batches == nil {
		return load(ctx)
	}
	recs, _, err := s.batches.Get(ctx, domain.SourceDatabase, c, load)
	if err != nil {
		return nil, domain.AsSourceError(domain.SourceDatabase, err)
	}
	return recs, nil
}

func (s *Database) load(ctx context.Context, c domain.QueryCriteria) ([]domain.VenueRecord, error) {
	recs, err := s.repo.ListVenues(ctx, c)
	if err != nil {
		return nil, domain.AsSourceError(domain.SourceDatabase, err)
	}
	at := s.now()
	for i := range recs {
		if recs[i].Provenance.Source != domain.SourceDatabase {
			recs[i].Provenance = domain.NewProvenance(domain.SourceDatabase, recs[i].ID, at)
		}
		recs[i].SourceRank = domain.SourceDatabase.Rank()
	}
	return recs, nil
}
