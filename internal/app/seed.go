package app

import (
	"context"
	"errors"
	"fmt"

	"hk_itinerary/internal/domain"
)

// SeedService loads curated venues into the cached-database tier.
type SeedService struct {
	repo  domain.VenueRepository
	cache domain.Cache
}

func NewSeedService(r domain.VenueRepository, cache domain.Cache) *SeedService {
	return &SeedService{repo: r, cache: cache}
}

// SeedVenue upserts one record. Invalid records are refused with their
// *domain.ValidationError so the caller can log and move on.
func (s *SeedService) SeedVenue(ctx context.Context, v domain.VenueRecord) error {
	if err := domain.Validate(v); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		return fmt.Errorf("validate %s: %w", v.ID, err)
	}
	v.Provenance = domain.NewProvenance(domain.SourceDatabase, v.ID, v.Provenance.FetchedAt)
	v.SourceRank = domain.SourceDatabase.Rank()

	if err := s.repo.UpsertVenue(ctx, v); err != nil {
		return fmt.Errorf("upsert venue %s: %w", v.ID, err)
	}
	// Evict the single-venue view so reads don't serve the old snapshot.
	if s.cache != nil {
		_ = s.cache.Del(ctx, venueKey(v.ID))
	}
	return nil
}
