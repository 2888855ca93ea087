package app

import (
	"context"
	"fmt"
	"time"

	"hk_itinerary/internal/domain"
)

type VenueQueryService struct {
	repo     domain.VenueRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewVenueQueryService(r domain.VenueRepository, c domain.Cache, ttl time.Duration) *VenueQueryService {
	return &VenueQueryService{repo: r, cache: c, cacheTTL: ttl}
}

func venueKey(id string) string { return fmt.Sprintf("venue:%s", id) }

// GetVenue reads one stored venue, cache first.
func (s *VenueQueryService) GetVenue(ctx context.Context, id string) (domain.VenueRecord, error) {
	key := venueKey(id)
	var v domain.VenueRecord
	if ok, _ := s.cache.Get(ctx, key, &v); ok {
		return v, nil
	}
	v, err := s.repo.GetVenue(ctx, id)
	if err != nil {
		return domain.VenueRecord{}, err
	}
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	return v, nil
}
