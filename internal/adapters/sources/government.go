package sources

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/adapters/cache"
	"hk_itinerary/internal/domain"
)

// Government maps the tourism board's open-data attraction list. The
// dataset does not depend on the request, so one cache entry serves all.
type Government struct {
	client  domain.GovDataClient
	batches *cache.Batches
	now     func() time.Time
}

func NewGovernment(client domain.GovDataClient, batches *cache.Batches) *Government {
	return &Government{client: client, batches: batches, now: time.Now}
}

func (s *Government) Kind() domain.SourceKind { return domain.SourceGovernment }

func (s *Government) Fetch(ctx context.Context, _ domain.QueryCriteria) ([]domain.VenueRecord, error) {
	if s.batches == nil {
		return s.load(ctx)
	}
	recs, _, err := s.batches.Get(ctx, domain.SourceGovernment, domain.QueryCriteria{}, s.load)
	if err != nil {
		return nil, domain.AsSourceError(domain.SourceGovernment, err)
	}
	return recs, nil
}

func (s *Government) load(ctx context.Context) ([]domain.VenueRecord, error) {
	rows, err := s.client.MajorAttractions(ctx)
	if err != nil {
		return nil, domain.AsSourceError(domain.SourceGovernment, err)
	}
	at := s.now()
	out := make([]domain.VenueRecord, 0, len(rows))
	for _, row := range rows {
		v := mapGovRow(row, at)
		if v.Name == "" {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, domain.NewSourceError(domain.SourceGovernment, domain.KindInvalidResponse,
			errors.New("dataset has no named attractions"))
	}
	log.Debug().Int("rows", len(rows)).Int("venues", len(out)).Msg("government attractions mapped")
	return out, nil
}
