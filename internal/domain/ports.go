package domain

import "context"

// VenueSource is implemented by every origin of candidate venues. Fetch
// returns either records or a *SourceError, and must honour ctx.
type VenueSource interface {
	Kind() SourceKind
	Fetch(ctx context.Context, c QueryCriteria) ([]VenueRecord, error)
}

type VenueRepository interface {
	// Write paths
	UpsertVenue(ctx context.Context, v VenueRecord) error

	// Read paths
	ListVenues(ctx context.Context, c QueryCriteria) ([]VenueRecord, error)
	GetVenue(ctx context.Context, id string) (VenueRecord, error)
}

// GovDataClient returns raw CSV rows keyed by header.
type GovDataClient interface {
	MajorAttractions(ctx context.Context) ([]map[string]string, error)
}

type LLMClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type ForecastProvider interface {
	Forecast(ctx context.Context, days int) ([]DayForecast, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
