package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/domain"
)

// Planner runs the whole pipeline for one request:
// aggregate, filter, price and prune, then pack the days.
type Planner struct {
	agg      *Aggregator
	forecast domain.ForecastProvider
	opts     Options
	cost     *CostEstimator
	asm      *Assembler
	now      func() time.Time
}

func NewPlanner(agg *Aggregator, fp domain.ForecastProvider, o Options) *Planner {
	o = o.normalized()
	cost := NewCostEstimator(o)
	return &Planner{
		agg:      agg,
		forecast: fp,
		opts:     o,
		cost:     cost,
		asm:      NewAssembler(o, cost),
		now:      time.Now,
	}
}

// Generate builds a fresh itinerary. A non-empty forecast overrides the
// provider. It fails with domain.ErrInvalidPreferences for bad input and
// domain.ErrNoDataAvailable when every source failed; infeasible days are
// reported on the itinerary, not as errors.
func (s *Planner) Generate(ctx context.Context, p domain.UserPreferences, forecast []domain.DayForecast) (domain.Itinerary, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return domain.Itinerary{}, err
	}
	fc := s.forecastFor(ctx, p.Days, forecast)

	cands, reports, err := s.candidates(ctx, p, fc)
	if err != nil {
		observability.ObserveItinerary(string(domain.StatusFailed))
		return domain.Itinerary{}, err
	}

	days := s.asm.Assemble(cands, p, fc)

	byID := make(map[string]Candidate, len(cands))
	for _, c := range cands {
		byID[c.Venue.ID] = c
	}
	it := domain.Itinerary{
		ID:            uuid.NewString(),
		Days:          days,
		CostBreakdown: s.cost.Breakdown(days, byID, p.Family.Total()),
		Preferences:   p,
		Sources:       reports,
		GeneratedAt:   s.now().UTC(),
	}
	it.TotalCost = it.CostBreakdown.Total

	confirmed, required := 0, 0
	for _, d := range days {
		if d.Status == domain.DayInfeasible {
			it.InfeasibleDays = append(it.InfeasibleDays, d.Day)
			continue
		}
		for _, sv := range d.Venues {
			c := byID[sv.Venue.ID]
			confirmed += c.Confirmed
			required += c.Required
		}
	}
	it.AccessibilityScore = 1
	if required > 0 {
		it.AccessibilityScore = round2(float64(confirmed) / float64(required))
	}

	switch {
	case len(it.InfeasibleDays) == len(days):
		it.Status = domain.StatusFailed
	case len(it.InfeasibleDays) > 0:
		it.Status = domain.StatusPartial
	default:
		it.Status = domain.StatusComplete
	}
	observability.ObserveItinerary(string(it.Status))
	log.Info().Str("itinerary", it.ID).Str("status", string(it.Status)).
		Int("days", len(days)).Int("venues", it.VenueCount()).Float64("total_cost", it.TotalCost).
		Msg("itinerary generated")
	return it, nil
}

// Candidates exposes the filtered, priced pool the packer would work from.
func (s *Planner) Candidates(ctx context.Context, p domain.UserPreferences) ([]Candidate, []domain.SourceReport, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	return s.candidates(ctx, p, s.forecastFor(ctx, p.Days, nil))
}

func (s *Planner) candidates(ctx context.Context, p domain.UserPreferences, fc []domain.DayForecast) ([]Candidate, []domain.SourceReport, error) {
	pool, reports, err := s.agg.Collect(ctx, domain.CriteriaFor(p, fc))
	if err != nil {
		return nil, reports, err
	}
	cands := FilterAccessible(pool, p)
	cands = s.cost.Price(cands, p.Family)
	cands = s.cost.Prune(cands, p)
	log.Debug().Int("merged", len(pool)).Int("eligible", len(cands)).Msg("candidate pool ready")
	return cands, reports, nil
}

func (s *Planner) forecastFor(ctx context.Context, days int, override []domain.DayForecast) []domain.DayForecast {
	fc := override
	if len(fc) == 0 && s.forecast != nil {
		got, err := s.forecast.Forecast(ctx, days)
		if err != nil {
			log.Warn().Err(err).Msg("forecast unavailable, assuming clear weather")
		}
		fc = got
	}
	out := make([]domain.DayForecast, days)
	for i := range out {
		if i < len(fc) {
			out[i] = fc[i]
		} else {
			out[i] = domain.DayForecast{Tag: domain.ForecastClear}
		}
	}
	return out
}
