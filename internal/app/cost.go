package app

import (
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/domain"
)

// routeFactor stretches straight-line distance towards a street distance.
const routeFactor = 1.3

type CostEstimator struct {
	discounts Discounts
	overage   float64
	relaxes   bool
	opts      Options
}

func NewCostEstimator(o Options) *CostEstimator {
	return &CostEstimator{discounts: o.Discounts, overage: o.BudgetOverage, relaxes: o.relaxesBudget(), opts: o}
}

// GroupCost prices one base ticket for the whole family, discounting seniors
// and children by the configured rates.
func (e *CostEstimator) GroupCost(base float64, f domain.Family) float64 {
	return base * (float64(f.Adults) +
		float64(f.Children)*(1-e.discounts.Child) +
		float64(f.Seniors)*(1-e.discounts.Senior))
}

// DayBudget is the strict ceiling for one day's spend for the whole group.
func (e *CostEstimator) DayBudget(p domain.UserPreferences) float64 {
	return p.Budget.Max * float64(p.Family.Total())
}

func (e *CostEstimator) Price(cands []Candidate, f domain.Family) []Candidate {
	out := make([]Candidate, len(cands))
	people := float64(f.Total())
	for i, c := range cands {
		c.MinCost = e.GroupCost(c.Venue.Cost.Min, f)
		c.EstCost = e.GroupCost(c.Venue.Cost.Mid(), f)
		c.Discount = c.Venue.Cost.Mid()*people - c.EstCost
		out[i] = c
	}
	return out
}

// Prune drops candidates whose cheapest price already exceeds what any day
// could spend, including the overage tolerance when budget relaxation is enabled.
func (e *CostEstimator) Prune(cands []Candidate, p domain.UserPreferences) []Candidate {
	limit := e.DayBudget(p)
	if e.relaxes {
		limit *= 1 + e.overage
	}
	out := make([]Candidate, 0, len(cands))
	pruned := 0
	for _, c := range cands {
		if c.MinCost > limit {
			log.Info().Str("venue", c.Venue.Name).Float64("min_cost", c.MinCost).Float64("limit", limit).Msg("budget exceeded, pruned before packing")
			pruned++
			continue
		}
		out = append(out, c)
	}
	if pruned > 0 {
		observability.ObservePruned(pruned)
	}
	return out
}

// Leg estimates the hop between two venues for the given preferences.
func (e *CostEstimator) Leg(from, to domain.VenueRecord, p domain.UserPreferences) domain.TransportSegment {
	km := distanceMeters(from.Location, to.Location) / 1000 * routeFactor
	mode := e.pickMode(km, p)
	t := e.opts.Tariffs[mode]

	seg := domain.TransportSegment{From: from.Name, To: to.Name, Mode: mode, DistanceKm: round2(km)}
	if t.SpeedKmh > 0 {
		seg.Minutes = int(math.Ceil(km / t.SpeedKmh * 60))
	}
	if mode != domain.ModeWalking {
		seg.Minutes += 10
	}

	fare := t.Base + t.PerKm*km
	switch {
	case mode == domain.ModeWalking:
		fare = 0
	case t.PerVehicle:
		fare *= math.Ceil(float64(p.Family.Total()) / 4)
	default:
		fare = e.GroupCost(fare, p.Family)
	}
	seg.Cost = round2(fare)
	seg.Note = modeNote(mode, p)
	return seg
}

func (e *CostEstimator) pickMode(km float64, p domain.UserPreferences) domain.TransportMode {
	walkOK := len(p.Transport) == 0 || slices.Contains(p.Transport, domain.ModeWalking)
	if walkOK && km <= e.opts.WalkMaxKm {
		return domain.ModeWalking
	}
	for _, m := range p.Transport {
		if m != domain.ModeWalking {
			if _, ok := e.opts.Tariffs[m]; ok {
				return m
			}
		}
	}
	return domain.ModeMTR
}

func modeNote(m domain.TransportMode, p domain.UserPreferences) string {
	if len(p.Mobility) == 0 {
		return ""
	}
	switch m {
	case domain.ModeMTR:
		return "use station lifts; MTR staff can arrange boarding ramps"
	case domain.ModeBus:
		return "low-floor buses kneel on request"
	case domain.ModeTaxi:
		return "book a wheelchair-accessible taxi in advance"
	case domain.ModeFerry:
		return "ask crew for the gangway ramp"
	case domain.ModeWalking:
		return "short hop, check kerbs and slopes"
	}
	return ""
}

// Breakdown sums costs per category over the filled days.
func (e *CostEstimator) Breakdown(days []domain.DayPlan, cands map[string]Candidate, people int) domain.CostBreakdown {
	b := domain.CostBreakdown{ByCategory: map[domain.Category]float64{}}
	for _, d := range days {
		for _, sv := range d.Venues {
			b.ByCategory[sv.Venue.Category] += sv.EstimatedCost
			if c, ok := cands[sv.Venue.ID]; ok {
				b.Discounts += c.Discount
			}
		}
		b.Transport += d.TransportCost
		b.Total += d.TotalCost
	}
	for k, v := range b.ByCategory {
		b.ByCategory[k] = round2(v)
	}
	b.Transport, b.Discounts, b.Total = round2(b.Transport), round2(b.Discounts), round2(b.Total)
	if people > 0 {
		b.PerPerson = round2(b.Total / float64(people))
	}
	return b
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func money(f float64) string { return fmt.Sprintf("HK$%.0f", f) }
