package app

import (
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/domain"
)

// visitMinutes is the time budgeted at a venue before moving on.
var visitMinutes = map[domain.Category]int{
	domain.CategoryAttraction: 120,
	domain.CategoryMuseum:     120,
	domain.CategoryPark:       90,
	domain.CategoryRestaurant: 75,
	domain.CategoryTransport:  60,
}

// Assembler packs candidates into day plans.
type Assembler struct {
	opts Options
	cost *CostEstimator
}

func NewAssembler(o Options, cost *CostEstimator) *Assembler {
	return &Assembler{opts: o, cost: cost}
}

type relaxed map[domain.Relaxation]bool

type pick struct {
	cand Candidate
	leg  *domain.TransportSegment
}

// Assemble builds one plan per day. Venues used on earlier days stay eligible
// but carry a repeat penalty, so they only come back when nothing new fits.
func (a *Assembler) Assemble(cands []Candidate, p domain.UserPreferences, forecast []domain.DayForecast) []domain.DayPlan {
	used := map[string]int{}
	plans := make([]domain.DayPlan, 0, p.Days)
	for day := 1; day <= p.Days; day++ {
		fc := domain.DayForecast{Tag: domain.ForecastClear}
		if day-1 < len(forecast) {
			fc = forecast[day-1]
		}
		ranked := Rerank(cands, fc.Tag)

		rx := relaxed{}
		var applied []domain.Relaxation
		picks := a.fillDay(ranked, p, fc.Tag, used, rx)
		for _, r := range a.opts.Relaxation {
			if len(picks) > 0 {
				break
			}
			rx[r] = true
			applied = append(applied, r)
			log.Info().Int("day", day).Str("relaxation", string(r)).Msg("day empty, relaxing constraint")
			picks = a.fillDay(ranked, p, fc.Tag, used, rx)
		}

		if len(picks) == 0 {
			log.Warn().Int("day", day).Int("candidates", len(cands)).Msg("day infeasible after relaxation")
			plans = append(plans, domain.DayPlan{
				Day:         day,
				Status:      domain.DayInfeasible,
				Forecast:    fc.Tag,
				Venues:      []domain.ScheduledVenue{},
				Relaxations: applied,
				AccessibilityNotes: []string{
					"No venue satisfies the accessibility, budget and fatigue limits for this day, even after relaxation",
				},
				WeatherNotes: weatherNotes(fc.Tag, fc),
			})
			continue
		}
		for _, pk := range picks {
			used[pk.cand.Venue.ID]++
		}
		plans = append(plans, a.schedule(day, fc, picks, applied, p))
	}
	return plans
}

// fillDay greedily takes the best scoring candidate that still fits the
// remaining budget, the venue cap and the fatigue ceiling. Cumulative
// difficulty stays strictly below the ceiling. Weather fit is part of the
// score; the reranked order only settles exact ties, since a candidate must
// score strictly higher to displace an earlier one.
func (a *Assembler) fillDay(ranked []Candidate, p domain.UserPreferences, tag domain.ForecastTag, used map[string]int, rx relaxed) []pick {
	budget := a.cost.DayBudget(p)
	if rx[domain.RelaxBudget] {
		budget *= 1 + a.opts.BudgetOverage
	}
	remaining := budget
	fatigue := 0
	indoor := 0
	taken := map[string]bool{}
	var picks []pick

	for len(picks) < a.opts.MaxVenuesPerDay {
		best, bestScore := -1, math.Inf(-1)
		var bestLeg *domain.TransportSegment
		for i, c := range ranked {
			if taken[c.Venue.ID] {
				continue
			}
			if fatigue+difficulty(c.Venue) >= a.opts.FatigueCeiling {
				continue
			}
			var leg *domain.TransportSegment
			spend := c.EstCost
			if n := len(picks); n > 0 {
				seg := a.cost.Leg(picks[n-1].cand.Venue, c.Venue, p)
				leg = &seg
				spend += seg.Cost
			}
			if spend > remaining {
				continue
			}
			prev := domain.Category("")
			if n := len(picks); n > 0 {
				prev = picks[n-1].cand.Venue.Category
			}
			s := a.score(c, tag, budget, prev, used[c.Venue.ID], indoor, len(picks), rx)
			if s > bestScore {
				best, bestScore, bestLeg = i, s, leg
			}
		}
		if best < 0 {
			break
		}
		c := ranked[best]
		picks = append(picks, pick{cand: c, leg: bestLeg})
		taken[c.Venue.ID] = true
		remaining -= c.EstCost
		if bestLeg != nil {
			remaining -= bestLeg.Cost
		}
		fatigue += difficulty(c.Venue)
		if c.Venue.Weather == domain.Indoor {
			indoor++
		}
	}
	return picks
}

func (a *Assembler) score(c Candidate, tag domain.ForecastTag, budget float64, prev domain.Category, repeats, indoor, picked int, rx relaxed) float64 {
	w := a.opts.Weights
	s := w.Accessibility * c.AccessConfidence()

	if !rx[domain.RelaxWeather] {
		s += w.Weather * WeatherFit(c.Venue.Weather, tag)
		want := int(math.Ceil(TargetIndoorRatio(tag) * float64(a.opts.MaxVenuesPerDay)))
		need := want - indoor
		if c.Venue.Weather == domain.Indoor && need > 0 {
			if need >= a.opts.MaxVenuesPerDay-picked {
				s += w.Weather * 2
			} else {
				s += w.Weather * 0.5
			}
		}
	}
	if budget > 0 {
		s += w.Cost * math.Max(-1, 1-c.EstCost/budget)
	}
	if !rx[domain.RelaxDiversity] && prev != "" && c.Venue.Category == prev {
		s -= w.Diversity
	}
	s -= w.Repeat * float64(repeats)
	s -= w.Trust * float64(c.Venue.SourceRank)
	return s
}

func (a *Assembler) schedule(day int, fc domain.DayForecast, picks []pick, applied []domain.Relaxation, p domain.UserPreferences) domain.DayPlan {
	plan := domain.DayPlan{
		Day:                day,
		Status:             domain.DayFilled,
		Forecast:           fc.Tag,
		Venues:             make([]domain.ScheduledVenue, 0, len(picks)),
		Relaxations:        applied,
		AccessibilityNotes: []string{},
		WeatherNotes:       weatherNotes(fc.Tag, fc),
	}
	clock := a.opts.DayStartMinutes
	fatigue := 0
	rested := false
	confirmed, required := 0, 0

	for _, pk := range picks {
		c := pk.cand
		if pk.leg != nil {
			clock += pk.leg.Minutes
			plan.TransportCost += pk.leg.Cost
		}
		sv := domain.ScheduledVenue{
			Venue:         c.Venue,
			Arrival:       fmt.Sprintf("%02d:%02d", clock/60%24, clock%60),
			EstimatedCost: round2(c.EstCost),
			Unverified:    c.Unverified,
			TravelFrom:    pk.leg,
		}
		clock += visitMinutes[c.Venue.Category]
		fatigue += difficulty(c.Venue)
		if !rested && fatigue >= a.opts.RestThreshold {
			sv.RestStopAfter = true
			rested = true
			clock += a.opts.RestMinutes
			plan.AccessibilityNotes = append(plan.AccessibilityNotes,
				fmt.Sprintf("Rest stop after %s (cumulative difficulty %d)", c.Venue.Name, fatigue))
		}
		plan.Venues = append(plan.Venues, sv)
		plan.TotalCost += c.EstCost

		plan.AccessibilityNotes = append(plan.AccessibilityNotes, unverifiedNote(c)...)
		if c.Venue.Provenance.Source == domain.SourceAI {
			plan.AccessibilityNotes = append(plan.AccessibilityNotes,
				fmt.Sprintf("%s: details are AI-generated, confirm opening hours and access before visiting", c.Venue.Name))
		}
		confirmed += c.Confirmed
		required += c.Required
	}

	plan.TotalCost = round2(plan.TotalCost + plan.TransportCost)
	plan.TransportCost = round2(plan.TransportCost)
	if n := p.Family.Total(); n > 0 {
		plan.PerPersonCost = round2(plan.TotalCost / float64(n))
	}
	plan.Difficulty = fatigue
	if required > 0 {
		plan.AccessibilityNotes = append(plan.AccessibilityNotes,
			fmt.Sprintf("%d of %d required accessibility checks confirmed", confirmed, required))
	}
	if slices.Contains(applied, domain.RelaxBudget) && plan.TotalCost > a.cost.DayBudget(p) {
		plan.AccessibilityNotes = append(plan.AccessibilityNotes,
			fmt.Sprintf("Over budget: %s spent against %s, within the %.0f%% overage tolerance",
				money(plan.TotalCost), money(a.cost.DayBudget(p)), a.opts.BudgetOverage*100))
	}
	return plan
}

func difficulty(v domain.VenueRecord) int {
	if v.Difficulty < 1 {
		return 1
	}
	return v.Difficulty
}
