package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/domain"
	"hk_itinerary/internal/shared"
)

type Discounts struct {
	Senior float64
	Child  float64
}

// Weights of the composite packing score.
type Weights struct {
	Accessibility float64
	Weather       float64
	Cost          float64
	Diversity     float64
	Repeat        float64
	Trust         float64
}

type Tariff struct {
	Base       float64
	PerKm      float64
	SpeedKmh   float64
	PerVehicle bool
}

type Options struct {
	MaxVenuesPerDay int
	FatigueCeiling  int
	RestThreshold   int
	DedupRadiusM    float64
	SourceTimeout   time.Duration
	Discounts       Discounts
	BudgetOverage   float64
	Relaxation      []domain.Relaxation
	Weights         Weights
	Tariffs         map[domain.TransportMode]Tariff
	WalkMaxKm       float64
	DayStartMinutes int
	RestMinutes     int
}

func DefaultOptions() Options {
	return Options{
		MaxVenuesPerDay: 3,
		FatigueCeiling:  10,
		RestThreshold:   6,
		DedupRadiusM:    150,
		SourceTimeout:   8 * time.Second,
		Discounts:       Discounts{Senior: 0.2, Child: 0.1},
		BudgetOverage:   0.10,
		Relaxation:      []domain.Relaxation{domain.RelaxWeather, domain.RelaxDiversity, domain.RelaxBudget},
		Weights: Weights{
			Accessibility: 4,
			Weather:       2,
			Cost:          1,
			Diversity:     1.5,
			Repeat:        20,
			Trust:         0.1,
		},
		Tariffs: map[domain.TransportMode]Tariff{
			domain.ModeMTR:     {Base: 5, PerKm: 1.2, SpeedKmh: 30},
			domain.ModeBus:     {Base: 4, PerKm: 0.8, SpeedKmh: 18},
			domain.ModeTaxi:    {Base: 27, PerKm: 9, SpeedKmh: 25, PerVehicle: true},
			domain.ModeFerry:   {Base: 5, PerKm: 0.5, SpeedKmh: 20},
			domain.ModeWalking: {SpeedKmh: 3.5},
		},
		WalkMaxKm:       0.8,
		DayStartMinutes: 9*60 + 30,
		RestMinutes:     30,
	}
}

// OptionsFromConfig overlays the environment on the defaults.
func OptionsFromConfig(c shared.Config) Options {
	o := DefaultOptions()
	o.MaxVenuesPerDay = c.MaxVenuesPerDay
	o.FatigueCeiling = c.FatigueCeiling
	o.RestThreshold = c.RestThreshold
	o.DedupRadiusM = c.DedupRadiusM
	o.SourceTimeout = c.SourceTimeout
	o.Discounts = Discounts{Senior: c.SeniorDiscount, Child: c.ChildDiscount}
	o.BudgetOverage = c.BudgetOverage
	if len(c.RelaxationOrder) > 0 {
		o.Relaxation = nil
		for _, r := range c.RelaxationOrder {
			switch rx := domain.Relaxation(r); rx {
			case domain.RelaxWeather, domain.RelaxDiversity, domain.RelaxBudget:
				o.Relaxation = append(o.Relaxation, rx)
			default:
				log.Warn().Str("relaxation", r).Msg("unknown relaxation step ignored")
			}
		}
	}
	return o.normalized()
}

// normalized replaces out-of-range values with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	fix := func(name string, bad bool, apply func()) {
		if bad {
			log.Warn().Str("option", name).Msg("invalid engine option, using default")
			apply()
		}
	}
	fix("max_venues_per_day", o.MaxVenuesPerDay < 1, func() { o.MaxVenuesPerDay = d.MaxVenuesPerDay })
	// the ceiling is exclusive, so 2 is the smallest that admits a venue
	fix("fatigue_ceiling", o.FatigueCeiling < 2, func() { o.FatigueCeiling = d.FatigueCeiling })
	fix("rest_threshold", o.RestThreshold < 1 || o.RestThreshold >= o.FatigueCeiling, func() {
		o.RestThreshold = min(d.RestThreshold, o.FatigueCeiling-1)
	})
	fix("dedup_radius_m", o.DedupRadiusM < 0, func() { o.DedupRadiusM = d.DedupRadiusM })
	fix("source_timeout", o.SourceTimeout <= 0, func() { o.SourceTimeout = d.SourceTimeout })
	fix("senior_discount", o.Discounts.Senior < 0 || o.Discounts.Senior > 1, func() { o.Discounts.Senior = d.Discounts.Senior })
	fix("child_discount", o.Discounts.Child < 0 || o.Discounts.Child > 1, func() { o.Discounts.Child = d.Discounts.Child })
	fix("budget_overage", o.BudgetOverage < 0, func() { o.BudgetOverage = d.BudgetOverage })
	if o.Tariffs == nil {
		o.Tariffs = d.Tariffs
	}
	if o.Weights == (Weights{}) {
		o.Weights = d.Weights
	}
	if o.DayStartMinutes == 0 {
		o.DayStartMinutes = d.DayStartMinutes
	}
	return o
}

func (o Options) relaxesBudget() bool {
	for _, r := range o.Relaxation {
		if r == domain.RelaxBudget {
			return true
		}
	}
	return false
}
