// Package sources implements the four venue tiers the aggregator draws from.
package sources

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"hk_itinerary/internal/domain"
)

//go:embed data/venues.yaml
var curatedYAML []byte

type curatedFlags struct {
	Wheelchair        *bool    `yaml:"wheelchair_accessible"`
	Elevator          *bool    `yaml:"has_elevator"`
	AccessibleToilets *bool    `yaml:"accessible_toilets"`
	StepFree          *bool    `yaml:"step_free_access"`
	ParentFacilities  *bool    `yaml:"parent_facilities"`
	RestAreas         *bool    `yaml:"rest_areas"`
	Notes             []string `yaml:"notes"`
}

type curatedDiet struct {
	SoftMeals       *bool `yaml:"soft_meals"`
	Vegetarian      *bool `yaml:"vegetarian"`
	Halal           *bool `yaml:"halal"`
	NoSeafood       *bool `yaml:"no_seafood"`
	AllergyFriendly *bool `yaml:"allergy_friendly"`
}

type curatedCost struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type curatedVenue struct {
	ID              string       `yaml:"id"`
	Name            string       `yaml:"name"`
	Category        string       `yaml:"category"`
	Description     string       `yaml:"description"`
	District        string       `yaml:"district"`
	Address         string       `yaml:"address"`
	Lat             float64      `yaml:"lat"`
	Lon             float64      `yaml:"lon"`
	Cost            curatedCost  `yaml:"cost"`
	Weather         string       `yaml:"weather"`
	Difficulty      int          `yaml:"difficulty"`
	ElderlyFriendly *bool        `yaml:"elderly_friendly"`
	Accessibility   curatedFlags `yaml:"accessibility"`
	Dietary         curatedDiet  `yaml:"dietary"`
}

func (c curatedVenue) record(at time.Time) domain.VenueRecord {
	cat, _ := domain.ParseCategory(c.Category)
	w, _ := domain.ParseWeatherSuitability(c.Weather)
	return domain.VenueRecord{
		ID:          c.ID,
		Name:        c.Name,
		Category:    cat,
		Description: c.Description,
		District:    c.District,
		Address:     c.Address,
		Location:    domain.Location{Lat: c.Lat, Lon: c.Lon},
		Accessibility: domain.AccessibilityInfo{
			Wheelchair:        domain.TriFromPtr(c.Accessibility.Wheelchair),
			Elevator:          domain.TriFromPtr(c.Accessibility.Elevator),
			AccessibleToilets: domain.TriFromPtr(c.Accessibility.AccessibleToilets),
			StepFree:          domain.TriFromPtr(c.Accessibility.StepFree),
			ParentFacilities:  domain.TriFromPtr(c.Accessibility.ParentFacilities),
			RestAreas:         domain.TriFromPtr(c.Accessibility.RestAreas),
			Notes:             c.Accessibility.Notes,
		},
		Dietary: domain.DietaryInfo{
			SoftMeals:       domain.TriFromPtr(c.Dietary.SoftMeals),
			Vegetarian:      domain.TriFromPtr(c.Dietary.Vegetarian),
			Halal:           domain.TriFromPtr(c.Dietary.Halal),
			NoSeafood:       domain.TriFromPtr(c.Dietary.NoSeafood),
			AllergyFriendly: domain.TriFromPtr(c.Dietary.AllergyFriendly),
		},
		Cost:            domain.CostRange{Min: c.Cost.Min, Max: c.Cost.Max, Currency: domain.CurrencyHKD},
		Weather:         w,
		Difficulty:      c.Difficulty,
		ElderlyFriendly: domain.TriFromPtr(c.ElderlyFriendly),
		Provenance:      domain.NewProvenance(domain.SourceOffline, c.ID, at),
		SourceRank:      domain.SourceOffline.Rank(),
	}
}

// ParseCurated decodes a curated venue document. Every record must pass
// domain.Validate; a bad entry fails the whole file.
func ParseCurated(data []byte, at time.Time) ([]domain.VenueRecord, error) {
	var doc struct {
		Venues []curatedVenue `yaml:"venues"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode curated venues: %w", err)
	}
	out := make([]domain.VenueRecord, 0, len(doc.Venues))
	for _, c := range doc.Venues {
		v := c.record(at)
		if err := domain.Validate(v); err != nil {
			return nil, fmt.Errorf("curated venue %s: %w", c.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Curated returns the embedded dataset.
func Curated() ([]domain.VenueRecord, error) {
	return ParseCurated(curatedYAML, time.Now())
}

// Offline serves the curated dataset from memory. It never touches the network.
type Offline struct {
	venues []domain.VenueRecord
}

func NewOffline(venues []domain.VenueRecord) *Offline {
	return &Offline{venues: venues}
}

func (s *Offline) Kind() domain.SourceKind { return domain.SourceOffline }

// Fetch returns the whole dataset. Venues with an explicit No are kept so
// they can veto weaker sources during the merge.
func (s *Offline) Fetch(ctx context.Context, _ domain.QueryCriteria) ([]domain.VenueRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.AsSourceError(domain.SourceOffline, err)
	}
	out := make([]domain.VenueRecord, len(s.venues))
	copy(out, s.venues)
	return out, nil
}
