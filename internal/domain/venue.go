package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryAttraction Category = "attraction"
	CategoryMuseum     Category = "museum"
	CategoryPark       Category = "park"
	CategoryRestaurant Category = "restaurant"
	CategoryTransport  Category = "transport"
)

var Categories = []Category{CategoryAttraction, CategoryMuseum, CategoryPark, CategoryRestaurant, CategoryTransport}

// ParseCategory normalises loose source spellings; "shopping" folds into attraction.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attraction", "attractions", "sightseeing", "shopping", "landmark":
		return CategoryAttraction, true
	case "museum", "gallery":
		return CategoryMuseum, true
	case "park", "garden", "nature":
		return CategoryPark, true
	case "restaurant", "dining", "food", "cafe":
		return CategoryRestaurant, true
	case "transport", "transportation":
		return CategoryTransport, true
	}
	return "", false
}

type WeatherSuitability string

const (
	Indoor  WeatherSuitability = "indoor"
	Outdoor WeatherSuitability = "outdoor"
	Either  WeatherSuitability = "either"
)

func ParseWeatherSuitability(s string) (WeatherSuitability, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indoor":
		return Indoor, true
	case "outdoor":
		return Outdoor, true
	case "either", "mixed", "indoor_outdoor", "both", "":
		return Either, true
	}
	return "", false
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Hong Kong bounding box; records outside it are rejected at ingestion.
const (
	MinLat = 22.1
	MaxLat = 22.6
	MinLon = 113.8
	MaxLon = 114.5
)

func (l Location) InHongKong() bool {
	return l.Lat >= MinLat && l.Lat <= MaxLat && l.Lon >= MinLon && l.Lon <= MaxLon
}

type MobilityFlag string

const (
	FlagWheelchair        MobilityFlag = "wheelchair_accessible"
	FlagElevator          MobilityFlag = "has_elevator"
	FlagAccessibleToilets MobilityFlag = "accessible_toilets"
	FlagStepFree          MobilityFlag = "step_free_access"
	FlagParentFacilities  MobilityFlag = "parent_facilities"
	FlagRestAreas         MobilityFlag = "rest_areas"
)

var MobilityFlags = []MobilityFlag{FlagWheelchair, FlagElevator, FlagAccessibleToilets, FlagStepFree, FlagParentFacilities, FlagRestAreas}

// ParseMobilityNeed accepts flag names and the user-facing needs collected by the front-end.
func ParseMobilityNeed(s string) (MobilityFlag, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wheelchair", "wheelchair_accessible":
		return FlagWheelchair, true
	case "elevator_only", "elevator", "has_elevator":
		return FlagElevator, true
	case "accessible_toilets", "toilets":
		return FlagAccessibleToilets, true
	case "avoid_stairs", "walking_aid", "step_free", "step_free_access":
		return FlagStepFree, true
	case "baby_stroller", "stroller", "parent_facilities":
		return FlagParentFacilities, true
	case "rest_frequent", "rest_areas":
		return FlagRestAreas, true
	}
	return "", false
}

type AccessibilityInfo struct {
	Wheelchair        Tri      `json:"wheelchair_accessible"`
	Elevator          Tri      `json:"has_elevator"`
	AccessibleToilets Tri      `json:"accessible_toilets"`
	StepFree          Tri      `json:"step_free_access"`
	ParentFacilities  Tri      `json:"parent_facilities"`
	RestAreas         Tri      `json:"rest_areas"`
	Notes             []string `json:"notes,omitempty"`
}

func (a AccessibilityInfo) Get(f MobilityFlag) Tri {
	switch f {
	case FlagWheelchair:
		return a.Wheelchair
	case FlagElevator:
		return a.Elevator
	case FlagAccessibleToilets:
		return a.AccessibleToilets
	case FlagStepFree:
		return a.StepFree
	case FlagParentFacilities:
		return a.ParentFacilities
	case FlagRestAreas:
		return a.RestAreas
	}
	return Unknown
}

func (a AccessibilityInfo) Merge(b AccessibilityInfo) AccessibilityInfo {
	return AccessibilityInfo{
		Wheelchair:        MergeTri(a.Wheelchair, b.Wheelchair),
		Elevator:          MergeTri(a.Elevator, b.Elevator),
		AccessibleToilets: MergeTri(a.AccessibleToilets, b.AccessibleToilets),
		StepFree:          MergeTri(a.StepFree, b.StepFree),
		ParentFacilities:  MergeTri(a.ParentFacilities, b.ParentFacilities),
		RestAreas:         MergeTri(a.RestAreas, b.RestAreas),
		Notes:             mergeNotes(a.Notes, b.Notes),
	}
}

type DietaryFlag string

const (
	DietSoftMeals       DietaryFlag = "soft_meals"
	DietVegetarian      DietaryFlag = "vegetarian"
	DietHalal           DietaryFlag = "halal"
	DietNoSeafood       DietaryFlag = "no_seafood"
	DietAllergyFriendly DietaryFlag = "allergy_friendly"
)

func ParseDietary(s string) (DietaryFlag, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_") {
	case "soft_meals", "soft":
		return DietSoftMeals, true
	case "vegetarian", "vegan":
		return DietVegetarian, true
	case "halal":
		return DietHalal, true
	case "no_seafood", "seafood_free":
		return DietNoSeafood, true
	case "allergy_friendly", "allergies", "allergy":
		return DietAllergyFriendly, true
	}
	return "", false
}

type DietaryInfo struct {
	SoftMeals       Tri `json:"soft_meals"`
	Vegetarian      Tri `json:"vegetarian"`
	Halal           Tri `json:"halal"`
	NoSeafood       Tri `json:"no_seafood"`
	AllergyFriendly Tri `json:"allergy_friendly"`
}

func (d DietaryInfo) Get(f DietaryFlag) Tri {
	switch f {
	case DietSoftMeals:
		return d.SoftMeals
	case DietVegetarian:
		return d.Vegetarian
	case DietHalal:
		return d.Halal
	case DietNoSeafood:
		return d.NoSeafood
	case DietAllergyFriendly:
		return d.AllergyFriendly
	}
	return Unknown
}

// Any reports whether the source said anything about food at all.
func (d DietaryInfo) Any() bool {
	return d.SoftMeals.Known() || d.Vegetarian.Known() || d.Halal.Known() || d.NoSeafood.Known() || d.AllergyFriendly.Known()
}

func (d DietaryInfo) Merge(o DietaryInfo) DietaryInfo {
	return DietaryInfo{
		SoftMeals:       MergeTri(d.SoftMeals, o.SoftMeals),
		Vegetarian:      MergeTri(d.Vegetarian, o.Vegetarian),
		Halal:           MergeTri(d.Halal, o.Halal),
		NoSeafood:       MergeTri(d.NoSeafood, o.NoSeafood),
		AllergyFriendly: MergeTri(d.AllergyFriendly, o.AllergyFriendly),
	}
}

const CurrencyHKD = "HKD"

// CostRange is an admission price band. Estimated marks a placeholder the
// source did not publish; a verified 0-0 is a real free entry.
type CostRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Currency  string  `json:"currency"`
	Estimated bool    `json:"estimated,omitempty"`
}

func (c CostRange) Mid() float64 { return (c.Min + c.Max) / 2 }

type SourceKind string

const (
	SourceOffline    SourceKind = "offline_curated"
	SourceDatabase   SourceKind = "cached_database"
	SourceGovernment SourceKind = "government_api"
	SourceAI         SourceKind = "ai_generated"
)

// SourcePriority is the fixed aggregation order, most trusted first.
var SourcePriority = []SourceKind{SourceOffline, SourceDatabase, SourceGovernment, SourceAI}

// Rank is the source_rank of records from this source (lower = more trusted).
func (k SourceKind) Rank() int {
	for i, s := range SourcePriority {
		if s == k {
			return i
		}
	}
	return len(SourcePriority)
}

type ConfidenceTier string

const (
	ConfidenceVerified  ConfidenceTier = "verified"
	ConfidenceCached    ConfidenceTier = "cached"
	ConfidenceOfficial  ConfidenceTier = "official"
	ConfidenceGenerated ConfidenceTier = "generated"
)

func (k SourceKind) Confidence() ConfidenceTier {
	switch k {
	case SourceOffline:
		return ConfidenceVerified
	case SourceDatabase:
		return ConfidenceCached
	case SourceGovernment:
		return ConfidenceOfficial
	}
	return ConfidenceGenerated
}

type Provenance struct {
	Source       SourceKind     `json:"source"`
	Confidence   ConfidenceTier `json:"confidence"`
	FetchedAt    time.Time      `json:"fetched_at"`
	SourceID     string         `json:"source_id"`
	Contributors []SourceKind   `json:"contributors,omitempty"`
}

func NewProvenance(k SourceKind, sourceID string, at time.Time) Provenance {
	return Provenance{Source: k, Confidence: k.Confidence(), FetchedAt: at.UTC(), SourceID: sourceID, Contributors: []SourceKind{k}}
}

type VenueRecord struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Category        Category           `json:"category"`
	Description     string             `json:"description,omitempty"`
	District        string             `json:"district,omitempty"`
	Address         string             `json:"address,omitempty"`
	Location        Location           `json:"location"`
	Accessibility   AccessibilityInfo  `json:"accessibility"`
	Dietary         DietaryInfo        `json:"dietary"`
	Cost            CostRange          `json:"cost_range"`
	Weather         WeatherSuitability `json:"weather_suitability"`
	Difficulty      int                `json:"difficulty"`
	ElderlyFriendly Tri                `json:"elderly_friendly"`
	Provenance      Provenance         `json:"provenance"`
	SourceRank      int                `json:"source_rank"`
}

// ServesFood decides whether dietary rules apply: restaurants always,
// transport only when the source describes its food service.
func (v VenueRecord) ServesFood() bool {
	return v.Category == CategoryRestaurant || (v.Category == CategoryTransport && v.Dietary.Any())
}

func mergeNotes(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, n := range append(append([]string{}, a...), b...) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
