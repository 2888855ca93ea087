package sources

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"hk_itinerary/internal/domain"
)

/********** alias registries (single source of truth) **********/

var venueAliases = map[string][]string{
	"id":          {"id", "venue_id", "slug"},
	"name":        {"name", "name_en", "title", "venue_name"},
	"category":    {"category", "type", "kind"},
	"description": {"description", "summary", "about"},
	"district":    {"district", "area", "neighbourhood", "neighborhood"},
	"address":     {"address", "full_address", "location.address"},
	"weather":     {"weather_suitability", "weather", "setting"},
}

var govAliases = map[string][]string{
	"name":        {"Attraction", "Name (English)", "Name", "name"},
	"description": {"Description", "description"},
	"address":     {"Address", "address"},
	"district":    {"District", "district"},
	"category":    {"Category", "category"},
	"coords":      {"Latitude and longitude coordinates", "Coordinates"},
	"lat":         {"Latitude", "latitude"},
	"lon":         {"Longitude", "longitude"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

func firstRowAlias(row map[string]string, key string) string {
	for _, k := range govAliases[key] {
		if s := strings.TrimSpace(row[k]); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// triFlexible reads a tri-state flag from bool, "yes"/"no" strings or null.
// Anything it cannot read is Unknown, never Yes.
func triFlexible(m map[string]any, paths ...string) domain.Tri {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			return domain.TriOf(v)
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "y":
				return domain.Yes
			case "false", "no", "n":
				return domain.No
			}
		}
	}
	return domain.Unknown
}

// stableID synthesizes an id from the parts when the payload has none.
func stableID(prefix string, parts ...string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.Join(parts, "|"))))
	return prefix + hex.EncodeToString(sum[:6])
}

/********** AI venue mapper **********/

func mapAIVenue(m map[string]any, at time.Time) domain.VenueRecord {
	name := firstNonEmptyAlias(m, venueAliases, "name")
	cat, _ := domain.ParseCategory(firstNonEmptyAlias(m, venueAliases, "category"))
	weather, ok := domain.ParseWeatherSuitability(firstNonEmptyAlias(m, venueAliases, "weather"))
	if !ok {
		weather = domain.Either
	}

	v := domain.VenueRecord{
		ID:          firstNonEmptyAlias(m, venueAliases, "id"),
		Name:        name,
		Category:    cat,
		Description: firstNonEmptyAlias(m, venueAliases, "description"),
		District:    firstNonEmptyAlias(m, venueAliases, "district"),
		Address:     firstNonEmptyAlias(m, venueAliases, "address"),
		Weather:     weather,
		Difficulty:  2,
		Cost:        domain.CostRange{Currency: domain.CurrencyHKD},
		Accessibility: domain.AccessibilityInfo{
			Wheelchair:        triFlexible(m, "accessibility.wheelchair_accessible", "wheelchair_accessible"),
			Elevator:          triFlexible(m, "accessibility.has_elevator", "has_elevator"),
			AccessibleToilets: triFlexible(m, "accessibility.accessible_toilets", "accessible_toilets"),
			StepFree:          triFlexible(m, "accessibility.step_free_access", "step_free_access"),
			ParentFacilities:  triFlexible(m, "accessibility.parent_facilities", "parent_facilities"),
			RestAreas:         triFlexible(m, "accessibility.rest_areas", "rest_areas"),
		},
		Dietary: domain.DietaryInfo{
			SoftMeals:       triFlexible(m, "dietary.soft_meals", "dietary_options.soft_meals"),
			Vegetarian:      triFlexible(m, "dietary.vegetarian", "dietary_options.vegetarian"),
			Halal:           triFlexible(m, "dietary.halal", "dietary_options.halal"),
			NoSeafood:       triFlexible(m, "dietary.no_seafood", "dietary_options.no_seafood"),
			AllergyFriendly: triFlexible(m, "dietary.allergy_friendly", "dietary_options.allergy_friendly"),
		},
		ElderlyFriendly: triFlexible(m, "elderly_friendly"),
	}
	if lat := getFloatFlexible(m, "latitude", "lat", "location.lat"); lat != nil {
		v.Location.Lat = *lat
	}
	if lon := getFloatFlexible(m, "longitude", "lon", "lng", "location.lon", "location.lng"); lon != nil {
		v.Location.Lon = *lon
	}
	if f := getFloatFlexible(m, "cost_range.min", "cost_min", "min_cost"); f != nil {
		v.Cost.Min = *f
	}
	if f := getFloatFlexible(m, "cost_range.max", "cost_max", "max_cost"); f != nil {
		v.Cost.Max = *f
	}
	if arr, ok := lookupAny(m, "cost_range").([]any); ok && len(arr) == 2 {
		lo, _ := arr[0].(float64)
		hi, _ := arr[1].(float64)
		v.Cost.Min, v.Cost.Max = lo, hi
	}
	if notes, ok := lookupAny(m, "accessibility.notes").([]any); ok {
		for _, n := range notes {
			if s, ok := n.(string); ok && strings.TrimSpace(s) != "" {
				v.Accessibility.Notes = append(v.Accessibility.Notes, strings.TrimSpace(s))
			}
		}
	}
	if f := getFloatFlexible(m, "difficulty", "difficulty_level"); f != nil {
		v.Difficulty = int(*f)
	}
	if v.ID == "" {
		v.ID = stableID("ai_", name, string(cat))
	}
	v.Provenance = domain.NewProvenance(domain.SourceAI, v.ID, at)
	v.SourceRank = domain.SourceAI.Rank()
	return v
}

/********** government row mapper **********/

// govDefaultCost stands in for admission prices the open data does not publish.
var govDefaultCost = domain.CostRange{Min: 0, Max: 100, Currency: domain.CurrencyHKD, Estimated: true}

func mapGovRow(row map[string]string, at time.Time) domain.VenueRecord {
	name := firstRowAlias(row, "name")
	cat, ok := domain.ParseCategory(firstRowAlias(row, "category"))
	if !ok {
		cat = domain.CategoryAttraction
	}
	v := domain.VenueRecord{
		Name:        name,
		Category:    cat,
		Description: firstRowAlias(row, "description"),
		District:    firstRowAlias(row, "district"),
		Address:     firstRowAlias(row, "address"),
		Cost:        govDefaultCost,
		Weather:     domain.Either,
		Difficulty:  2,
		Accessibility: domain.AccessibilityInfo{
			Notes: []string{"Accessibility not published in government open data", "Admission price estimated"},
		},
	}
	if lat, lon, ok := parseCoords(firstRowAlias(row, "coords")); ok {
		v.Location = domain.Location{Lat: lat, Lon: lon}
	} else {
		lat, _ := strconv.ParseFloat(firstRowAlias(row, "lat"), 64)
		lon, _ := strconv.ParseFloat(firstRowAlias(row, "lon"), 64)
		v.Location = domain.Location{Lat: lat, Lon: lon}
	}
	v.ID = stableID("hktb_", name, v.Address)
	v.Provenance = domain.NewProvenance(domain.SourceGovernment, v.ID, at)
	v.SourceRank = domain.SourceGovernment.Rank()
	return v
}

func parseCoords(s string) (lat, lon float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
