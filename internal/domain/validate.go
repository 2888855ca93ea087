package domain

import (
	"math"
	"strings"
)

// Validate enforces the ingestion invariants of a VenueRecord.
func Validate(v VenueRecord) error {
	bad := func(field, reason string) error {
		return &ValidationError{RecordID: v.ID, Field: field, Reason: reason}
	}
	if strings.TrimSpace(v.ID) == "" {
		return bad("id", "missing")
	}
	if strings.TrimSpace(v.Name) == "" {
		return bad("name", "missing")
	}
	if _, ok := ParseCategory(string(v.Category)); !ok {
		return bad("category", "unknown category "+string(v.Category))
	}
	if math.IsNaN(v.Location.Lat) || math.IsNaN(v.Location.Lon) || !v.Location.InHongKong() {
		return bad("location", "outside Hong Kong bounding box")
	}
	if v.Cost.Min < 0 || v.Cost.Max < 0 {
		return bad("cost_range", "negative cost")
	}
	if v.Cost.Min > v.Cost.Max {
		return bad("cost_range", "min exceeds max")
	}
	if v.Difficulty < 1 || v.Difficulty > 5 {
		return bad("difficulty", "must be within 1..5")
	}
	if _, ok := ParseWeatherSuitability(string(v.Weather)); !ok || v.Weather == "" {
		return bad("weather_suitability", "unknown value "+string(v.Weather))
	}
	return nil
}
