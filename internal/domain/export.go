package domain

import (
	"strconv"
	"strings"
)

// ItineraryRow is the flattened per-venue view used by CSV export.
type ItineraryRow struct {
	Day           int
	DayStatus     DayStatus
	Order         int
	Arrival       string
	VenueID       string
	Name          string
	Category      Category
	District      string
	EstimatedCost float64
	RestStopAfter bool
	Source        SourceKind
	Confidence    ConfidenceTier
	Unverified    []string
	Relaxations   []Relaxation
}

var RowHeader = []string{
	"day", "day_status", "order", "arrival", "venue_id", "name", "category", "district",
	"estimated_cost_hkd", "rest_stop_after", "source", "confidence", "unverified", "relaxations",
}

// Rows derives the CSV view from the canonical itinerary. Infeasible days
// produce a single row with no venue so they stay visible.
func (it Itinerary) Rows() []ItineraryRow {
	var out []ItineraryRow
	for _, d := range it.Days {
		if len(d.Venues) == 0 {
			out = append(out, ItineraryRow{Day: d.Day, DayStatus: d.Status, Relaxations: d.Relaxations})
			continue
		}
		for i, sv := range d.Venues {
			out = append(out, ItineraryRow{
				Day:           d.Day,
				DayStatus:     d.Status,
				Order:         i + 1,
				Arrival:       sv.Arrival,
				VenueID:       sv.Venue.ID,
				Name:          sv.Venue.Name,
				Category:      sv.Venue.Category,
				District:      sv.Venue.District,
				EstimatedCost: sv.EstimatedCost,
				RestStopAfter: sv.RestStopAfter,
				Source:        sv.Venue.Provenance.Source,
				Confidence:    sv.Venue.Provenance.Confidence,
				Unverified:    sv.Unverified,
				Relaxations:   d.Relaxations,
			})
		}
	}
	return out
}

func (r ItineraryRow) Record() []string {
	order := ""
	if r.Order > 0 {
		order = strconv.Itoa(r.Order)
	}
	relax := make([]string, 0, len(r.Relaxations))
	for _, x := range r.Relaxations {
		relax = append(relax, string(x))
	}
	return []string{
		strconv.Itoa(r.Day),
		string(r.DayStatus),
		order,
		r.Arrival,
		r.VenueID,
		r.Name,
		string(r.Category),
		r.District,
		strconv.FormatFloat(r.EstimatedCost, 'f', 2, 64),
		strconv.FormatBool(r.RestStopAfter),
		string(r.Source),
		string(r.Confidence),
		strings.Join(r.Unverified, ";"),
		strings.Join(relax, ";"),
	}
}
