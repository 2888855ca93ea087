package app

import (
	"sort"

	"hk_itinerary/internal/domain"
)

// TargetIndoorRatio is the minimum share of indoor picks wanted for a forecast.
func TargetIndoorRatio(tag domain.ForecastTag) float64 {
	switch tag {
	case domain.ForecastRain:
		return 2.0 / 3.0
	case domain.ForecastExtremeHeat, domain.ForecastExtremeCold:
		return 0.5
	}
	return 0.3
}

// WeatherFit scores how well a venue suits the day, in [0,1].
func WeatherFit(w domain.WeatherSuitability, tag domain.ForecastTag) float64 {
	switch tag {
	case domain.ForecastRain:
		switch w {
		case domain.Indoor:
			return 1
		case domain.Outdoor:
			return 0
		}
		return 0.6
	case domain.ForecastExtremeHeat, domain.ForecastExtremeCold:
		switch w {
		case domain.Indoor:
			return 1
		case domain.Outdoor:
			return 0.3
		}
		return 0.6
	}
	switch w {
	case domain.Outdoor:
		return 1
	case domain.Indoor:
		return 0.6
	}
	return 0.8
}

// Rerank reorders candidates inside each category by weather fit. Every
// candidate is still present and categories keep their slots in the list.
func Rerank(cands []Candidate, tag domain.ForecastTag) []Candidate {
	out := append([]Candidate{}, cands...)
	slots := map[domain.Category][]int{}
	for i, c := range out {
		slots[c.Venue.Category] = append(slots[c.Venue.Category], i)
	}
	for _, idx := range slots {
		group := make([]Candidate, len(idx))
		for j, i := range idx {
			group[j] = out[i]
		}
		sort.SliceStable(group, func(a, b int) bool {
			return WeatherFit(group[a].Venue.Weather, tag) > WeatherFit(group[b].Venue.Weather, tag)
		})
		for j, i := range idx {
			out[i] = group[j]
		}
	}
	return out
}

func weatherNotes(tag domain.ForecastTag, d domain.DayForecast) []string {
	var notes []string
	switch tag {
	case domain.ForecastRain:
		notes = append(notes, "Rain expected: indoor venues preferred, allow extra time on wet ramps and pavements")
	case domain.ForecastExtremeHeat:
		notes = append(notes, "Very hot weather: plan shaded rest breaks and keep hydrated")
	case domain.ForecastExtremeCold:
		notes = append(notes, "Cold weather: bring warm layers, outdoor stops kept short")
	}
	if d.Description != "" {
		notes = append(notes, "Forecast: "+d.Description)
	}
	return notes
}
