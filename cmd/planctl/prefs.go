package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"hk_itinerary/internal/domain"
)

// loadPrefs decodes a preferences document such as:
//
//	family: {adults: 2, seniors: 1}
//	mobility_needs: [wheelchair, rest_frequent]
//	dietary_restrictions: [soft_meals]
//	budget: {min: 100, max: 400}
//	days: 2
//	transport: [mtr, taxi]
func loadPrefs(r io.Reader) (domain.UserPreferences, error) {
	var p domain.UserPreferences
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}

func parseForecast(s string) ([]domain.DayForecast, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []domain.DayForecast
	for _, part := range strings.Split(s, ",") {
		tag, ok := domain.ParseForecastTag(part)
		if !ok {
			return nil, fmt.Errorf("unknown forecast tag %q", strings.TrimSpace(part))
		}
		out = append(out, domain.DayForecast{Tag: tag})
	}
	return out, nil
}
