package sources

import (
	"fmt"
	"strings"

	"hk_itinerary/internal/domain"
)

const systemPrompt = `You are a Hong Kong tourism expert specialising in accessible travel for families and seniors.
Only recommend real places in Hong Kong with accurate coordinates. When you do not know whether a venue
has a facility, use null instead of guessing. Return ONLY valid JSON, no other text.`

// venueCount mirrors the planner's appetite: three per day, capped at ten.
func venueCount(days int) int {
	return min(max(days, 1)*3, 10)
}

func joinOrNone[T ~string](xs []T) string {
	if len(xs) == 0 {
		return "None"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = string(x)
	}
	return strings.Join(parts, ", ")
}

func generateVenuePrompt(c domain.QueryCriteria) string {
	weather := ""
	if c.Weather != "" {
		weather = fmt.Sprintf("\n        Expected weather: %s. Favour indoor venues if it is rain, extreme_heat or extreme_cold.", c.Weather)
	}
	return fmt.Sprintf(`
        Generate %d Hong Kong venues for a %d-day trip.
        Family: %d adults, %d children, %d seniors.
        Budget: HKD %.0f-%.0f per person per day.
        Accessibility needs: %s.
        Dietary needs: %s.%s
        Include a mix of attractions, museums, parks, restaurants and transport.
        Return the response STRICTLY as a JSON array with:
        [
            {
            "id": "ai_001",
            "name": "Venue Name",
            "category": "attraction|museum|park|restaurant|transport",
            "description": "Short description with accessibility highlights",
            "district": "Hong Kong district name",
            "address": "Full address",
            "latitude": <float>,
            "longitude": <float>,
            "cost_range": [<min HKD>, <max HKD>],
            "accessibility": {
                "wheelchair_accessible": true|false|null,
                "has_elevator": true|false|null,
                "accessible_toilets": true|false|null,
                "step_free_access": true|false|null,
                "notes": ["accessibility note"]
            },
            "dietary_options": {
                "soft_meals": true|false|null,
                "vegetarian": true|false|null,
                "halal": true|false|null
            },
            "elderly_friendly": true|false|null,
            "weather_suitability": "indoor|outdoor|mixed",
            "difficulty": <1-5>
            }
        ]`,
		venueCount(c.Days), c.Days,
		c.Family.Adults, c.Family.Children, c.Family.Seniors,
		c.Budget.Min, c.Budget.Max,
		joinOrNone(c.Mobility), joinOrNone(c.Dietary), weather)
}
