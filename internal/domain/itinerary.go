package domain

import "time"

type DayStatus string

const (
	DayFilled     DayStatus = "filled"
	DayInfeasible DayStatus = "infeasible"
)

type ItineraryStatus string

const (
	StatusComplete ItineraryStatus = "complete"
	StatusPartial  ItineraryStatus = "partial"
	StatusFailed   ItineraryStatus = "failed"
)

// Relaxation names a soft constraint loosened to fill a day.
type Relaxation string

const (
	RelaxWeather   Relaxation = "weather"
	RelaxDiversity Relaxation = "diversity"
	RelaxBudget    Relaxation = "budget"
)

type TransportSegment struct {
	From       string        `json:"from"`
	To         string        `json:"to"`
	Mode       TransportMode `json:"mode"`
	DistanceKm float64       `json:"distance_km"`
	Minutes    int           `json:"minutes"`
	Cost       float64       `json:"cost"`
	Note       string        `json:"note,omitempty"`
}

type ScheduledVenue struct {
	Venue         VenueRecord       `json:"venue"`
	Arrival       string            `json:"arrival"`
	EstimatedCost float64           `json:"estimated_cost"`
	RestStopAfter bool              `json:"rest_stop_after"`
	Unverified    []string          `json:"unverified,omitempty"`
	TravelFrom    *TransportSegment `json:"travel_from,omitempty"`
}

type DayPlan struct {
	Day                int              `json:"day"`
	Status             DayStatus        `json:"status"`
	Forecast           ForecastTag      `json:"forecast"`
	Venues             []ScheduledVenue `json:"venues"`
	TotalCost          float64          `json:"day_total_cost"`
	PerPersonCost      float64          `json:"per_person_cost"`
	TransportCost      float64          `json:"transport_cost"`
	Difficulty         int              `json:"difficulty"`
	Relaxations        []Relaxation     `json:"relaxations,omitempty"`
	AccessibilityNotes []string         `json:"day_accessibility_notes"`
	WeatherNotes       []string         `json:"weather_notes,omitempty"`
}

// OverBudgetAllowed reports whether the day was filled with the overage tolerance.
func (d DayPlan) OverBudgetAllowed() bool {
	for _, r := range d.Relaxations {
		if r == RelaxBudget {
			return true
		}
	}
	return false
}

type CostBreakdown struct {
	ByCategory map[Category]float64 `json:"by_category"`
	Transport  float64              `json:"transport"`
	Discounts  float64              `json:"discounts"`
	Total      float64              `json:"total"`
	PerPerson  float64              `json:"per_person"`
}

type SourceReport struct {
	Source  SourceKind      `json:"source"`
	Records int             `json:"records"`
	Dropped int             `json:"dropped"`
	Error   SourceErrorKind `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

type Itinerary struct {
	ID                 string          `json:"id"`
	Status             ItineraryStatus `json:"status"`
	Days               []DayPlan       `json:"days"`
	InfeasibleDays     []int           `json:"infeasible_days,omitempty"`
	TotalCost          float64         `json:"total_cost"`
	CostBreakdown      CostBreakdown   `json:"cost_breakdown"`
	AccessibilityScore float64         `json:"accessibility_score"`
	Preferences        UserPreferences `json:"preferences"`
	Sources            []SourceReport  `json:"sources,omitempty"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

func (it Itinerary) VenueCount() int {
	n := 0
	for _, d := range it.Days {
		n += len(d.Venues)
	}
	return n
}
