package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

type Family struct {
	Adults   int `json:"adults" yaml:"adults"`
	Children int `json:"children" yaml:"children"`
	Seniors  int `json:"seniors" yaml:"seniors"`
}

func (f Family) Total() int { return f.Adults + f.Children + f.Seniors }

// BudgetRange is per person per day, in HKD.
type BudgetRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

type TransportMode string

const (
	ModeMTR     TransportMode = "mtr"
	ModeBus     TransportMode = "bus"
	ModeTaxi    TransportMode = "taxi"
	ModeFerry   TransportMode = "ferry"
	ModeWalking TransportMode = "walking"
)

type UserPreferences struct {
	Family    Family          `json:"family" yaml:"family"`
	Mobility  []MobilityFlag  `json:"mobility_needs" yaml:"mobility_needs"`
	Dietary   []DietaryFlag   `json:"dietary_restrictions" yaml:"dietary_restrictions"`
	Budget    BudgetRange     `json:"budget" yaml:"budget"`
	Days      int             `json:"days" yaml:"days"`
	Transport []TransportMode `json:"transport" yaml:"transport"`
}

func (p UserPreferences) Validate() error {
	switch {
	case p.Days < 1:
		return fmt.Errorf("%w: days must be at least 1", ErrInvalidPreferences)
	case p.Family.Adults < 0 || p.Family.Children < 0 || p.Family.Seniors < 0:
		return fmt.Errorf("%w: family counts must not be negative", ErrInvalidPreferences)
	case p.Family.Total() == 0:
		return fmt.Errorf("%w: at least one traveller is required", ErrInvalidPreferences)
	case p.Budget.Min < 0 || p.Budget.Max < p.Budget.Min:
		return fmt.Errorf("%w: budget range must satisfy 0 <= min <= max", ErrInvalidPreferences)
	}
	for _, m := range p.Mobility {
		if _, ok := ParseMobilityNeed(string(m)); !ok {
			return fmt.Errorf("%w: unknown mobility need %q", ErrInvalidPreferences, m)
		}
	}
	for _, d := range p.Dietary {
		if _, ok := ParseDietary(string(d)); !ok {
			return fmt.Errorf("%w: unknown dietary restriction %q", ErrInvalidPreferences, d)
		}
	}
	return nil
}

// Normalize maps user-facing needs onto flags and drops duplicates.
// Unrecognised needs are kept verbatim so Validate can reject them; a
// required constraint must never vanish.
func (p UserPreferences) Normalize() UserPreferences {
	out := p
	out.Mobility = nil
	seenM := map[MobilityFlag]bool{}
	for _, m := range p.Mobility {
		f, ok := ParseMobilityNeed(string(m))
		if !ok {
			f = m
		}
		if !seenM[f] {
			seenM[f] = true
			out.Mobility = append(out.Mobility, f)
		}
	}
	out.Dietary = nil
	seenD := map[DietaryFlag]bool{}
	for _, d := range p.Dietary {
		f, ok := ParseDietary(string(d))
		if !ok {
			f = d
		}
		if !seenD[f] {
			seenD[f] = true
			out.Dietary = append(out.Dietary, f)
		}
	}
	out.Transport = nil
	for _, t := range p.Transport {
		m := TransportMode(strings.ToLower(strings.TrimSpace(string(t))))
		switch m {
		case ModeMTR, ModeBus, ModeTaxi, ModeFerry, ModeWalking:
			out.Transport = append(out.Transport, m)
		}
	}
	return out
}

type ForecastTag string

const (
	ForecastClear       ForecastTag = "clear"
	ForecastRain        ForecastTag = "rain"
	ForecastExtremeHeat ForecastTag = "extreme_heat"
	ForecastExtremeCold ForecastTag = "extreme_cold"
)

func ParseForecastTag(s string) (ForecastTag, bool) {
	switch ForecastTag(strings.ToLower(strings.TrimSpace(s))) {
	case ForecastClear, "":
		return ForecastClear, true
	case ForecastRain:
		return ForecastRain, true
	case ForecastExtremeHeat, "heat":
		return ForecastExtremeHeat, true
	case ForecastExtremeCold, "cold":
		return ForecastExtremeCold, true
	}
	return "", false
}

type DayForecast struct {
	Date        string      `json:"date,omitempty"`
	Tag         ForecastTag `json:"tag"`
	Description string      `json:"description,omitempty"`
	MinTempC    float64     `json:"min_temp_c,omitempty"`
	MaxTempC    float64     `json:"max_temp_c,omitempty"`
	HumidityPct float64     `json:"humidity_pct,omitempty"`
}

// Bucket collapses a forecast run into the tag used for AI prompting and cache keys:
// the most frequent tag, ties broken toward the harsher condition.
func Bucket(days []DayForecast) ForecastTag {
	if len(days) == 0 {
		return ForecastClear
	}
	counts := map[ForecastTag]int{}
	for _, d := range days {
		counts[d.Tag]++
	}
	best, bestN := ForecastClear, -1
	for _, t := range []ForecastTag{ForecastRain, ForecastExtremeHeat, ForecastExtremeCold, ForecastClear} {
		if counts[t] > bestN {
			best, bestN = t, counts[t]
		}
	}
	return best
}

// QueryCriteria is what sources receive; filters may be pushed down.
type QueryCriteria struct {
	Mobility []MobilityFlag `json:"mobility"`
	Dietary  []DietaryFlag  `json:"dietary"`
	Family   Family         `json:"family"`
	Budget   BudgetRange    `json:"budget"`
	Days     int            `json:"days"`
	Weather  ForecastTag    `json:"weather"`
}

func CriteriaFor(p UserPreferences, forecast []DayForecast) QueryCriteria {
	return QueryCriteria{
		Mobility: p.Mobility,
		Dietary:  p.Dietary,
		Family:   p.Family,
		Budget:   p.Budget,
		Days:     p.Days,
		Weather:  Bucket(forecast),
	}
}

// Fingerprint is stable under reordering of the flag sets.
func (c QueryCriteria) Fingerprint() string {
	mob := make([]string, 0, len(c.Mobility))
	for _, m := range c.Mobility {
		mob = append(mob, string(m))
	}
	diet := make([]string, 0, len(c.Dietary))
	for _, d := range c.Dietary {
		diet = append(diet, string(d))
	}
	sort.Strings(mob)
	sort.Strings(diet)
	sig := fmt.Sprintf("m=%s|d=%s|f=%d,%d,%d|b=%.0f-%.0f|n=%d|w=%s",
		strings.Join(mob, ","), strings.Join(diet, ","),
		c.Family.Adults, c.Family.Children, c.Family.Seniors,
		c.Budget.Min, c.Budget.Max, c.Days, c.Weather)
	sum := sha1.Sum([]byte(sig))
	return hex.EncodeToString(sum[:])
}
