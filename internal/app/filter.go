package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/domain"
)

// Candidate is a venue that survived the accessibility filter, with the
// requirements it could not confirm and its discounted cost for the group.
type Candidate struct {
	Venue      domain.VenueRecord `json:"venue"`
	Unverified []string           `json:"unverified,omitempty"` // required flags that are unknown for this venue
	Confirmed  int                `json:"confirmed"`            // required flags that are Yes
	Required   int                `json:"required"`
	MinCost    float64            `json:"min_cost"` // group cost at the venue's minimum price
	EstCost    float64            `json:"est_cost"` // group cost at the midpoint
	Discount   float64            `json:"discount"` // base minus discounted, at the midpoint
}

// AccessConfidence is the share of required flags confirmed as Yes; 1 when nothing is required.
func (c Candidate) AccessConfidence() float64 {
	if c.Required == 0 {
		return 1
	}
	return float64(c.Confirmed) / float64(c.Required)
}

// FilterAccessible applies required mobility flags to every venue and dietary
// flags to venues that serve food. A No drops the venue; an Unknown keeps it
// and records the flag so it can be disclosed in the day notes.
func FilterAccessible(pool []domain.VenueRecord, p domain.UserPreferences) []Candidate {
	out := make([]Candidate, 0, len(pool))
next:
	for _, v := range pool {
		c := Candidate{Venue: v}
		for _, f := range p.Mobility {
			c.Required++
			switch v.Accessibility.Get(f) {
			case domain.No:
				log.Debug().Str("venue", v.Name).Str("flag", string(f)).Msg("excluded: required flag is false")
				continue next
			case domain.Yes:
				c.Confirmed++
			default:
				c.Unverified = append(c.Unverified, string(f))
			}
		}
		if v.ServesFood() {
			for _, d := range p.Dietary {
				c.Required++
				switch v.Dietary.Get(d) {
				case domain.No:
					log.Debug().Str("venue", v.Name).Str("dietary", string(d)).Msg("excluded: dietary need not met")
					continue next
				case domain.Yes:
					c.Confirmed++
				default:
					c.Unverified = append(c.Unverified, string(d))
				}
			}
		}
		out = append(out, c)
	}
	return out
}

func unverifiedNote(c Candidate) []string {
	notes := make([]string, 0, len(c.Unverified))
	for _, f := range c.Unverified {
		notes = append(notes, fmt.Sprintf("%s: %s not verified", c.Venue.Name, f))
	}
	return notes
}
