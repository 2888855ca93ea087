package app

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"hk_itinerary/internal/domain"
)

// venueNamespace seeds the name-based (v5) global ids so a merge is repeatable.
var venueNamespace = uuid.MustParse("0b7a4c1e-3f7e-4c55-9a38-6a4e0f1d2c11")

// NormalizeName folds case, diacritics and whitespace.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const earthRadiusM = 6371000.0

func distanceMeters(a, b domain.Location) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(h)))
}

func sameVenue(a, b domain.VenueRecord, radiusM float64) bool {
	if NormalizeName(a.Name) == NormalizeName(b.Name) {
		return true
	}
	return a.Category == b.Category && distanceMeters(a.Location, b.Location) <= radiusM
}

// mergeRecords folds lo (less trusted) into hi. Descriptive fields come from hi
// when present; tri-state flags use MergeTri.
func mergeRecords(hi, lo domain.VenueRecord) domain.VenueRecord {
	out := hi
	out.Accessibility = hi.Accessibility.Merge(lo.Accessibility)
	out.Dietary = hi.Dietary.Merge(lo.Dietary)
	out.ElderlyFriendly = domain.MergeTri(hi.ElderlyFriendly, lo.ElderlyFriendly)
	if out.Description == "" {
		out.Description = lo.Description
	}
	if out.District == "" {
		out.District = lo.District
	}
	if out.Address == "" {
		out.Address = lo.Address
	}
	// a published price replaces a placeholder, never a trusted figure
	if out.Cost.Estimated && !lo.Cost.Estimated {
		out.Cost = lo.Cost
	}
	if out.Weather == domain.Either && lo.Weather != "" {
		out.Weather = lo.Weather
	}
	if lo.SourceRank < out.SourceRank {
		out.SourceRank = lo.SourceRank
	}
	out.Provenance.Contributors = appendKinds(hi.Provenance.Contributors, lo.Provenance.Contributors)
	return out
}

func appendKinds(a, b []domain.SourceKind) []domain.SourceKind {
	out := append([]domain.SourceKind{}, a...)
	for _, k := range b {
		dup := false
		for _, x := range out {
			if x == k {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank() < out[j].Rank() })
	return out
}

// Merge deduplicates records. Input is processed by source rank (stable within a
// rank), so the more trusted record always becomes the base of a merge.
func Merge(records []domain.VenueRecord, radiusM float64) []domain.VenueRecord {
	in := append([]domain.VenueRecord{}, records...)
	sort.SliceStable(in, func(i, j int) bool { return in[i].SourceRank < in[j].SourceRank })

	var pool []domain.VenueRecord
	for _, r := range in {
		matched := false
		for i := range pool {
			if sameVenue(pool[i], r, radiusM) {
				pool[i] = mergeRecords(pool[i], r)
				matched = true
				break
			}
		}
		if !matched {
			pool = append(pool, r)
		}
	}
	for i := range pool {
		pool[i].ID = globalID(pool[i])
	}
	return pool
}

func globalID(v domain.VenueRecord) string {
	key := string(v.Category) + "|" + NormalizeName(v.Name)
	return uuid.NewSHA1(venueNamespace, []byte(key)).String()
}
