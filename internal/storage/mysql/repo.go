package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hk_itinerary/internal/domain"
)

// listLimit caps the rows one source fetch can return.
const listLimit = 200

func valStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// valTri stores Unknown as NULL.
func valTri(t domain.Tri) any {
	if p := t.Ptr(); p != nil {
		return *p
	}
	return nil
}

func valJSON(v []string) any {
	if len(v) == 0 {
		return nil
	}
	b, _ := json.Marshal(v)
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertVenue(ctx context.Context, v domain.VenueRecord) error {
	a, d := v.Accessibility, v.Dietary
	_, err := r.db.ExecContext(ctx, upsertVenueSQL,
		v.ID,
		v.Name,
		string(v.Category),
		valStr(v.Description),
		valStr(v.District),
		valStr(v.Address),
		v.Location.Lat,
		v.Location.Lon,
		v.Cost.Min,
		v.Cost.Max,
		currency(v.Cost.Currency),
		string(v.Weather),
		v.Difficulty,
		valTri(v.ElderlyFriendly),
		valTri(a.Wheelchair),
		valTri(a.Elevator),
		valTri(a.AccessibleToilets),
		valTri(a.StepFree),
		valTri(a.ParentFacilities),
		valTri(a.RestAreas),
		valTri(d.SoftMeals),
		valTri(d.Vegetarian),
		valTri(d.Halal),
		valTri(d.NoSeafood),
		valTri(d.AllergyFriendly),
		valJSON(a.Notes),
		string(v.Provenance.Source),
		v.Provenance.FetchedAt,
	)
	return err
}

func (r *Repo) GetVenue(ctx context.Context, id string) (domain.VenueRecord, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, getVenueSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VenueRecord{}, domain.ErrNotFound
	}
	return v, err
}

// ListVenues returns stored venues, those satisfying the most requested
// flags first. Flags are only used for ranking.
func (r *Repo) ListVenues(ctx context.Context, c domain.QueryCriteria) ([]domain.VenueRecord, error) {
	rows, err := r.db.QueryContext(ctx, listVenuesPrefix+orderBy(c)+"LIMIT ?", listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.VenueRecord
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// flag names double as column names; anything else never reaches the SQL.
var flagColumns = map[string]bool{
	"wheelchair_accessible": true, "has_elevator": true, "accessible_toilets": true,
	"step_free_access": true, "parent_facilities": true, "rest_areas": true,
	"soft_meals": true, "vegetarian": true, "halal": true, "no_seafood": true, "allergy_friendly": true,
}

func orderBy(c domain.QueryCriteria) string {
	var terms []string
	for _, f := range c.Mobility {
		if flagColumns[string(f)] {
			terms = append(terms, fmt.Sprintf("COALESCE(%s, 0)", f))
		}
	}
	for _, f := range c.Dietary {
		if flagColumns[string(f)] {
			terms = append(terms, fmt.Sprintf("COALESCE(%s, 0)", f))
		}
	}
	if len(terms) == 0 {
		return "ORDER BY id\n"
	}
	return "ORDER BY (" + strings.Join(terms, " + ") + ") DESC, id\n"
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVenue(s scanner) (domain.VenueRecord, error) {
	var (
		v                                  domain.VenueRecord
		category, weather, currency        string
		desc, district, address            sql.NullString
		notes                              []byte
		elderly                            sql.NullBool
		wc, el, wcToilet, stepFree, pf, ra sql.NullBool
		soft, veg, halal, noSea, allergy   sql.NullBool
	)
	if err := s.Scan(
		&v.ID, &v.Name, &category, &desc, &district, &address,
		&v.Location.Lat, &v.Location.Lon,
		&v.Cost.Min, &v.Cost.Max, &currency, &weather, &v.Difficulty, &elderly,
		&wc, &el, &wcToilet, &stepFree, &pf, &ra,
		&soft, &veg, &halal, &noSea, &allergy,
		&notes, &v.Provenance.FetchedAt,
	); err != nil {
		return domain.VenueRecord{}, err
	}
	v.Category = domain.Category(category)
	v.Weather = domain.WeatherSuitability(weather)
	v.Cost.Currency = currency
	v.Description, v.District, v.Address = desc.String, district.String, address.String
	v.ElderlyFriendly = tri(elderly)
	v.Accessibility = domain.AccessibilityInfo{
		Wheelchair:        tri(wc),
		Elevator:          tri(el),
		AccessibleToilets: tri(wcToilet),
		StepFree:          tri(stepFree),
		ParentFacilities:  tri(pf),
		RestAreas:         tri(ra),
	}
	if len(notes) > 0 {
		_ = json.Unmarshal(notes, &v.Accessibility.Notes)
	}
	v.Dietary = domain.DietaryInfo{
		SoftMeals:       tri(soft),
		Vegetarian:      tri(veg),
		Halal:           tri(halal),
		NoSeafood:       tri(noSea),
		AllergyFriendly: tri(allergy),
	}
	v.Provenance = domain.NewProvenance(domain.SourceDatabase, v.ID, v.Provenance.FetchedAt)
	v.SourceRank = domain.SourceDatabase.Rank()
	return v, nil
}

func tri(b sql.NullBool) domain.Tri {
	if !b.Valid {
		return domain.Unknown
	}
	return domain.TriOf(b.Bool)
}

func currency(c string) string {
	if c == "" {
		return domain.CurrencyHKD
	}
	return c
}
