package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hk_itinerary/internal/app"
	"hk_itinerary/internal/domain"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Hong Kong Museum of Art":     "hongkongmuseumofart",
		"  hong kong  MUSEUM of art ": "hongkongmuseumofart",
		"Café de Coral":               "cafedecoral",
	}
	for in, want := range cases {
		assert.Equal(t, want, app.NormalizeName(in), in)
	}
}

func TestMerge_TrustAndConservativeFlags(t *testing.T) {
	off := venue("hk_004", "Hong Kong Museum of Art", domain.CategoryMuseum, domain.Indoor, 0, 20)
	off.Accessibility.Wheelchair = domain.No

	ai := off
	ai.ID = "ai_17"
	ai.Name = "hong kong museum  of ART"
	ai.Description = "Chinese and western art by the harbour"
	ai.Accessibility = domain.AccessibilityInfo{Wheelchair: domain.Yes, Elevator: domain.Yes}
	ai.SourceRank = domain.SourceAI.Rank()
	ai.Provenance = domain.NewProvenance(domain.SourceAI, "ai_17", time.Now())

	out := app.Merge([]domain.VenueRecord{ai, off}, 150)
	require.Len(t, out, 1)
	m := out[0]
	assert.Equal(t, domain.No, m.Accessibility.Wheelchair, "weak Yes must not override verified No")
	assert.Equal(t, domain.Yes, m.Accessibility.Elevator, "known value fills an unknown")
	assert.Equal(t, 0, m.SourceRank)
	assert.Equal(t, domain.SourceOffline, m.Provenance.Source)
	assert.Equal(t, "Chinese and western art by the harbour", m.Description)
	assert.Equal(t, []domain.SourceKind{domain.SourceOffline, domain.SourceAI}, m.Provenance.Contributors)
	assert.NotEqual(t, "hk_004", m.ID, "merged records get a global id")
}

func TestMerge_ProximityNeedsSameCategory(t *testing.T) {
	a := venue("a", "Star Ferry Pier", domain.CategoryTransport, domain.Either, 3, 5)
	b := a
	b.ID, b.Name = "b", "Tsim Sha Tsui Ferry Terminal"
	b.Location.Lat += 0.0004 // ~45m
	c := a
	c.ID, c.Name, c.Category = "c", "Harbour Cafe", domain.CategoryRestaurant

	out := app.Merge([]domain.VenueRecord{a, b, c}, 150)
	assert.Len(t, out, 2)
}

func TestMerge_Idempotent(t *testing.T) {
	recs := []domain.VenueRecord{
		venue("1", "Victoria Peak", domain.CategoryAttraction, domain.Outdoor, 0, 99),
		venue("2", "Ocean Park", domain.CategoryAttraction, domain.Either, 498, 498),
		venue("3", "victoria peak", domain.CategoryAttraction, domain.Outdoor, 0, 0),
	}
	once := app.Merge(recs, 150)
	again := app.Merge(recs, 150)
	assert.Equal(t, once, again)
	assert.Equal(t, once, app.Merge(once, 150))
	assert.Len(t, once, 2)
}

func TestAggregator_SkipsFailingTiersAndDropsInvalid(t *testing.T) {
	good := venue("ok", "Tian Tan Buddha", domain.CategoryAttraction, domain.Outdoor, 0, 0)
	bad := venue("bad", "Atlantis", domain.CategoryAttraction, domain.Outdoor, 0, 0)
	bad.Location = domain.Location{Lat: 0, Lon: 0}

	slow := &fakeSource{kind: domain.SourceAI, sleep: 200 * time.Millisecond}
	agg := app.NewAggregator(40*time.Millisecond, 150,
		slow,
		&fakeSource{kind: domain.SourceGovernment, panic: true},
		offline(good, bad),
		&fakeSource{kind: domain.SourceDatabase, err: domain.NewSourceError(domain.SourceDatabase, domain.KindUnreachable, errors.New("no db"))},
	)

	pool, reports, err := agg.Collect(context.Background(), domain.QueryCriteria{Days: 1})
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "Tian Tan Buddha", pool[0].Name)

	// reports follow priority order regardless of registration order
	require.Len(t, reports, 4)
	assert.Equal(t, domain.SourceOffline, reports[0].Source)
	assert.Equal(t, 1, reports[0].Records)
	assert.Equal(t, 1, reports[0].Dropped)
	assert.Equal(t, domain.KindUnreachable, reports[1].Error)
	assert.Equal(t, domain.KindInvalidResponse, reports[2].Error)
	assert.Equal(t, domain.KindTimeout, reports[3].Error)
}

func TestAggregator_NoSources(t *testing.T) {
	_, _, err := app.NewAggregator(time.Second, 150).Collect(context.Background(), domain.QueryCriteria{})
	assert.ErrorIs(t, err, domain.ErrNoDataAvailable)
}

func TestFilterAccessible_DietaryOnlyForFood(t *testing.T) {
	park := wheelchair(venue("p", "Park", domain.CategoryPark, domain.Outdoor, 0, 0), domain.Yes)
	noHalal := wheelchair(venue("r", "Seafood Place", domain.CategoryRestaurant, domain.Indoor, 100, 200), domain.Yes)
	noHalal.Dietary.Halal = domain.No
	unknown := venue("u", "Noodle Bar", domain.CategoryRestaurant, domain.Indoor, 50, 80)

	out := app.FilterAccessible([]domain.VenueRecord{park, noHalal, unknown}, domain.UserPreferences{
		Mobility: []domain.MobilityFlag{domain.FlagWheelchair},
		Dietary:  []domain.DietaryFlag{domain.DietHalal},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "Park", out[0].Venue.Name)
	assert.Empty(t, out[0].Unverified)
	assert.Equal(t, 1.0, out[0].AccessConfidence())
	assert.Equal(t, []string{"wheelchair_accessible", "halal"}, out[1].Unverified)
	assert.Equal(t, 0.0, out[1].AccessConfidence())
}

func TestCostEstimator_DiscountsAndPrune(t *testing.T) {
	o := app.DefaultOptions()
	e := app.NewCostEstimator(o)
	fam := domain.Family{Adults: 1, Children: 1, Seniors: 1}
	assert.InDelta(t, 270.0, e.GroupCost(100, fam), 1e-9)

	o.Discounts = app.Discounts{Senior: 0.5, Child: 0}
	assert.InDelta(t, 250.0, app.NewCostEstimator(o).GroupCost(100, fam), 1e-9)

	p := domain.UserPreferences{Family: domain.Family{Adults: 1}, Budget: domain.BudgetRange{Max: 200}, Days: 1}
	cands := e.Price(app.FilterAccessible([]domain.VenueRecord{
		venue("a", "A", domain.CategoryPark, domain.Outdoor, 150, 300),
		venue("b", "B", domain.CategoryPark, domain.Outdoor, 215, 230),
		venue("c", "C", domain.CategoryPark, domain.Outdoor, 240, 260),
	}, p), p.Family)
	kept := e.Prune(cands, p)
	require.Len(t, kept, 2, "only the venue whose minimum exceeds budget plus tolerance is pruned")
	assert.Equal(t, 225.0, kept[0].EstCost)
}

func TestCostEstimator_Leg(t *testing.T) {
	e := app.NewCostEstimator(app.DefaultOptions())
	a := venue("a", "A", domain.CategoryPark, domain.Outdoor, 0, 0)
	near := a
	near.Location.Lat += 0.002 // ~220m
	far := a
	far.Location.Lat += 0.05 // ~5.5km

	p := domain.UserPreferences{Family: domain.Family{Adults: 5}, Mobility: []domain.MobilityFlag{domain.FlagWheelchair}}
	walk := e.Leg(a, near, p)
	assert.Equal(t, domain.ModeWalking, walk.Mode)
	assert.Zero(t, walk.Cost)

	p.Transport = []domain.TransportMode{domain.ModeTaxi}
	taxi := e.Leg(a, far, p)
	assert.Equal(t, domain.ModeTaxi, taxi.Mode)
	// five people need two cabs
	assert.InDelta(t, 2*(27+9*taxi.DistanceKm), taxi.Cost, 0.2)
	assert.NotEmpty(t, taxi.Note)
}

func TestRerank_KeepsEveryCandidateAndCategorySlots(t *testing.T) {
	in := app.FilterAccessible([]domain.VenueRecord{
		venue("p1", "Open Park", domain.CategoryPark, domain.Outdoor, 0, 0),
		venue("m1", "Museum", domain.CategoryMuseum, domain.Indoor, 0, 0),
		venue("p2", "Glasshouse", domain.CategoryPark, domain.Indoor, 0, 0),
	}, domain.UserPreferences{})
	out := app.Rerank(in, domain.ForecastRain)
	require.Len(t, out, 3)
	assert.Equal(t, "Glasshouse", out[0].Venue.Name)
	assert.Equal(t, "Museum", out[1].Venue.Name)
	assert.Equal(t, "Open Park", out[2].Venue.Name)
}

func TestMerge_VerifiedFreeEntryKeepsItsPrice(t *testing.T) {
	park := venue("hk_010", "Kowloon Park", domain.CategoryPark, domain.Outdoor, 0, 0)
	gov := venue("hktb_x", "Kowloon Park", domain.CategoryPark, domain.Outdoor, 0, 100)
	gov.Cost.Estimated = true
	gov.SourceRank = domain.SourceGovernment.Rank()
	gov.Provenance = domain.NewProvenance(domain.SourceGovernment, "hktb_x", time.Now())

	out := app.Merge([]domain.VenueRecord{gov, park}, 150)
	require.Len(t, out, 1)
	assert.Equal(t, domain.SourceOffline, out[0].Provenance.Source)
	assert.Equal(t, 0.0, out[0].Cost.Max, "placeholder must not override a verified free entry")
	assert.False(t, out[0].Cost.Estimated)

	// the other way round, a published price replaces the placeholder
	ai := venue("ai_3", "Kowloon Park", domain.CategoryPark, domain.Outdoor, 0, 10)
	ai.SourceRank = domain.SourceAI.Rank()
	ai.Provenance = domain.NewProvenance(domain.SourceAI, "ai_3", time.Now())
	out = app.Merge([]domain.VenueRecord{gov, ai}, 150)
	require.Len(t, out, 1)
	assert.Equal(t, domain.SourceGovernment, out[0].Provenance.Source)
	assert.Equal(t, 10.0, out[0].Cost.Max)
}
