package httpserver

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hk_itinerary/internal/app"
	"hk_itinerary/internal/domain"
)

type fakePlanner struct {
	it       domain.Itinerary
	err      error
	gotPrefs domain.UserPreferences
	gotFC    []domain.DayForecast
}

func (f *fakePlanner) Generate(ctx context.Context, p domain.UserPreferences, fc []domain.DayForecast) (domain.Itinerary, error) {
	f.gotPrefs, f.gotFC = p, fc
	return f.it, f.err
}

func (f *fakePlanner) Candidates(ctx context.Context, p domain.UserPreferences) ([]app.Candidate, []domain.SourceReport, error) {
	f.gotPrefs = p
	if f.err != nil {
		return nil, nil, f.err
	}
	return []app.Candidate{{Venue: peak()}}, []domain.SourceReport{{Source: domain.SourceOffline, Records: 1}}, nil
}

type fakeVenues map[string]domain.VenueRecord

func (f fakeVenues) GetVenue(ctx context.Context, id string) (domain.VenueRecord, error) {
	v, ok := f[id]
	if !ok {
		return domain.VenueRecord{}, domain.ErrNotFound
	}
	return v, nil
}

func peak() domain.VenueRecord {
	return domain.VenueRecord{
		ID: "hk_001", Name: "Victoria Peak", Category: domain.CategoryAttraction,
		Location:   domain.Location{Lat: 22.2711, Lon: 114.1489},
		Weather:    domain.Either,
		Difficulty: 3,
		Provenance: domain.NewProvenance(domain.SourceOffline, "hk_001", time.Now()),
	}
}

func sampleItinerary() domain.Itinerary {
	return domain.Itinerary{
		ID:     "it-1",
		Status: domain.StatusPartial,
		Days: []domain.DayPlan{
			{Day: 1, Status: domain.DayFilled, Venues: []domain.ScheduledVenue{{Venue: peak(), Arrival: "09:30", EstimatedCost: 65}}},
			{Day: 2, Status: domain.DayInfeasible, Venues: []domain.ScheduledVenue{}, Relaxations: []domain.Relaxation{domain.RelaxWeather, domain.RelaxBudget}},
		},
		InfeasibleDays: []int{2},
	}
}

func newTestServer(p Planner, v VenueReader) *httptest.Server {
	s := New(5 * time.Second)
	s.MountHandlers(&Handlers{Planner: p, Venues: v})
	return httptest.NewServer(s.Mux())
}

func TestCreateItinerary_JSON(t *testing.T) {
	fp := &fakePlanner{it: sampleItinerary()}
	ts := newTestServer(fp, fakeVenues{})
	defer ts.Close()

	body := `{"family":{"adults":2,"seniors":1},"mobility_needs":["wheelchair"],"budget":{"min":0,"max":300},"days":2,
	          "forecast":[{"tag":"rain"},{"tag":"heat"}]}`
	res, err := http.Post(ts.URL+"/v1/itineraries", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var got domain.Itinerary
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != domain.StatusPartial || len(got.Days) != 2 || got.Days[1].Venues == nil {
		t.Fatalf("unexpected itinerary: %+v", got)
	}
	if fp.gotPrefs.Days != 2 || fp.gotPrefs.Family.Seniors != 1 || len(fp.gotPrefs.Mobility) != 1 {
		t.Fatalf("preferences not passed through: %+v", fp.gotPrefs)
	}
	if len(fp.gotFC) != 2 || fp.gotFC[1].Tag != domain.ForecastExtremeHeat {
		t.Fatalf("forecast not normalised: %+v", fp.gotFC)
	}
}

func TestCreateItinerary_CSVFromSameStruct(t *testing.T) {
	ts := newTestServer(&fakePlanner{it: sampleItinerary()}, fakeVenues{})
	defer ts.Close()

	res, err := http.Post(ts.URL+"/v1/itineraries?format=csv", "application/json", strings.NewReader(`{"family":{"adults":1},"days":2,"budget":{"max":100}}`))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type %q", ct)
	}
	recs, err := csv.NewReader(res.Body).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(recs))
	}
	if recs[1][4] != "hk_001" || recs[1][3] != "09:30" {
		t.Fatalf("unexpected venue row %v", recs[1])
	}
	if recs[2][1] != "infeasible" || recs[2][13] != "weather;budget" {
		t.Fatalf("infeasible day row %v", recs[2])
	}
}

func TestCreateItinerary_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: days must be at least 1", domain.ErrInvalidPreferences), http.StatusBadRequest},
		{domain.ErrNoDataAvailable, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		ts := newTestServer(&fakePlanner{err: tc.err}, fakeVenues{})
		res, err := http.Post(ts.URL+"/v1/itineraries", "application/json", strings.NewReader(`{"days":1}`))
		if err != nil {
			t.Fatal(err)
		}
		if res.StatusCode != tc.want {
			t.Fatalf("%v: got %d want %d", tc.err, res.StatusCode, tc.want)
		}
		if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
			t.Fatalf("content type %q", ct)
		}
		res.Body.Close()
		ts.Close()
	}
}

func TestCreateItinerary_BadInput(t *testing.T) {
	ts := newTestServer(&fakePlanner{}, fakeVenues{})
	defer ts.Close()
	for _, body := range []string{`not json`, `{"days":1,"forecast":[{"tag":"snow"}]}`} {
		res, err := http.Post(ts.URL+"/v1/itineraries", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("%q: status %d", body, res.StatusCode)
		}
	}
}

func TestListVenues_QueryToPreferences(t *testing.T) {
	fp := &fakePlanner{}
	ts := newTestServer(fp, fakeVenues{})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/venues?adults=2&seniors=1&mobility=wheelchair,avoid_stairs&dietary=halal&budget_max=250")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var got struct {
		Venues  []json.RawMessage     `json:"venues"`
		Sources []domain.SourceReport `json:"sources"`
	}
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Venues) != 1 || len(got.Sources) != 1 {
		t.Fatalf("unexpected body %+v", got)
	}
	p := fp.gotPrefs
	if p.Family.Adults != 2 || p.Family.Seniors != 1 || p.Budget.Max != 250 || len(p.Mobility) != 2 || len(p.Dietary) != 1 {
		t.Fatalf("unexpected prefs %+v", p)
	}

	bad, _ := http.Get(ts.URL + "/v1/venues?adults=two")
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bad.StatusCode)
	}
}

func TestGetVenue_ETagAndNotFound(t *testing.T) {
	ts := newTestServer(&fakePlanner{}, fakeVenues{"hk_001": peak()})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/venues/hk_001")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	etag := res.Header.Get("ETag")
	if res.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("status %d etag %q", res.StatusCode, etag)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/venues/hk_001", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res2.StatusCode)
	}

	res3, _ := http.Get(ts.URL + "/v1/venues/nope")
	res3.Body.Close()
	if res3.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res3.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&fakePlanner{}, fakeVenues{})
	defer ts.Close()
	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
}
