package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/app"
	"hk_itinerary/internal/domain"
)

// Planner is the slice of *app.Planner the API needs.
type Planner interface {
	Generate(ctx context.Context, p domain.UserPreferences, forecast []domain.DayForecast) (domain.Itinerary, error)
	Candidates(ctx context.Context, p domain.UserPreferences) ([]app.Candidate, []domain.SourceReport, error)
}

type VenueReader interface {
	GetVenue(ctx context.Context, id string) (domain.VenueRecord, error)
}

type Handlers struct {
	Planner Planner
	Venues  VenueReader
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// itineraryRequest is the preferences document plus an optional forecast
// override, one entry per day.
type itineraryRequest struct {
	domain.UserPreferences
	Forecast []domain.DayForecast `json:"forecast,omitempty"`
}

type venuesResponse struct {
	Venues  []app.Candidate       `json:"venues"`
	Sources []domain.SourceReport `json:"sources"`
}

const maxBody = 1 << 20

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/itineraries", h.createItinerary)
	s.mux.Get("/v1/venues", h.listVenues)
	s.mux.Get("/v1/venues/{id}", h.getVenue)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps pipeline errors onto problem documents.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPreferences):
		writeProblem(w, http.StatusBadRequest, "Invalid preferences", err.Error())
	case errors.Is(err, domain.ErrNoDataAvailable):
		writeProblem(w, http.StatusServiceUnavailable, "No data available", "every venue source failed, try again later")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "venue not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeProblem(w, http.StatusGatewayTimeout, "Timeout", "request took too long")
	default:
		log.Error().Err(err).Msg("unhandled pipeline error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func wantsCSV(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, "csv")
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}

func (h *Handlers) createItinerary(w http.ResponseWriter, r *http.Request) {
	var req itineraryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be a JSON preferences document")
		return
	}
	for i, f := range req.Forecast {
		tag, ok := domain.ParseForecastTag(string(f.Tag))
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid forecast", fmt.Sprintf("day %d: unknown tag %q", i+1, f.Tag))
			return
		}
		req.Forecast[i].Tag = tag
	}

	it, err := h.Planner.Generate(r.Context(), req.UserPreferences, req.Forecast)
	if err != nil {
		writeError(w, err)
		return
	}

	if wantsCSV(r) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="itinerary-%s.csv"`, it.ID))
		w.WriteHeader(http.StatusOK)
		if err := WriteCSV(w, it); err != nil {
			log.Error().Err(err).Msg("failed to write itinerary csv")
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(it); err != nil {
		log.Error().Err(err).Msg("failed to write itinerary body")
	}
}

// WriteCSV renders the flattened row view of an itinerary.
func WriteCSV(w io.Writer, it domain.Itinerary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.RowHeader); err != nil {
		return err
	}
	for _, row := range it.Rows() {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (h *Handlers) listVenues(w http.ResponseWriter, r *http.Request) {
	p, err := prefsFromQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	cands, reports, err := h.Planner.Candidates(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	if cands == nil {
		cands = []app.Candidate{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(venuesResponse{Venues: cands, Sources: reports}); err != nil {
		log.Error().Err(err).Msg("failed to write listVenues body")
	}
}

// prefsFromQuery reads ?adults=2&seniors=1&mobility=wheelchair,avoid_stairs&dietary=halal&budget_max=400&days=2.
func prefsFromQuery(r *http.Request) (domain.UserPreferences, error) {
	q := r.URL.Query()
	num := func(k string, def int) (int, error) {
		s := q.Get(k)
		if s == "" {
			return def, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", k)
		}
		return n, nil
	}
	var p domain.UserPreferences
	var err error
	if p.Family.Adults, err = num("adults", 1); err != nil {
		return p, err
	}
	if p.Family.Children, err = num("children", 0); err != nil {
		return p, err
	}
	if p.Family.Seniors, err = num("seniors", 0); err != nil {
		return p, err
	}
	if p.Days, err = num("days", 1); err != nil {
		return p, err
	}
	p.Budget.Max = 1000
	if s := q.Get("budget_max"); s != "" {
		if p.Budget.Max, err = strconv.ParseFloat(s, 64); err != nil {
			return p, errors.New("budget_max must be a number")
		}
	}
	for _, m := range splitList(q.Get("mobility")) {
		p.Mobility = append(p.Mobility, domain.MobilityFlag(m))
	}
	for _, d := range splitList(q.Get("dietary")) {
		p.Dietary = append(p.Dietary, domain.DietaryFlag(d))
	}
	return p, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *Handlers) getVenue(w http.ResponseWriter, r *http.Request) {
	v, err := h.Venues.GetVenue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getVenue body")
	}
}
