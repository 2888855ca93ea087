package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hkplan", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hkplan", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hkplan", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hkplan", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hkplan", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|shared
	)
	SourceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hkplan", Name: "source_fetches_total", Help: "Venue source fetch outcomes."},
		[]string{"source", "outcome"}, // outcome: ok|timeout|unreachable|invalid_response|rate_limited
	)
	SourceRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hkplan", Name: "source_records_total", Help: "Venue records accepted or dropped per source."},
		[]string{"source", "result"}, // result: accepted|dropped
	)
	Itineraries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hkplan", Name: "itineraries_total", Help: "Generated itineraries by terminal status."},
		[]string{"status"},
	)
	PrunedVenues = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hkplan", Name: "budget_pruned_venues_total", Help: "Candidates pruned before packing because they cannot fit the budget."},
	)
)

// Serve exposes reg on addr/metrics in the background. An empty addr
// disables it. The returned server is nil when disabled.
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		SourceFetches, SourceRecords, Itineraries, PrunedVenues)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveSource(source, outcome string, accepted, dropped int) {
	SourceFetches.WithLabelValues(source, outcome).Inc()
	if accepted > 0 {
		SourceRecords.WithLabelValues(source, "accepted").Add(float64(accepted))
	}
	if dropped > 0 {
		SourceRecords.WithLabelValues(source, "dropped").Add(float64(dropped))
	}
}

func ObserveItinerary(status string) { Itineraries.WithLabelValues(status).Inc() }

func ObservePruned(n int) { PrunedVenues.Add(float64(n)) }

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
