package hko_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"hk_itinerary/internal/adapters/hko"
	"hk_itinerary/internal/domain"
)

const fnd = `{
  "generalSituation": "An active trough of low pressure will bring showers.",
  "weatherForecast": [
    {"forecastDate":"20260601","forecastWeather":"Heavy showers and squally thunderstorms.","forecastMaxtemp":{"value":29,"unit":"C"},"forecastMintemp":{"value":26,"unit":"C"},"forecastMaxrh":{"value":95,"unit":"percent"},"PSR":"High"},
    {"forecastDate":"20260602","forecastWeather":"Mainly fine and very hot.","forecastMaxtemp":{"value":34,"unit":"C"},"forecastMintemp":{"value":28,"unit":"C"},"forecastMaxrh":{"value":85,"unit":"percent"},"PSR":"Low"},
    {"forecastDate":"20260603","forecastWeather":"Sunny periods.","forecastMaxtemp":{"value":30,"unit":"C"},"forecastMintemp":{"value":26,"unit":"C"},"forecastMaxrh":{"value":80,"unit":"percent"},"PSR":"Low"}
  ]
}`

func TestClient_Forecast(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fnd))
	}))
	defer ts.Close()

	days, err := hko.New(ts.URL, 100).Forecast(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("days: %d", len(days))
	}
	if days[0].Tag != domain.ForecastRain || days[1].Tag != domain.ForecastExtremeHeat {
		t.Fatalf("unexpected tags: %s %s", days[0].Tag, days[1].Tag)
	}
	if days[0].Date != "20260601" || days[0].HumidityPct != 95 {
		t.Fatalf("unexpected day: %+v", days[0])
	}
}

func TestClient_ForecastBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()
	if _, err := hko.New(ts.URL, 100).Forecast(context.Background(), 3); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		psr, text string
		min, max  float64
		want      domain.ForecastTag
	}{
		{"Medium High", "Cloudy", 20, 25, domain.ForecastRain},
		{"Low", "Thunderstorms later", 24, 30, domain.ForecastRain},
		{"Low", "Fine", 28, 35, domain.ForecastExtremeHeat},
		{"Low", "Dry and cold", 9, 15, domain.ForecastExtremeCold},
		{"Medium Low", "Sunny intervals", 20, 26, domain.ForecastClear},
	}
	for _, c := range cases {
		if got := hko.Classify(c.psr, c.text, c.min, c.max); got != c.want {
			t.Fatalf("Classify(%q,%q,%v,%v)=%s want %s", c.psr, c.text, c.min, c.max, got, c.want)
		}
	}
}
