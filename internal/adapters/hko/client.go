// Package hko reads the Hong Kong Observatory 9-day forecast.
package hko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/domain"
)

const (
	heatMaxC = 33.0
	coldMinC = 12.0
)

type Client struct {
	url string
	hc  *http.Client
	rl  *rate.Limiter
}

func New(url string, rps int) *Client {
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: 10 * time.Second},
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}
}

type valueUnit struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type fndDay struct {
	ForecastDate    string    `json:"forecastDate"`
	ForecastWeather string    `json:"forecastWeather"`
	ForecastMaxtemp valueUnit `json:"forecastMaxtemp"`
	ForecastMintemp valueUnit `json:"forecastMintemp"`
	ForecastMaxrh   valueUnit `json:"forecastMaxrh"`
	PSR             string    `json:"PSR"`
}

type fnd struct {
	GeneralSituation string   `json:"generalSituation"`
	WeatherForecast  []fndDay `json:"weatherForecast"`
}

// Forecast returns up to days entries starting tomorrow.
func (c *Client) Forecast(ctx context.Context, days int) ([]domain.DayForecast, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("hko", "fnd", 0, time.Since(start))
		return nil, fmt.Errorf("hko forecast: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("hko", "fnd", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("hko forecast: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var body fnd
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("hko forecast: decode: %w", err)
	}

	out := make([]domain.DayForecast, 0, days)
	for _, d := range body.WeatherForecast {
		if len(out) == days {
			break
		}
		out = append(out, domain.DayForecast{
			Date:        d.ForecastDate,
			Tag:         Classify(d.PSR, d.ForecastWeather, d.ForecastMintemp.Value, d.ForecastMaxtemp.Value),
			Description: d.ForecastWeather,
			MinTempC:    d.ForecastMintemp.Value,
			MaxTempC:    d.ForecastMaxtemp.Value,
			HumidityPct: d.ForecastMaxrh.Value,
		})
	}
	return out, nil
}

// Classify maps the probability of significant rain, the weather text and
// temperatures onto a forecast tag. Rain wins over temperature.
func Classify(psr, weather string, minC, maxC float64) domain.ForecastTag {
	switch strings.ToLower(strings.TrimSpace(psr)) {
	case "high", "medium high":
		return domain.ForecastRain
	}
	w := strings.ToLower(weather)
	for _, word := range []string{"heavy rain", "rainstorm", "thunderstorm", "squally", "typhoon"} {
		if strings.Contains(w, word) {
			return domain.ForecastRain
		}
	}
	switch {
	case maxC >= heatMaxC:
		return domain.ForecastExtremeHeat
	case minC > 0 && minC <= coldMinC:
		return domain.ForecastExtremeCold
	}
	return domain.ForecastClear
}
