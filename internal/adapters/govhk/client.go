// Package govhk reads the Hong Kong Tourism Board open-data attraction list.
package govhk

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/domain"
)

type Client struct {
	url string
	hc  *http.Client
	rl  *rate.Limiter
}

func New(url string, rps int) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("attractions URL is required")
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: 20 * time.Second},
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// MajorAttractions returns one map per CSV row, keyed by header.
func (c *Client) MajorAttractions(ctx context.Context) ([]map[string]string, error) {
	body, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := parseCSV(body)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceGovernment, domain.KindInvalidResponse, err)
	}
	return rows, nil
}

// get performs one rate-limited GET. Failures are reported once; the caller
// decides whether to ask again.
func (c *Client) get(ctx context.Context) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, domain.AsSourceError(domain.SourceGovernment, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceGovernment, domain.KindUnreachable, err)
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", "hk-itinerary/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("govhk", "major_attractions", 0, time.Since(start))
		return nil, domain.AsSourceError(domain.SourceGovernment, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("govhk", "major_attractions", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return nil, domain.AsSourceError(domain.SourceGovernment, err)
		}
		return b, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		msg := "rate limited"
		if wait := retryAfter(resp); wait > 0 {
			msg = fmt.Sprintf("rate limited, retry after %s", wait)
		}
		return nil, &domain.SourceError{Source: domain.SourceGovernment, Kind: domain.KindRateLimited, Message: msg}
	case resp.StatusCode >= 500:
		return nil, domain.NewSourceError(domain.SourceGovernment, domain.KindUnreachable, fmt.Errorf("remote %d", resp.StatusCode))
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.NewSourceError(domain.SourceGovernment, domain.KindInvalidResponse,
			fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}
}

func parseCSV(body []byte) ([]map[string]string, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv")
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	var out []map[string]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
