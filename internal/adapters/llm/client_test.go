package llm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"hk_itinerary/internal/adapters/llm"
	"hk_itinerary/internal/domain"
)

func TestClient_Complete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"[{\"name\":\"M+\"}]"}}]}`))
	}))
	defer ts.Close()

	cl, err := llm.New(ts.URL+"/v1", "test-key", "m")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	out, err := cl.Complete(context.Background(), "system", "prompt")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != `[{"name":"M+"}]` {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestClient_RateLimitedIsReportedOnce(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer ts.Close()

	cl, _ := llm.New(ts.URL+"/v1", "test-key", "m")
	_, err := cl.Complete(context.Background(), "s", "p")
	if !errors.Is(err, &domain.SourceError{Kind: domain.KindRateLimited, Source: domain.SourceAI}) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected one call, got %d", hits)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := llm.New("", "", "m"); err == nil {
		t.Fatalf("expected error")
	}
}
