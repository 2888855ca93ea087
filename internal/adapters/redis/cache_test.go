package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "hk_itinerary/internal/adapters/redis"
	"hk_itinerary/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	in := []domain.VenueRecord{{ID: "hk_001", Name: "Victoria Peak", Accessibility: domain.AccessibilityInfo{Wheelchair: domain.No}}}
	if err := c.Set(ctx, "venues:offline_curated:abc", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("venues:offline_curated:abc"); ttl.Seconds() != 60 {
		t.Fatalf("ttl: %v", ttl)
	}

	var out []domain.VenueRecord
	ok, err := c.Get(ctx, "venues:offline_curated:abc", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0].Accessibility.Wheelchair != domain.No || out[0].Accessibility.Elevator != domain.Unknown {
		t.Fatalf("round trip lost tri-state: %+v", out)
	}

	if err := c.Del(ctx, "venues:offline_curated:abc"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "venues:offline_curated:abc", &out); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_SetNXKeepsFirstWriter(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	if ok, err := c.SetNX(ctx, "k", []string{"first"}, 60); err != nil || !ok {
		t.Fatalf("first SetNX: ok=%v err=%v", ok, err)
	}
	if ok, err := c.SetNX(ctx, "k", []string{"second"}, 60); err != nil || ok {
		t.Fatalf("second SetNX should not write: ok=%v err=%v", ok, err)
	}
	var got []string
	if _, err := c.Get(ctx, "k", &got); err != nil || got[0] != "first" {
		t.Fatalf("got %v err %v", got, err)
	}
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "k", 1, 1)
	mr.FastForward(2 * time.Second)
	var n int
	if ok, _ := c.Get(ctx, "k", &n); ok {
		t.Fatalf("expected expiry")
	}
}
