package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bluele/gcache"

	"hk_itinerary/internal/adapters/observability"
)

// Memory is an in-process LRU backend with per-entry expiry. Values are
// stored as JSON so readers never share memory with writers.
type Memory struct{ c gcache.Cache }

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 1024
	}
	return &Memory{c: gcache.New(size).LRU().Build()}
}

func (m *Memory) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := m.c.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(v.([]byte), dst)
}

func (m *Memory) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("memory", "set")
	if ttlSec <= 0 {
		return m.c.Set(key, b)
	}
	return m.c.SetWithExpire(key, b, time.Duration(ttlSec)*time.Second)
}

func (m *Memory) Del(ctx context.Context, key string) error {
	observability.ObserveCache("memory", "del")
	m.c.Remove(key)
	return nil
}
