package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hk_itinerary/internal/adapters/cache"
	"hk_itinerary/internal/domain"
)

var criteria = domain.QueryCriteria{
	Mobility: []domain.MobilityFlag{domain.FlagWheelchair},
	Family:   domain.Family{Seniors: 1},
	Budget:   domain.BudgetRange{Min: 300, Max: 800},
	Days:     2,
	Weather:  domain.ForecastRain,
}

func batch(names ...string) []domain.VenueRecord {
	out := make([]domain.VenueRecord, 0, len(names))
	for _, n := range names {
		out = append(out, domain.VenueRecord{ID: n, Name: n, Category: domain.CategoryMuseum})
	}
	return out
}

func TestKey_SourceTimesFingerprint(t *testing.T) {
	k := cache.Key(domain.SourceAI, criteria)
	assert.Equal(t, "venues:ai_generated:"+criteria.Fingerprint(), k)
	assert.NotEqual(t, k, cache.Key(domain.SourceGovernment, criteria))
}

func TestBatches_SecondCallServedFromCache(t *testing.T) {
	b := cache.NewBatches(cache.NewMemory(16), time.Hour, time.Second)
	var calls int32
	load := func(ctx context.Context) ([]domain.VenueRecord, error) {
		atomic.AddInt32(&calls, 1)
		return batch("M+", "Tai Kwun"), nil
	}

	first, hit, err := b.Get(context.Background(), domain.SourceAI, criteria, load)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := b.Get(context.Background(), domain.SourceAI, criteria, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestBatches_ConcurrentMissesShareOneLoad(t *testing.T) {
	b := cache.NewBatches(cache.NewMemory(16), time.Hour, time.Second)
	var calls int32
	release := make(chan struct{})
	load := func(ctx context.Context) ([]domain.VenueRecord, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return batch("Ocean Park"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, _, err := b.Get(context.Background(), domain.SourceAI, criteria, load)
			assert.NoError(t, err)
			assert.Len(t, recs, 1)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestBatches_AbandonedLoadStillPopulates(t *testing.T) {
	store := cache.NewMemory(16)
	b := cache.NewBatches(store, time.Hour, time.Second)
	done := make(chan struct{})
	load := func(ctx context.Context) ([]domain.VenueRecord, error) {
		defer close(done)
		select {
		case <-time.After(80 * time.Millisecond):
			return batch("Big Buddha"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, err := b.Get(ctx, domain.SourceAI, criteria, load)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	<-done
	require.Eventually(t, func() bool {
		var got []domain.VenueRecord
		ok, _ := store.Get(context.Background(), cache.Key(domain.SourceAI, criteria), &got)
		return ok && len(got) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestBatches_FailuresAreNotCached(t *testing.T) {
	b := cache.NewBatches(cache.NewMemory(16), time.Hour, time.Second)
	var calls int32
	load := func(ctx context.Context) ([]domain.VenueRecord, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("upstream down")
	}
	for i := 0; i < 2; i++ {
		_, _, err := b.Get(context.Background(), domain.SourceGovernment, criteria, load)
		require.Error(t, err)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMemory_Expiry(t *testing.T) {
	m := cache.NewMemory(4)
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []string{"v"}, 1))
	var got []string
	ok, err := m.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"v"}, got)

	require.NoError(t, m.Del(ctx, "k"))
	ok, _ = m.Get(ctx, "k", &got)
	assert.False(t, ok)
}
