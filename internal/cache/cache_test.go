package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kjstillabower/overnight-forecast-service/internal/models"
)

func testBatch(id string) models.ForecastBatch {
	return models.ForecastBatch{
		ID:      id,
		Source:  models.SourceManual,
		Columns: []string{"Midday Temperature (°C)"},
		Rows: []models.ForecastRow{{
			Observation:             models.Observation{MiddayTemperature: 18, MiddayDewPoint: 10, WindSpeed: 5, CloudCover: 3},
			OvernightMinTemperature: 10,
		}},
	}
}

// TestInMemoryCache_GetSet verifies that Set stores values and Get retrieves
// them unchanged.
func TestInMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	val := testBatch("b1")
	if err := c.Set(ctx, "b1", val, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.ID != val.ID || len(got.Rows) != 1 || got.Rows[0].OvernightMinTemperature != 10 {
		t.Errorf("Get() = %+v, want %+v", got, val)
	}
}

func TestInMemoryCache_Get_Miss(t *testing.T) {
	c := NewInMemoryCache()

	_, ok, err := c.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want false for miss")
	}
}

// TestInMemoryCache_Get_Expired verifies that entries expire after their TTL
// and are removed on access.
func TestInMemoryCache_Get_Expired(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := NewInMemoryCacheWithClock(clock)

	if err := c.Set(ctx, "b1", testBatch("b1"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	clock.Advance(59 * time.Second)
	if _, ok, _ := c.Get(ctx, "b1"); !ok {
		t.Fatal("Get() ok = false before TTL elapsed")
	}

	clock.Advance(2 * time.Second)
	_, ok, err := c.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want false for expired entry")
	}
	if n := c.Len(); n != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", n)
	}
}

func TestInMemoryCache_SetOverwritesLatest(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	_ = c.Set(ctx, LatestKey, testBatch("first"), time.Minute)
	_ = c.Set(ctx, LatestKey, testBatch("second"), time.Minute)

	got, ok, _ := c.Get(ctx, LatestKey)
	if !ok || got.ID != "second" {
		t.Errorf("Get(latest) = %q, %v; want second, true", got.ID, ok)
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("b%d", i%5)
			_ = c.Set(ctx, key, testBatch(key), time.Minute)
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if n := c.Len(); n != 5 {
		t.Errorf("Len() = %d, want 5", n)
	}
}

func TestExpirationSeconds(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want int32
	}{
		{time.Minute, 60},
		{24 * time.Hour, 86400},
		{0, 3600},
		{-time.Second, 3600},
		{500 * time.Millisecond, 3600},
		{31 * 24 * time.Hour, 3600},
	}
	for _, tc := range tests {
		if got := expirationSeconds(tc.ttl); got != tc.want {
			t.Errorf("expirationSeconds(%v) = %d, want %d", tc.ttl, got, tc.want)
		}
	}
}

func TestParseAddrs(t *testing.T) {
	got := parseAddrs(" a:1, ,b:2,")
	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Errorf("parseAddrs() = %v", got)
	}
}
