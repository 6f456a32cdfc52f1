package cache

import (
	"context"
	"testing"
	"time"

	"TechScreen/internal/domain/models"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := NewTTLCache()
	ctx := context.Background()

	h := models.History{Symbol: "SPY", Bars: []models.PriceBar{{Close: 500}}}
	if err := c.Set(ctx, "spy:60", h, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, "spy:60")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Symbol != "SPY" || len(got.Bars) != 1 {
		t.Fatalf("unexpected history: %+v", got)
	}
}

func TestTTLCacheExpires(t *testing.T) {
	c := NewTTLCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", models.History{Symbol: "K"}, 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestTTLCacheMissUnknownKey(t *testing.T) {
	c := NewTTLCache()
	_, ok, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("unexpected hit")
	}
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", models.History{Symbol: "K"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	_, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit for zero-ttl entry: ok=%v err=%v", ok, err)
	}
}
