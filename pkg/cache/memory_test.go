package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(10))
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}

	if err := mc.Set(ctx, "quote_AAPL", payload{Symbol: "AAPL", Price: 187.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "quote_AAPL", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Symbol != "AAPL" || got.Price != 187.5 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var dest string
	err := mc.Get(context.Background(), "missing", &dest)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var dest string
	if err := mc.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry miss, got %v", err)
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	time.Sleep(time.Millisecond)

	// Touch "a" so "b" becomes the eviction candidate.
	var dest string
	_ = mc.Get(ctx, "a", &dest)
	time.Sleep(time.Millisecond)

	_ = mc.Set(ctx, "c", "3", time.Minute)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("expected b evicted")
	}
	if ok, _ := mc.Exists(ctx, "a"); !ok {
		t.Fatalf("expected a kept")
	}
}

func TestKeyHelpers(t *testing.T) {
	if got := Key("quote", "AAPL"); got != "quote_AAPL" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := KeyWithParams("chart", "AAPL", "compact"); got != "chart_AAPL_compact" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestMemoryCacheCloseStopsCleanup(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(time.Millisecond))
	if err := mc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case <-mc.done:
	case <-time.After(time.Second):
		t.Fatal("cleanup goroutine was not signalled to stop")
	}
	// Double close must not panic.
	if err := mc.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
