package cache

import (
	"context"
	"testing"
	"time"
)

// fakeTier is an in-process stand-in for the Redis tier.
type fakeTier struct {
	data map[string][]byte
	gets int
}

func newFakeTier() *fakeTier { return &fakeTier{data: make(map[string][]byte)} }

func (f *fakeTier) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := marshalValue(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeTier) Get(_ context.Context, key string, dest interface{}) error {
	f.gets++
	raw, ok := f.data[key]
	if !ok {
		return ErrCacheMiss
	}
	return unmarshalValue(raw, dest)
}

func (f *fakeTier) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeTier) Exists(_ context.Context, keys ...string) (bool, error) {
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			return true, nil
		}
	}
	return false, nil
}

func newTestLayered(l2 Service, backfill time.Duration) *LayeredCache {
	return &LayeredCache{
		memCache:    NewMemoryCache(WithMemoryMaxSize(100)),
		l2:          l2,
		backfillTTL: backfill,
	}
}

func TestLayeredGetPromotesToMemory(t *testing.T) {
	ctx := context.Background()
	tier := newFakeTier()
	lc := newTestLayered(tier, 30*time.Second)
	defer lc.Close()

	if err := tier.Set(ctx, "quote_AAPL", "187.5", time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got string
	if err := lc.Get(ctx, "quote_AAPL", &got); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if got != "187.5" {
		t.Fatalf("unexpected value %q", got)
	}

	// Second read is served from L1.
	before := tier.gets
	if err := lc.Get(ctx, "quote_AAPL", &got); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if tier.gets != before {
		t.Fatalf("expected L1 hit, L2 was queried %d more times", tier.gets-before)
	}
}

func TestLayeredBackfillExpiryIsBounded(t *testing.T) {
	ctx := context.Background()
	tier := newFakeTier()
	backfill := 30 * time.Second
	lc := newTestLayered(tier, backfill)
	defer lc.Close()

	if err := tier.Set(ctx, "quote_TSLA", "circuit breaker", time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got string
	if err := lc.Get(ctx, "quote_TSLA", &got); err != nil {
		t.Fatalf("get: %v", err)
	}

	lc.memCache.mutex.RLock()
	item, ok := lc.memCache.data["quote_TSLA"]
	lc.memCache.mutex.RUnlock()
	if !ok {
		t.Fatal("expected L1 backfill entry")
	}
	ttl := time.Until(item.expireAt)
	if ttl > backfill {
		t.Fatalf("L1 backfill entry lives %s, must not exceed %s", ttl, backfill)
	}
	if ttl <= 0 {
		t.Fatalf("L1 backfill entry already expired (ttl %s)", ttl)
	}
}

func TestLayeredBackfillExpires(t *testing.T) {
	ctx := context.Background()
	tier := newFakeTier()
	lc := newTestLayered(tier, 10*time.Millisecond)
	defer lc.Close()

	if err := tier.Set(ctx, "quote_MSFT", "410.1", time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var got string
	if err := lc.Get(ctx, "quote_MSFT", &got); err != nil {
		t.Fatalf("get: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	// L1 copy is gone; the next read goes back to L2.
	before := tier.gets
	if err := lc.Get(ctx, "quote_MSFT", &got); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if tier.gets == before {
		t.Fatal("expected the expired L1 copy to force an L2 read")
	}
}

func TestLayeredDeleteClearsBothTiers(t *testing.T) {
	ctx := context.Background()
	tier := newFakeTier()
	lc := newTestLayered(tier, 30*time.Second)
	defer lc.Close()

	if err := lc.Set(ctx, "quote_NVDA", "900", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := lc.Delete(ctx, "quote_NVDA"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got string
	if err := lc.Get(ctx, "quote_NVDA", &got); err == nil {
		t.Fatal("expected miss after delete")
	}
}
