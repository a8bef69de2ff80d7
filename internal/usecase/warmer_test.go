package usecase

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/cache"
	applogger "StockPulse/pkg/logger"
)

type warmerMetrics struct {
	lastPrice map[string]float64
}

func (m *warmerMetrics) RecordCacheHit(string, string)     {}
func (m *warmerMetrics) RecordCacheMiss(string, string)    {}
func (m *warmerMetrics) RecordUpstreamCall(string, string) {}
func (m *warmerMetrics) RecordLatency(string, float64)     {}
func (m *warmerMetrics) RecordLastPrice(symbol string, price float64) {
	if m.lastPrice == nil {
		m.lastPrice = map[string]float64{}
	}
	m.lastPrice[symbol] = price
}

func newTestWarmer(t *testing.T, ttl cache.Service) *QuoteWarmer {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewQuoteWarmer(nil, ttl, time.Minute, &warmerMetrics{}, log)
}

func TestWarmerRefreshesPriceAndTimestamp(t *testing.T) {
	ctx := context.Background()
	ttl := cache.NewMemoryCache()
	defer ttl.Close()

	seeded := models.Quote{
		Symbol:        "AAPL",
		Price:         187.5,
		Change:        1.2,
		ChangePercent: "0.64",
		Volume:        1000,
		Timestamp:     "2026-08-20",
	}
	if err := ttl.Set(ctx, cache.Key("quote", "AAPL"), seeded, time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := newTestWarmer(t, ttl)
	tickAt := time.Date(2026, 8, 25, 15, 4, 5, 0, time.UTC)
	w.apply(ctx, &models.PriceTick{
		Symbol:    "AAPL",
		Price:     190.25,
		Volume:    10,
		Timestamp: tickAt.Unix(),
	})

	var got models.Quote
	if err := ttl.Get(ctx, cache.Key("quote", "AAPL"), &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 190.25 {
		t.Fatalf("price not refreshed: %+v", got)
	}
	if got.Timestamp != "2026-08-25" {
		t.Fatalf("timestamp not refreshed from tick, got %q", got.Timestamp)
	}
	// Change fields come only from full quotes; the tick must not touch them.
	if got.Change != seeded.Change || got.ChangePercent != seeded.ChangePercent {
		t.Fatalf("change fields altered: %+v", got)
	}
}

func TestWarmerIgnoresUncachedSymbols(t *testing.T) {
	ctx := context.Background()
	ttl := cache.NewMemoryCache()
	defer ttl.Close()

	w := newTestWarmer(t, ttl)
	w.apply(ctx, &models.PriceTick{
		Symbol:    "TSLA",
		Price:     250,
		Timestamp: time.Now().Unix(),
	})

	var got models.Quote
	if err := ttl.Get(ctx, cache.Key("quote", "TSLA"), &got); err == nil {
		t.Fatal("tick alone must not create a cache entry")
	}
}

func TestWarmerThrottlesPerSymbol(t *testing.T) {
	ctx := context.Background()
	ttl := cache.NewMemoryCache()
	defer ttl.Close()

	seeded := models.Quote{Symbol: "AAPL", Price: 100, Timestamp: "2026-08-20"}
	if err := ttl.Set(ctx, cache.Key("quote", "AAPL"), seeded, time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := newTestWarmer(t, ttl)
	now := time.Now().Unix()
	w.apply(ctx, &models.PriceTick{Symbol: "AAPL", Price: 101, Timestamp: now})
	w.apply(ctx, &models.PriceTick{Symbol: "AAPL", Price: 102, Timestamp: now})

	var got models.Quote
	if err := ttl.Get(ctx, cache.Key("quote", "AAPL"), &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 101 {
		t.Fatalf("second tick within the throttle window should be dropped, got price %v", got.Price)
	}
}
