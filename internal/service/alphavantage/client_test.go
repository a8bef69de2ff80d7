package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/pkg/cache"
	pkghttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

type fakeQuoteStore struct {
	mu      sync.Mutex
	records map[string]struct {
		quote   models.Quote
		updated time.Time
	}
	upserts int
}

func newFakeQuoteStore() *fakeQuoteStore {
	return &fakeQuoteStore{records: make(map[string]struct {
		quote   models.Quote
		updated time.Time
	})}
}

func (s *fakeQuoteStore) GetFresh(_ context.Context, symbol string, maxAge time.Duration) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[symbol]
	if !ok || time.Since(rec.updated) > maxAge {
		return nil, nil
	}
	q := rec.quote
	return &q, nil
}

func (s *fakeQuoteStore) Upsert(_ context.Context, q models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[q.Symbol] = struct {
		quote   models.Quote
		updated time.Time
	}{q, time.Now()}
	s.upserts++
	return nil
}

func (s *fakeQuoteStore) Health(context.Context) error { return nil }

func (s *fakeQuoteStore) age(symbol string, age time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[symbol]
	rec.updated = time.Now().Add(-age)
	s.records[symbol] = rec
}

type nopMetrics struct{}

func (nopMetrics) RecordCacheHit(string, string)     {}
func (nopMetrics) RecordCacheMiss(string, string)    {}
func (nopMetrics) RecordUpstreamCall(string, string) {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordLatency(string, float64)     {}

type nopArchive struct{}

func (nopArchive) Archive(context.Context, models.Quote) error { return nil }
func (nopArchive) Close() error                                { return nil }

func quoteBody(symbol string, price, change float64, volume int64) string {
	return fmt.Sprintf(`{"Global Quote": {
		"01. symbol": %q,
		"05. price": "%.4f",
		"06. volume": "%d",
		"07. latest trading day": "2026-08-25",
		"09. change": "%.4f",
		"10. change percent": "1.2500%%"
	}}`, symbol, price, volume, change)
}

func newTestClient(t *testing.T, upstream string) (*Client, *fakeQuoteStore, cache.Service) {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	store := newFakeQuoteStore()
	ttl := cache.NewMemoryCache()
	c := NewClient(Config{
		APIKey:           "test-key",
		BaseURL:          upstream,
		QuoteTTL:         time.Minute,
		ChartTTL:         30 * time.Minute,
		SearchTTL:        time.Hour,
		OverviewTTL:      5 * time.Minute,
		FreshWindow:      5 * time.Minute,
		RateCapacity:     1000,
		RateRefillPerSec: 1000,
	}, pkghttp.NewClient(pkghttp.WithTimeout(2*time.Second)), ttl, store, nopArchive{}, ratelimit.New(), nopMetrics{}, log)
	return c, store, ttl
}

func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGetQuoteFetchesAndShortCircuits(t *testing.T) {
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteBody("AAPL", 189.5, 2.31, 43210000))
	})
	c, store, _ := newTestClient(t, srv.URL)

	q, err := c.GetQuote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}
	if q.Symbol != "AAPL" || q.Price != 189.5 || q.Volume != 43210000 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.ChangePercent != "1.2500" {
		t.Fatalf("percent sign should be stripped, got %q", q.ChangePercent)
	}
	if store.upserts != 1 {
		t.Fatalf("expected 1 durable upsert, got %d", store.upserts)
	}

	q2, err := c.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("second get quote: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("second call within freshness window must not hit upstream, got %d calls", *calls)
	}
	if *q2 != *q {
		t.Fatalf("cached quote differs: %+v vs %+v", q2, q)
	}
}

func TestGetQuoteTTLHitSurvivesDurableStaleness(t *testing.T) {
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteBody("MSFT", 410.0, -1.0, 1000))
	})
	c, store, _ := newTestClient(t, srv.URL)

	if _, err := c.GetQuote(context.Background(), "MSFT"); err != nil {
		t.Fatalf("get quote: %v", err)
	}
	store.age("MSFT", 10*time.Minute)

	if _, err := c.GetQuote(context.Background(), "MSFT"); err != nil {
		t.Fatalf("second get quote: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("TTL hit must be honored independently of durable staleness, got %d upstream calls", *calls)
	}
}

func TestGetQuoteRateLimitedNeverCached(t *testing.T) {
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note": "Thank you for using Alpha Vantage!"}`)
	})
	c, store, _ := newTestClient(t, srv.URL)

	_, err := c.GetQuote(context.Background(), "AAPL")
	if KindOf(err) != KindRateLimited {
		t.Fatalf("expected rate_limited, got %v", err)
	}
	if store.upserts != 0 {
		t.Fatal("failures must not be written to the durable cache")
	}

	_, err = c.GetQuote(context.Background(), "AAPL")
	if KindOf(err) != KindRateLimited {
		t.Fatalf("expected rate_limited on retry, got %v", err)
	}
	if *calls != 2 {
		t.Fatalf("errors are never cached, expected 2 upstream calls, got %d", *calls)
	}
}

func TestGetQuoteClassification(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Kind
	}{
		{"upstream error marker", `{"Error Message": "Invalid API call"}`, KindUpstream},
		{"missing envelope", `{}`, KindInvalidFormat},
		{"unknown symbol", `{"Global Quote": {}}`, KindNotFound},
		{"malformed body", `<html>`, KindInvalidFormat},
		{"bad price", `{"Global Quote": {"01. symbol": "AAPL", "05. price": "n/a",
			"06. volume": "1", "07. latest trading day": "2026-08-25",
			"09. change": "0", "10. change percent": "0%"}}`, KindParse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			})
			c, _, _ := newTestClient(t, srv.URL)
			_, err := c.GetQuote(context.Background(), "AAPL")
			if KindOf(err) != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestGetQuoteValidation(t *testing.T) {
	c, _, _ := newTestClient(t, "http://127.0.0.1:0")
	_, err := c.GetQuote(context.Background(), "   ")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation_error, got %v", err)
	}
}

func TestGetQuoteTimeout(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, quoteBody("AAPL", 1, 0, 1))
	})
	c, _, _ := newTestClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.GetQuote(ctx, "AAPL")
	if KindOf(err) != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty query must not reach upstream")
	})
	c, _, _ := newTestClient(t, srv.URL)

	matches, err := c.SearchSymbols(context.Background(), "  ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 || *calls != 0 {
		t.Fatalf("expected empty result with no upstream call, got %d matches, %d calls", len(matches), *calls)
	}
}

func TestSearchMissingEnvelopeIsEmptySuccess(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	c, _, _ := newTestClient(t, srv.URL)

	matches, err := c.SearchSymbols(context.Background(), "zzzz")
	if err != nil {
		t.Fatalf("absence of matches is success, got %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected empty result, got %d", len(matches))
	}
}

func TestSearchCapsAtTenAndCaches(t *testing.T) {
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := `{"bestMatches": [`
		for i := 0; i < 12; i++ {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"1. symbol": "S%d", "2. name": "Stock %d",
				"3. type": "Equity", "4. region": "United States", "8. currency": "USD"}`, i, i)
		}
		body += `]}`
		fmt.Fprint(w, body)
	})
	c, _, _ := newTestClient(t, srv.URL)

	matches, err := c.SearchSymbols(context.Background(), "Sto")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 10 {
		t.Fatalf("expected 10 matches, got %d", len(matches))
	}
	if matches[0].Symbol != "S0" || matches[0].Region != "United States" {
		t.Fatalf("unexpected first match: %+v", matches[0])
	}

	if _, err := c.SearchSymbols(context.Background(), "STO"); err != nil {
		t.Fatalf("cached search: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("search key is case-insensitive, expected 1 upstream call, got %d", *calls)
	}
}

func chartBody(days int) string {
	body := `{"Time Series (Daily)": {`
	for i := 0; i < days; i++ {
		if i > 0 {
			body += ","
		}
		date := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02")
		body += fmt.Sprintf(`%q: {"1. open": "%d.0", "2. high": "%d.5",
			"3. low": "%d.0", "4. close": "%d.2", "5. volume": "%d"}`,
			date, 100+i, 101+i, 99+i, 100+i, 1000+i)
	}
	body += `}}`
	return body
}

func TestGetDailyChartCompact(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody(35))
	})
	c, _, _ := newTestClient(t, srv.URL)

	series, err := c.GetDailyChart(context.Background(), "AAPL", true)
	if err != nil {
		t.Fatalf("get chart: %v", err)
	}
	if len(series.Bars) != 30 {
		t.Fatalf("compact mode keeps 30 bars, got %d", len(series.Bars))
	}
	for i := 1; i < len(series.Bars); i++ {
		if series.Bars[i].Date <= series.Bars[i-1].Date {
			t.Fatalf("bars must ascend by date: %s then %s", series.Bars[i-1].Date, series.Bars[i].Date)
		}
	}
	// The 30 most recent of 35 days start at day 6.
	if series.Bars[0].Date != "2026-07-06" {
		t.Fatalf("expected truncation to the most recent bars, first is %s", series.Bars[0].Date)
	}
}

func TestGetDailyChartFull(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody(35))
	})
	c, _, _ := newTestClient(t, srv.URL)

	series, err := c.GetDailyChart(context.Background(), "AAPL", false)
	if err != nil {
		t.Fatalf("get chart: %v", err)
	}
	if len(series.Bars) != 35 {
		t.Fatalf("full mode returns every bar, got %d", len(series.Bars))
	}
}

func TestGetDailyChartNotFound(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	c, _, _ := newTestClient(t, srv.URL)

	_, err := c.GetDailyChart(context.Background(), "ZZZZ", true)
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestMarketOverviewPartialFailure(t *testing.T) {
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "BAD" {
			fmt.Fprint(w, `{"Error Message": "Invalid API call"}`)
			return
		}
		fmt.Fprint(w, quoteBody("GOOD", 50.0, 0.5, 2000))
	})
	c, _, _ := newTestClient(t, srv.URL)

	overview, err := c.GetMarketOverview(context.Background(), []string{"GOOD", "BAD"})
	if err != nil {
		t.Fatalf("partial results are success, got %v", err)
	}
	if len(overview.Quotes) != 1 || overview.Quotes[0].Symbol != "GOOD" {
		t.Fatalf("expected only GOOD, got %+v", overview.Quotes)
	}
	if len(overview.Failed) != 1 || overview.Failed[0].Symbol != "BAD" {
		t.Fatalf("failures must be surfaced: %+v", overview.Failed)
	}

	before := *calls
	again, err := c.GetMarketOverview(context.Background(), []string{"GOOD", "BAD"})
	if err != nil {
		t.Fatalf("cached overview: %v", err)
	}
	if *calls != before {
		t.Fatal("cached overview must not trigger upstream calls")
	}
	if len(again.Quotes) != 1 {
		t.Fatalf("cached overview differs: %+v", again)
	}
}

func TestMarketOverviewUsesDurableCache(t *testing.T) {
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("durable hits must not reach upstream")
	})
	c, store, _ := newTestClient(t, srv.URL)
	_ = store.Upsert(context.Background(), models.Quote{Symbol: "AAPL", Price: 1})
	_ = store.Upsert(context.Background(), models.Quote{Symbol: "MSFT", Price: 2})
	store.upserts = 0

	overview, err := c.GetMarketOverview(context.Background(), []string{"AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.Quotes) != 2 || *calls != 0 {
		t.Fatalf("expected 2 durable hits and no upstream calls, got %d quotes, %d calls", len(overview.Quotes), *calls)
	}
	if overview.Quotes[0].Symbol != "AAPL" || overview.Quotes[1].Symbol != "MSFT" {
		t.Fatalf("input order must be preserved: %+v", overview.Quotes)
	}
}
