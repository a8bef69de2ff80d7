package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/pkg/cache"
	pkghttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

const limiterKey = "alphavantage"

// Config holds upstream and caching policy for the quote client.
type Config struct {
	APIKey  string
	BaseURL string

	QuoteTTL    time.Duration
	ChartTTL    time.Duration
	SearchTTL   time.Duration
	OverviewTTL time.Duration

	// FreshWindow is the durable-cache staleness window for quotes.
	FreshWindow time.Duration

	// Token bucket applied to every upstream call. Cache hits never
	// consume tokens.
	RateCapacity     float64
	RateRefillPerSec float64
}

// Client fetches quotes, symbol matches and daily charts from Alpha Vantage,
// wrapping every upstream call in a two-tier cache: the durable store is the
// first-line freshness check for quotes, the TTL cache covers everything.
//
// Fetch flow for one quote: durable check, TTL check, rate-limited upstream
// call, classify, write both tiers on success. No retries; a failed fetch is
// terminal for that request and is never cached.
type Client struct {
	cfg     Config
	http    *pkghttp.Client
	ttl     cache.Service
	durable repository.QuoteStore
	archive repository.Archiver
	limiter *ratelimit.Limiter
	metrics repository.Metrics
	log     *applogger.Logger
}

// NewClient wires the quote client.
func NewClient(
	cfg Config,
	httpClient *pkghttp.Client,
	ttl cache.Service,
	durable repository.QuoteStore,
	archive repository.Archiver,
	limiter *ratelimit.Limiter,
	metrics repository.Metrics,
	log *applogger.Logger,
) *Client {
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		ttl:     ttl,
		durable: durable,
		archive: archive,
		limiter: limiter,
		metrics: metrics,
		log:     log,
	}
}

// GetQuote returns the current quote for symbol. Durable-cache hits within
// the freshness window short-circuit before any TTL or upstream work.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, newError(KindValidation, "symbol is required")
	}

	if q := c.durableFresh(ctx, symbol); q != nil {
		c.metrics.RecordCacheHit("durable", "quote")
		return q, nil
	}
	c.metrics.RecordCacheMiss("durable", "quote")

	key := cache.Key("quote", symbol)
	var cached models.Quote
	if err := c.ttl.Get(ctx, key, &cached); err == nil {
		c.metrics.RecordCacheHit("ttl", "quote")
		return &cached, nil
	}
	c.metrics.RecordCacheMiss("ttl", "quote")

	q, err := c.fetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// Both cache writes and archival are best-effort side effects.
	_ = c.ttl.Set(ctx, key, q, c.cfg.QuoteTTL)
	if err := c.durable.Upsert(ctx, *q); err != nil {
		c.log.Warn("durable cache upsert failed",
			applogger.String("symbol", symbol), applogger.Error(err))
	}
	if err := c.archive.Archive(ctx, *q); err != nil {
		c.log.Warn("quote archive failed",
			applogger.String("symbol", symbol), applogger.Error(err))
	}
	c.metrics.RecordLastPrice(q.Symbol, q.Price)
	return q, nil
}

// SearchSymbols returns up to 10 fuzzy matches for query. Absence of
// matches is a valid empty result, never a failure.
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SymbolMatch{}, nil
	}

	key := cache.Key("search", strings.ToLower(query))
	var cached []models.SymbolMatch
	if err := c.ttl.Get(ctx, key, &cached); err == nil {
		c.metrics.RecordCacheHit("ttl", "search")
		return cached, nil
	}
	c.metrics.RecordCacheMiss("ttl", "search")

	var payload symbolSearchPayload
	if err := c.doRequest(ctx, "search", map[string]string{
		"function": "SYMBOL_SEARCH",
		"keywords": query,
	}, &payload); err != nil {
		return nil, err
	}

	matches := make([]models.SymbolMatch, 0, 10)
	for _, m := range payload.BestMatches {
		matches = append(matches, models.SymbolMatch{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Type:     m.Type,
			Region:   m.Region,
			Currency: m.Currency,
		})
		if len(matches) == 10 {
			break
		}
	}

	_ = c.ttl.Set(ctx, key, matches, c.cfg.SearchTTL)
	return matches, nil
}

// GetDailyChart returns the daily OHLCV series for symbol, sorted ascending
// by date. Compact mode keeps only the 30 most recent bars.
func (c *Client) GetDailyChart(ctx context.Context, symbol string, compact bool) (*models.ChartSeries, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, newError(KindValidation, "symbol is required")
	}

	mode := "full"
	if compact {
		mode = "compact"
	}
	key := cache.KeyWithParams("chart", symbol, mode)
	var cached models.ChartSeries
	if err := c.ttl.Get(ctx, key, &cached); err == nil {
		c.metrics.RecordCacheHit("ttl", "chart")
		return &cached, nil
	}
	c.metrics.RecordCacheMiss("ttl", "chart")

	var payload dailySeriesPayload
	if err := c.doRequest(ctx, "chart", map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     symbol,
		"outputsize": mode,
	}, &payload); err != nil {
		return nil, err
	}
	if payload.TimeSeries == nil {
		return nil, newError(KindNotFound, "chart data not available for "+symbol)
	}

	dates := make([]string, 0, len(payload.TimeSeries))
	for date := range payload.TimeSeries {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	bars := make([]models.ChartBar, 0, len(dates))
	for _, date := range dates {
		raw := payload.TimeSeries[date]
		bar, err := parseBar(date, raw)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	if compact && len(bars) > 30 {
		bars = bars[len(bars)-30:]
	}

	series := &models.ChartSeries{Symbol: symbol, Bars: bars}
	_ = c.ttl.Set(ctx, key, series, c.cfg.ChartTTL)
	return series, nil
}

// GetMarketOverview fetches quotes for symbols in order, best-effort. Failed
// symbols are reported in Failed rather than aborting the batch; partial
// results are success. The whole result is cached under one aggregate key.
func (c *Client) GetMarketOverview(ctx context.Context, symbols []string) (*models.MarketOverview, error) {
	key := cache.Key("market", "overview")
	var cached models.MarketOverview
	if err := c.ttl.Get(ctx, key, &cached); err == nil {
		c.metrics.RecordCacheHit("ttl", "overview")
		return &cached, nil
	}
	c.metrics.RecordCacheMiss("ttl", "overview")

	overview := &models.MarketOverview{Quotes: make([]models.Quote, 0, len(symbols))}
	for _, symbol := range symbols {
		symbol = util.NormalizeSymbol(symbol)
		if symbol == "" {
			continue
		}
		if q := c.durableFresh(ctx, symbol); q != nil {
			c.metrics.RecordCacheHit("durable", "quote")
			overview.Quotes = append(overview.Quotes, *q)
			continue
		}
		q, err := c.GetQuote(ctx, symbol)
		if err != nil {
			c.log.Warn("overview symbol fetch failed",
				applogger.String("symbol", symbol), applogger.Error(err))
			overview.Failed = append(overview.Failed, models.SymbolError{
				Symbol: symbol,
				Error:  err.Error(),
			})
			continue
		}
		overview.Quotes = append(overview.Quotes, *q)
	}

	_ = c.ttl.Set(ctx, key, overview, c.cfg.OverviewTTL)
	return overview, nil
}

// durableFresh reads the durable store, treating store errors as misses so
// database trouble degrades to an upstream fetch instead of failing reads.
func (c *Client) durableFresh(ctx context.Context, symbol string) *models.Quote {
	q, err := c.durable.GetFresh(ctx, symbol, c.cfg.FreshWindow)
	if err != nil {
		c.log.Warn("durable cache read failed",
			applogger.String("symbol", symbol), applogger.Error(err))
		return nil
	}
	return q
}

func (c *Client) fetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var payload globalQuotePayload
	if err := c.doRequest(ctx, "quote", map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
	}, &payload); err != nil {
		return nil, err
	}

	gq := payload.GlobalQuote
	if gq == nil {
		return nil, newError(KindInvalidFormat, "missing quote envelope")
	}
	if gq.Symbol == "" {
		// Alpha Vantage answers unknown symbols with an empty object.
		return nil, newError(KindNotFound, "no quote data for "+symbol)
	}

	price, err := strconv.ParseFloat(gq.Price, 64)
	if err != nil {
		return nil, wrapError(KindParse, "price", err)
	}
	change, err := strconv.ParseFloat(gq.Change, 64)
	if err != nil {
		return nil, wrapError(KindParse, "change", err)
	}
	volume, err := strconv.ParseInt(gq.Volume, 10, 64)
	if err != nil {
		return nil, wrapError(KindParse, "volume", err)
	}

	return &models.Quote{
		Symbol:        gq.Symbol,
		Price:         price,
		Change:        change,
		ChangePercent: strings.TrimSuffix(gq.ChangePercent, "%"),
		Volume:        volume,
		Timestamp:     gq.LatestDay,
	}, nil
}

// doRequest performs one rate-limited upstream call and decodes the body
// into dest, classifying transport, format and upstream-marker failures.
func (c *Client) doRequest(ctx context.Context, operation string, params map[string]string, dest marked) error {
	classified := func(err *Error) error {
		c.metrics.RecordUpstreamCall(operation, string(err.Kind))
		return err
	}

	if err := c.limiter.Wait(ctx, limiterKey, c.cfg.RateCapacity, c.cfg.RateRefillPerSec); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return classified(wrapError(KindTimeout, "rate limit wait", err))
		}
		return classified(wrapError(KindRequestFailed, "rate limit wait", err))
	}

	params["apikey"] = c.cfg.APIKey
	start := time.Now()
	resp, err := c.http.SendRequest(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.cfg.BaseURL,
		QueryParams: params,
	})
	c.metrics.RecordLatency(operation, time.Since(start).Seconds())
	if err != nil {
		if isTimeout(err) {
			return classified(wrapError(KindTimeout, "upstream request", err))
		}
		return classified(wrapError(KindRequestFailed, "upstream request", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classified(wrapError(KindRequestFailed, "read body", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classified(newError(KindRequestFailed, "unexpected status "+strconv.Itoa(resp.StatusCode)))
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return classified(wrapError(KindInvalidFormat, "malformed body", err))
	}
	if err := dest.failure(); err != nil {
		return classified(err)
	}

	c.metrics.RecordUpstreamCall(operation, "success")
	return nil
}

// marked is any upstream payload carrying the shared error markers.
type marked interface{ failure() *Error }

// failure maps the upstream markers to the error taxonomy. A rate-limit
// note and an explicit error message are mutually exclusive in practice;
// the note wins when both appear.
func (e *envelope) failure() *Error {
	if e.Note != "" || e.Information != "" {
		return newError(KindRateLimited, "upstream rate limit exceeded")
	}
	if e.ErrorMessage != "" {
		return newError(KindUpstream, e.ErrorMessage)
	}
	return nil
}

func parseBar(date string, raw dailyBar) (models.ChartBar, error) {
	open, err := strconv.ParseFloat(raw.Open, 64)
	if err != nil {
		return models.ChartBar{}, wrapError(KindParse, "open", err)
	}
	high, err := strconv.ParseFloat(raw.High, 64)
	if err != nil {
		return models.ChartBar{}, wrapError(KindParse, "high", err)
	}
	low, err := strconv.ParseFloat(raw.Low, 64)
	if err != nil {
		return models.ChartBar{}, wrapError(KindParse, "low", err)
	}
	closePrice, err := strconv.ParseFloat(raw.Close, 64)
	if err != nil {
		return models.ChartBar{}, wrapError(KindParse, "close", err)
	}
	volume, err := strconv.ParseInt(raw.Volume, 10, 64)
	if err != nil {
		return models.ChartBar{}, wrapError(KindParse, "volume", err)
	}
	return models.ChartBar{
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
