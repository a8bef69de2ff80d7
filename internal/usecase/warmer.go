package usecase

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	mid "StockPulse/internal/middleware"
	"StockPulse/pkg/cache"
	applogger "StockPulse/pkg/logger"
)

// QuoteWarmer consumes live price ticks and refreshes the price and
// trading-day timestamp of cached quotes so hot symbols stay served from
// cache between upstream fetches. Only symbols already present in the
// cache are touched; a tick alone cannot fabricate the change fields a
// full quote carries.
type QuoteWarmer struct {
	stream   drepo.MarketStream
	ttl      cache.Service
	quoteTTL time.Duration
	throttle *mid.TickThrottle
	metrics  drepo.Metrics
	log      *applogger.Logger
}

// NewQuoteWarmer creates a warmer over the given stream and cache tier.
// Cache writes are capped to one per symbol per second.
func NewQuoteWarmer(stream drepo.MarketStream, ttl cache.Service, quoteTTL time.Duration, metrics drepo.Metrics, log *applogger.Logger) *QuoteWarmer {
	return &QuoteWarmer{
		stream:   stream,
		ttl:      ttl,
		quoteTTL: quoteTTL,
		throttle: mid.NewTickThrottle(time.Second),
		metrics:  metrics,
		log:      log,
	}
}

// IsConnected reports stream health for readiness checks.
func (w *QuoteWarmer) IsConnected() bool { return w.stream.IsConnected() }

// Start connects, subscribes and begins consuming in the background.
func (w *QuoteWarmer) Start(ctx context.Context) error {
	if err := w.stream.Connect(ctx); err != nil {
		return err
	}
	if err := w.stream.Subscribe(ctx); err != nil {
		return err
	}
	ticks, errs := w.stream.Read(ctx)
	go w.consume(ctx, ticks, errs)
	return nil
}

func (w *QuoteWarmer) consume(ctx context.Context, ticks <-chan *models.PriceTick, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			if err != nil {
				w.log.Warn("stream error, reconnecting", applogger.Error(err))
				if rerr := w.stream.Reconnect(ctx); rerr != nil {
					w.log.Error("stream reconnect failed", applogger.Error(rerr))
					return
				}
				ticks, errs = w.stream.Read(ctx)
			}
		case tick := <-ticks:
			if tick == nil {
				continue
			}
			w.apply(ctx, tick)
		}
	}
}

func (w *QuoteWarmer) apply(ctx context.Context, tick *models.PriceTick) {
	ok, err := w.throttle.Accept(tick)
	if err != nil || !ok {
		return
	}
	w.metrics.RecordLastPrice(tick.Symbol, tick.Price)

	key := cache.Key("quote", tick.Symbol)
	var q models.Quote
	if err := w.ttl.Get(ctx, key, &q); err != nil {
		return
	}
	q.Price = tick.Price
	q.Timestamp = tick.TickTime().UTC().Format("2006-01-02")
	_ = w.ttl.Set(ctx, key, q, w.quoteTTL)
}

// Stop closes the stream.
func (w *QuoteWarmer) Stop() error { return w.stream.Close() }
