package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// QuoteStore is the durable fallback cache: one last-known-good quote per
// symbol, upserted on every successful fetch. Survives restarts.
type QuoteStore interface {
	// GetFresh returns the stored quote when its age is within maxAge,
	// (nil, nil) when absent or stale.
	GetFresh(ctx context.Context, symbol string, maxAge time.Duration) (*models.Quote, error)
	Upsert(ctx context.Context, q models.Quote) error
	Health(ctx context.Context) error
}

// UserStore manages account records.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByIdentifier(ctx context.Context, identifier string) (*models.User, error) // username or email
}

// WatchlistStore manages per-user tracked symbols. Uniqueness per
// (user, symbol) is enforced by the store.
type WatchlistStore interface {
	List(ctx context.Context, userID uint) ([]models.WatchlistItem, error)
	Count(ctx context.Context, userID uint) (int64, error)
	Add(ctx context.Context, userID uint, symbol string) (*models.WatchlistItem, error)
	Remove(ctx context.Context, userID uint, symbol string) (bool, error)
}

// Archiver receives every successfully fetched quote. Failures are logged
// by the caller and never surfaced to the request path.
type Archiver interface {
	Archive(ctx context.Context, q models.Quote) error
	Close() error
}

// MarketStream is a live trade feed used to keep the TTL cache warm.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics abstracts the Prometheus recorder for the quote pipeline.
type Metrics interface {
	RecordCacheHit(tier, kind string)
	RecordCacheMiss(tier, kind string)
	RecordUpstreamCall(operation, result string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(operation string, seconds float64)
}
