package middleware

import (
	"fmt"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
)

// TickThrottle sits between the live stream and the cache writer. It
// validates ticks and caps the per-symbol write rate; trades arrive far
// faster than the cache needs refreshing.
type TickThrottle struct {
	minInterval time.Duration
	mu          sync.Mutex
	lastSeen    map[string]time.Time
}

// NewTickThrottle creates a throttle allowing at most one tick per symbol
// per minInterval.
func NewTickThrottle(minInterval time.Duration) *TickThrottle {
	return &TickThrottle{
		minInterval: minInterval,
		lastSeen:    make(map[string]time.Time),
	}
}

// Accept validates the tick and reports whether it should be applied.
// Throttled ticks are dropped silently; invalid ticks return an error.
func (t *TickThrottle) Accept(tick *models.PriceTick) (bool, error) {
	if err := validateTick(tick); err != nil {
		return false, err
	}
	if t.minInterval <= 0 {
		return true, nil
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	last := t.lastSeen[tick.Symbol]
	if !last.IsZero() && now.Sub(last) < t.minInterval {
		return false, nil
	}
	t.lastSeen[tick.Symbol] = now
	return true, nil
}

func validateTick(t *models.PriceTick) error {
	if t == nil {
		return fmt.Errorf("tick nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if t.Price < 0 || t.Volume < 0 {
		return fmt.Errorf("negative price/volume")
	}
	return nil
}
