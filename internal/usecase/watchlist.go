package usecase

import (
	"context"
	"errors"
	"fmt"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/util"
)

var (
	ErrEmptySymbol    = errors.New("symbol is required")
	ErrAlreadyTracked = errors.New("symbol already in watchlist")
	ErrNotTracked     = errors.New("symbol not in watchlist")
	ErrLimitReached   = errors.New("watchlist limit reached")
)

// WatchlistService manages per-user tracked symbols on top of an injected
// store. The size cap is enforced here, uniqueness by the store.
type WatchlistService struct {
	store   drepo.WatchlistStore
	maxSize int
}

// NewWatchlistService creates the watchlist service.
func NewWatchlistService(store drepo.WatchlistStore, maxSize int) *WatchlistService {
	return &WatchlistService{store: store, maxSize: maxSize}
}

// List returns the user's tracked symbols in insertion order.
func (s *WatchlistService) List(ctx context.Context, userID uint) ([]models.WatchlistItem, error) {
	return s.store.List(ctx, userID)
}

// Add tracks a symbol for the user.
func (s *WatchlistService) Add(ctx context.Context, userID uint, symbol string) (*models.WatchlistItem, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}

	count, err := s.store.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.maxSize) {
		return nil, fmt.Errorf("%w (max %d)", ErrLimitReached, s.maxSize)
	}

	item, err := s.store.Add(ctx, userID, symbol)
	if errors.Is(err, drepo.ErrDuplicate) {
		return nil, ErrAlreadyTracked
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Remove untracks a symbol for the user.
func (s *WatchlistService) Remove(ctx context.Context, userID uint, symbol string) error {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return ErrEmptySymbol
	}
	removed, err := s.store.Remove(ctx, userID, symbol)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotTracked
	}
	return nil
}
