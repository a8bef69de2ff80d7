package usecase

import (
	"context"
	"errors"
	"testing"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
)

type fakeWatchlistStore struct {
	items map[uint][]models.WatchlistItem
}

func newFakeWatchlistStore() *fakeWatchlistStore {
	return &fakeWatchlistStore{items: make(map[uint][]models.WatchlistItem)}
}

func (s *fakeWatchlistStore) List(_ context.Context, userID uint) ([]models.WatchlistItem, error) {
	return s.items[userID], nil
}

func (s *fakeWatchlistStore) Count(_ context.Context, userID uint) (int64, error) {
	return int64(len(s.items[userID])), nil
}

func (s *fakeWatchlistStore) Add(_ context.Context, userID uint, symbol string) (*models.WatchlistItem, error) {
	for _, it := range s.items[userID] {
		if it.Symbol == symbol {
			return nil, drepo.ErrDuplicate
		}
	}
	item := models.WatchlistItem{UserID: userID, Symbol: symbol}
	s.items[userID] = append(s.items[userID], item)
	return &item, nil
}

func (s *fakeWatchlistStore) Remove(_ context.Context, userID uint, symbol string) (bool, error) {
	for i, it := range s.items[userID] {
		if it.Symbol == symbol {
			s.items[userID] = append(s.items[userID][:i], s.items[userID][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestWatchlistAddNormalizesSymbol(t *testing.T) {
	svc := NewWatchlistService(newFakeWatchlistStore(), 50)

	item, err := svc.Add(context.Background(), 1, "  aapl ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Symbol != "AAPL" {
		t.Fatalf("expected normalized AAPL, got %q", item.Symbol)
	}
}

func TestWatchlistAddRejectsEmpty(t *testing.T) {
	svc := NewWatchlistService(newFakeWatchlistStore(), 50)
	if _, err := svc.Add(context.Background(), 1, "   "); !errors.Is(err, ErrEmptySymbol) {
		t.Fatalf("expected ErrEmptySymbol, got %v", err)
	}
}

func TestWatchlistAddRejectsDuplicate(t *testing.T) {
	svc := NewWatchlistService(newFakeWatchlistStore(), 50)
	if _, err := svc.Add(context.Background(), 1, "AAPL"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(context.Background(), 1, "aapl"); !errors.Is(err, ErrAlreadyTracked) {
		t.Fatalf("expected ErrAlreadyTracked, got %v", err)
	}
}

func TestWatchlistSizeCap(t *testing.T) {
	svc := NewWatchlistService(newFakeWatchlistStore(), 2)
	if _, err := svc.Add(context.Background(), 1, "A"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(context.Background(), 1, "B"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(context.Background(), 1, "C"); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestWatchlistUsersAreIsolated(t *testing.T) {
	svc := NewWatchlistService(newFakeWatchlistStore(), 50)
	if _, err := svc.Add(context.Background(), 1, "AAPL"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(context.Background(), 2, "AAPL"); err != nil {
		t.Fatalf("same symbol for another user: %v", err)
	}
}

func TestWatchlistRemove(t *testing.T) {
	svc := NewWatchlistService(newFakeWatchlistStore(), 50)
	if _, err := svc.Add(context.Background(), 1, "AAPL"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(context.Background(), 1, "aapl"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(context.Background(), 1, "AAPL"); !errors.Is(err, ErrNotTracked) {
		t.Fatalf("expected ErrNotTracked, got %v", err)
	}
}
