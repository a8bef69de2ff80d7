package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/pkg/postgres"
)

// PostgresWatchlistStore persists per-user tracked symbols. The unique index
// on (user_id, symbol) is the source of truth for duplicates.
type PostgresWatchlistStore struct {
	db *gorm.DB
}

// NewPostgresWatchlistStore creates the watchlist store.
func NewPostgresWatchlistStore(client *postgres.Client) repository.WatchlistStore {
	return &PostgresWatchlistStore{db: client.DB}
}

func (s *PostgresWatchlistStore) List(ctx context.Context, userID uint) ([]models.WatchlistItem, error) {
	var items []models.WatchlistItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresWatchlistStore) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.WatchlistItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *PostgresWatchlistStore) Add(ctx context.Context, userID uint, symbol string) (*models.WatchlistItem, error) {
	item := &models.WatchlistItem{UserID: userID, Symbol: symbol}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "symbol"}},
		DoNothing: true,
	}).Create(item)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, repository.ErrDuplicate
	}
	return item, nil
}

func (s *PostgresWatchlistStore) Remove(ctx context.Context, userID uint, symbol string) (bool, error) {
	tx := s.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Delete(&models.WatchlistItem{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
