package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/pkg/postgres"
)

// PostgresQuoteStore keeps one last-known-good quote per symbol. The row is
// replaced on every successful upstream fetch, so the table never grows
// beyond the number of distinct symbols ever requested.
type PostgresQuoteStore struct {
	db *gorm.DB
}

// NewPostgresQuoteStore creates the durable quote store.
func NewPostgresQuoteStore(client *postgres.Client) repository.QuoteStore {
	return &PostgresQuoteStore{db: client.DB}
}

func (s *PostgresQuoteStore) GetFresh(ctx context.Context, symbol string, maxAge time.Duration) (*models.Quote, error) {
	var rec models.QuoteRecord
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Since(rec.LastUpdated) > maxAge {
		// Stale rows stay in place; the next successful fetch overwrites them.
		return nil, nil
	}
	q := rec.Quote()
	return &q, nil
}

func (s *PostgresQuoteStore) Upsert(ctx context.Context, q models.Quote) error {
	rec := models.NewQuoteRecord(q)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price", "change", "change_percent", "volume", "trading_day", "last_updated",
		}),
	}).Create(rec).Error
}

func (s *PostgresQuoteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
