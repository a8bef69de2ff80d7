package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/pkg/postgres"
)

// PostgresUserStore persists account records.
type PostgresUserStore struct {
	db *gorm.DB
}

// NewPostgresUserStore creates the user store.
func NewPostgresUserStore(client *postgres.Client) repository.UserStore {
	return &PostgresUserStore{db: client.DB}
}

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ? OR email = ?", u.Username, u.Email).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return repository.ErrDuplicate
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *PostgresUserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) ByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
