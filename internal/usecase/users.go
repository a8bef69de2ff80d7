package usecase

import (
	"context"
	"errors"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/auth"
)

var (
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService handles registration, login and profile lookup.
type UserService struct {
	store  drepo.UserStore
	issuer *auth.TokenIssuer
}

// NewUserService creates the user service.
func NewUserService(store drepo.UserStore, issuer *auth.TokenIssuer) *UserService {
	return &UserService{store: store, issuer: issuer}
}

// Register creates an account and returns it with a signed access token.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, drepo.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}
	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials by username or email and returns a token.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	user, err := s.store.ByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, drepo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the account for id.
func (s *UserService) Profile(ctx context.Context, id uint) (*models.User, error) {
	return s.store.ByID(ctx, id)
}
