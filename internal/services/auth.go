// Package services holds the business logic between HTTP handlers and the
// store. Each service owns one slice of the domain.
package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tendjournal/tend/internal/auth"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

// AuthService handles signup and login.
type AuthService struct {
	store  store.Store
	issuer *auth.TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(s store.Store, issuer *auth.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{store: s, issuer: issuer, log: log}
}

// Signup creates an account and returns a fresh token. A duplicate email
// surfaces as model.ErrConflict.
func (s *AuthService) Signup(ctx context.Context, email, password string) (string, *model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, err
	}
	user, err := s.store.Users().Create(ctx, &model.User{Email: email, PasswordHash: hash})
	if err != nil {
		return "", nil, err
	}
	token, err := s.issuer.Issue(user.UserID)
	if err != nil {
		return "", nil, err
	}
	s.log.Info().Str("userId", user.UserID).Msg("user signed up")
	return token, user, nil
}

// Login verifies credentials and returns a fresh token. Unknown emails and
// wrong passwords both map to model.ErrUnauthorized so callers cannot
// probe which addresses exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if err == model.ErrNotFound {
			return "", nil, model.ErrUnauthorized
		}
		return "", nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, model.ErrUnauthorized
	}
	token, err := s.issuer.Issue(user.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Profile returns the user row with their growth areas.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, []*model.GrowthArea, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	areas, err := s.store.GrowthAreas().List(ctx, userID, false)
	if err != nil {
		return nil, nil, err
	}
	return user, areas, nil
}
