package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendjournal/tend/internal/auth"
	"github.com/tendjournal/tend/internal/model"
)

func newAuthService(fs *fakeStore) (*AuthService, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewAuthService(fs, issuer, zerolog.Nop()), issuer
}

func TestSignupAndLogin(t *testing.T) {
	fs := newFakeStore()
	svc, issuer := newAuthService(fs)
	ctx := context.Background()

	token, user, err := svc.Signup(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEqual(t, "password1", user.PasswordHash)

	// token is usable
	uid, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, uid)

	token2, user2, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token2)
	assert.Equal(t, user.UserID, user2.UserID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(newFakeStore())
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "alice@example.com", "password2")
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newAuthService(newFakeStore())
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	// unknown email and wrong password look the same
	_, _, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestProfile(t *testing.T) {
	fs := newFakeStore()
	svc, _ := newAuthService(fs)
	ctx := context.Background()

	_, user, err := svc.Signup(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	_, err = fs.GrowthAreas().Create(ctx, &model.GrowthArea{UserID: user.UserID, Name: "Health", IsActive: true})
	require.NoError(t, err)

	got, areas, err := svc.Profile(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	require.Len(t, areas, 1)
	assert.Equal(t, "Health", areas[0].Name)
}
