package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-router/internal/auth"
	"github.com/spec-kit/ticket-router/internal/config"
	"github.com/spec-kit/ticket-router/internal/domain"
	apperrors "github.com/spec-kit/ticket-router/pkg/util/errorutil"
)

type fakeRevoker struct {
	id  string
	ttl time.Duration
	err error
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.id, f.ttl = tokenID, ttl
	return f.err
}

func newAuthService(t *testing.T, revoker TokenRevoker) *AuthService {
	t.Helper()
	hash, err := auth.HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		AdminEmail:            "Admin@Example.com",
		AdminPasswordHash:     hash,
		BcryptCost:            bcrypt.MinCost,
	}, AuthDependencies{Revoker: revoker})
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t, nil)

	token, meta, err := svc.Login(context.Background(), " admin@example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "admin@example.com", meta.SubjectID)
	assert.Equal(t, domain.SubjectTypeAdmin, meta.Subject)

	parsed, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, parsed.ID)
}

func TestLogin_Rejected(t *testing.T) {
	svc := newAuthService(t, nil)

	for name, creds := range map[string][2]string{
		"wrong password": {"admin@example.com", "nope"},
		"unknown email":  {"other@example.com", "s3cret-pass"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), creds[0], creds[1])
			var de *apperrors.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, apperrors.CodeUnauthorized, de.Code)
		})
	}
}

func TestLogin_DisabledWithoutHash(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{JWTSecret: "x", AdminEmail: "admin@example.com", BcryptCost: bcrypt.MinCost}, AuthDependencies{})
	_, _, err := svc.Login(context.Background(), "admin@example.com", "")
	assert.Error(t, err)
}

func TestLogout_RevokesForRemainingLifetime(t *testing.T) {
	revoker := &fakeRevoker{}
	svc := newAuthService(t, revoker)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	err := svc.Logout(context.Background(), domain.Token{ID: "jti-1", ExpiresAt: now.Add(10 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, "jti-1", revoker.id)
	assert.Equal(t, 10*time.Minute, revoker.ttl)
}

func TestLogout_RevocationFailureIsReported(t *testing.T) {
	svc := newAuthService(t, &fakeRevoker{err: errors.New("redis down")})
	err := svc.Logout(context.Background(), domain.Token{ID: "jti-1", ExpiresAt: time.Now().Add(time.Minute)})
	assert.Error(t, err)
}
