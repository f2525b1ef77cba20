package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-router/internal/auth"
	"github.com/spec-kit/ticket-router/internal/config"
	"github.com/spec-kit/ticket-router/internal/domain"
	apperrors "github.com/spec-kit/ticket-router/pkg/util/errorutil"
)

// TokenRevoker persists revoked token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// AuthService coordinates admin login and logout.
type AuthService struct {
	admin    domain.Admin
	// dummyHash keeps rejected logins for unknown emails as slow as wrong passwords.
	dummyHash string
	tokenMgr *auth.TokenManager
	revoker  TokenRevoker
	logger   *zap.Logger
	now      func() time.Time
}

// AuthDependencies encapsulates collaborators for auth service.
type AuthDependencies struct {
	Revoker TokenRevoker
	Logger  *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set; admin login disabled")
	}
	dummyHash, err := auth.HashPassword("ticket-router", cfg.BcryptCost)
	if err != nil {
		logger.Warn("dummy hash generation failed", zap.Error(err))
	}
	return &AuthService{
		dummyHash: dummyHash,
		admin: domain.Admin{
			Email:        strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
			PasswordHash: cfg.AdminPasswordHash,
		},
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		revoker:  deps.Revoker,
		logger:   logger,
		now:      time.Now,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login authenticates the admin and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash := s.admin.PasswordHash
	known := hash != "" && email == s.admin.Email
	if !known {
		hash = s.dummyHash
	}
	if err := auth.ComparePassword(hash, password); err != nil || !known {
		s.logger.Info("admin login rejected", zap.String("email", email))
		return "", domain.Token{}, apperrors.NewUnauthorized("the provided credentials do not match our records")
	}

	token, meta, err := s.tokenMgr.GenerateToken(s.admin.Email, domain.SubjectTypeAdmin)
	if err != nil {
		return "", domain.Token{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("admin logged in", zap.String("email", email), zap.String("token_id", meta.ID))
	return token, meta, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token domain.Token) error {
	if s.revoker == nil {
		return nil
	}
	ttl := token.ExpiresAt.Sub(s.now())
	if err := s.revoker.Revoke(ctx, token.ID, ttl); err != nil {
		s.logger.Error("token revocation failed", zap.String("token_id", token.ID), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}
