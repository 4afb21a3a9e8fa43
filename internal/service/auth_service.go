package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/auth"
	"github.com/spec-kit/certtrack-service/internal/config"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// AuthService authenticates the single configured admin account. With no
// JWT secret configured the service is disabled and protected routes run
// open; that state is logged loudly at startup.
type AuthService struct {
	adminEmail        string
	adminPasswordHash string
	tokenMgr          *auth.TokenManager
}

// NewAuthService builds the service. Returns a disabled service when the
// JWT secret is empty.
func NewAuthService(cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set; authentication is disabled")
		return &AuthService{}
	}
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set; login will always fail")
	}
	return &AuthService{
		adminEmail:        cfg.AdminEmail,
		adminPasswordHash: cfg.AdminPasswordHash,
		tokenMgr:          auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// Enabled reports whether authentication is enforced.
func (s *AuthService) Enabled() bool {
	return s.tokenMgr != nil
}

// TokenManager exposes the manager for middleware wiring; nil when disabled.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login verifies the admin credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, apperrors.NewUnauthorized("authentication disabled")
	}
	if email == "" || password == "" {
		return "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}
	if email != s.adminEmail || s.adminPasswordHash == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(s.adminPasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(email)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, expiresAt, nil
}
