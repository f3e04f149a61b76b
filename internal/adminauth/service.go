package adminauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/strataform/strataform-backend/pkg/auth"
	"github.com/strataform/strataform-backend/pkg/auth/session"
	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db/models"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service authenticates back-office users and verifies their opaque tokens.
// Token rotation on refresh goes through the shared session manager, so only
// login, logout, and per-request verification live here.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, adminID uuid.UUID, accessID string) error
	VerifyOpaqueTokens(ctx context.Context, adminID uuid.UUID, sessionToken, adminToken string) (*models.AdminUser, error)
}

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	Update(ctx context.Context, admin *models.AdminUser) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	admins  adminRepository
	session sessionManager
	jwtCfg  config.JWTConfig
	authCfg config.AdminAuthConfig

	now func() time.Time
}

// ServiceParams bundles the dependencies required to build an admin auth service.
type ServiceParams struct {
	AdminRepo      adminRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	AdminAuth      config.AdminAuthConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.AdminRepo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.AdminAuth.LockoutThreshold <= 0 || params.AdminAuth.LockoutWindow <= 0 {
		return nil, fmt.Errorf("lockout threshold and window must be positive")
	}
	return &service{
		admins:  params.AdminRepo,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
		authCfg: params.AdminAuth,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	admin, err := s.admins.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}

	now := s.now()
	if admin.IsLockedAt(now) {
		return nil, pkgerrors.New(pkgerrors.CodeAccountLocked, "account temporarily locked")
	}
	// An expired lock clears before the credential check, so the attempt
	// counter starts fresh.
	if admin.LockedUntil != nil {
		admin.LockedUntil = nil
		admin.FailedLoginCount = 0
	}

	valid, err := security.VerifyPassword(req.Password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, s.recordFailure(ctx, admin, now)
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is not active")
	}

	sessionToken, err := security.MintOpaqueToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
	}
	adminToken, err := security.MintOpaqueToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin token")
	}

	sessionHash := security.HashOpaqueToken(sessionToken)
	adminHash := security.HashOpaqueToken(adminToken)
	admin.FailedLoginCount = 0
	admin.LockedUntil = nil
	admin.SessionTokenHash = &sessionHash
	admin.AdminTokenHash = &adminHash
	admin.LastLoginAt = &now
	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist admin session")
	}

	accessID := session.NewAccessID()
	role := admin.Role
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		SubjectID: admin.ID,
		TokenType: pkgAuth.TokenTypeAdmin,
		Role:      &role,
		JTI:       accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionToken: sessionToken,
		AdminToken:   adminToken,
		Admin:        summarize(admin),
	}, nil
}

// Logout revokes the refresh session and clears both opaque token hashes so
// stale cookies stop verifying immediately.
func (s *service) Logout(ctx context.Context, adminID uuid.UUID, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown admin")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}
	admin.SessionTokenHash = nil
	admin.AdminTokenHash = nil
	if err := s.admins.Update(ctx, admin); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear admin session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

// VerifyOpaqueTokens checks both opaque tokens against the stored hashes. A
// valid bearer token alone never satisfies an admin-gated request.
func (s *service) VerifyOpaqueTokens(ctx context.Context, adminID uuid.UUID, sessionToken, adminToken string) (*models.AdminUser, error) {
	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown admin")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is not active")
	}
	if admin.SessionTokenHash == nil || admin.AdminTokenHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active admin session")
	}
	if !security.VerifyOpaqueToken(sessionToken, *admin.SessionTokenHash) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session token")
	}
	if !security.VerifyOpaqueToken(adminToken, *admin.AdminTokenHash) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid admin token")
	}
	return admin, nil
}

func (s *service) recordFailure(ctx context.Context, admin *models.AdminUser, now time.Time) error {
	admin.FailedLoginCount++
	if admin.FailedLoginCount >= s.authCfg.LockoutThreshold {
		lockedUntil := now.Add(s.authCfg.LockoutWindow)
		admin.LockedUntil = &lockedUntil
	}
	if err := s.admins.Update(ctx, admin); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record failed login")
	}
	if admin.LockedUntil != nil {
		return pkgerrors.New(pkgerrors.CodeAccountLocked, "account temporarily locked")
	}
	return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
}
