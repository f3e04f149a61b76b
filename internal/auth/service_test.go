package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/strataform/strataform-backend/pkg/auth"
	"github.com/strataform/strataform-backend/pkg/auth/session"
	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db/models"
	"github.com/strataform/strataform-backend/pkg/enums"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:                 "test-secret",
	Issuer:                 "strataform-test",
	ExpirationMinutes:      15,
	RefreshTokenTTLMinutes: 60,
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     8,
	ArgonKeyLen:      16,
}

type stubCompanyRepo struct {
	companies map[string]*models.Company
	lastLogin map[uuid.UUID]time.Time
}

func newStubCompanyRepo() *stubCompanyRepo {
	return &stubCompanyRepo{
		companies: map[string]*models.Company{},
		lastLogin: map[uuid.UUID]time.Time{},
	}
}

func (r *stubCompanyRepo) FindByEmail(_ context.Context, email string) (*models.Company, error) {
	company, ok := r.companies[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return company, nil
}

func (r *stubCompanyRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogin[id] = at
	return nil
}

type stubSessionManager struct {
	sessions map[string]string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]string{}}
}

func (m *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	m.sessions[accessID] = token
	return token, nil
}

func (m *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := m.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(m.sessions, oldAccessID)
	newAccessID := session.NewAccessID()
	token := "refresh-" + newAccessID
	m.sessions[newAccessID] = token
	return newAccessID, token, nil
}

func (m *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	delete(m.sessions, accessID)
	return nil
}

func seedCompany(t *testing.T, repo *stubCompanyRepo, email, password string, status enums.CompanyStatus) *models.Company {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	company := &models.Company{
		ID:           uuid.New(),
		Name:         "Meridian Office Group",
		ContactEmail: email,
		PasswordHash: hash,
		Status:       status,
		IsActive:     status == enums.CompanyStatusActive,
	}
	repo.companies[email] = company
	return company
}

func newTestService(t *testing.T) (Service, *stubCompanyRepo, *stubSessionManager) {
	t.Helper()
	repo := newStubCompanyRepo()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		CompanyRepo:    repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, sessions
}


func errCode(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return ""
}

func TestLoginSuccess(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	company := seedCompany(t, repo, "buyer@meridian.example", "orange-crate-41", enums.CompanyStatusActive)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Buyer@Meridian.example ",
		Password: "orange-crate-41",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Company.ID != company.ID.String() {
		t.Fatalf("company id = %s, want %s", resp.Company.ID, company.ID)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.TokenType != pkgAuth.TokenTypeCompany {
		t.Fatalf("token type = %s, want company", claims.TokenType)
	}
	if claims.SubjectID != company.ID {
		t.Fatalf("subject = %s, want %s", claims.SubjectID, company.ID)
	}
	if sessions.sessions[claims.ID] != resp.RefreshToken {
		t.Fatal("refresh token not stored under the access id")
	}
	if _, ok := repo.lastLogin[company.ID]; !ok {
		t.Fatal("last login not recorded")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedCompany(t, repo, "buyer@meridian.example", "orange-crate-41", enums.CompanyStatusActive)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@meridian.example", "orange-crate-41"},
		{"wrong password", "buyer@meridian.example", "wrong"},
		{"blank email", "", "orange-crate-41"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), LoginRequest{Email: tc.email, Password: tc.password})
			if errCode(err) != pkgerrors.CodeUnauthorized {
				t.Fatalf("code = %v, want unauthorized", errCode(err))
			}
		})
	}
}

func TestLoginRejectsInactiveStatuses(t *testing.T) {
	svc, repo, _ := newTestService(t)
	for i, status := range []enums.CompanyStatus{
		enums.CompanyStatusPending,
		enums.CompanyStatusSuspended,
		enums.CompanyStatusInactive,
	} {
		email := string(status) + "@meridian.example"
		seedCompany(t, repo, email, "orange-crate-41", status)
		_, err := svc.Login(context.Background(), LoginRequest{Email: email, Password: "orange-crate-41"})
		if errCode(err) != pkgerrors.CodeForbidden {
			t.Fatalf("case %d (%s): code = %v, want forbidden", i, status, errCode(err))
		}
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	seedCompany(t, repo, "buyer@meridian.example", "orange-crate-41", enums.CompanyStatusActive)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "buyer@meridian.example",
		Password: "orange-crate-41",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("access token was not rotated")
	}

	oldClaims, err := pkgAuth.ParseAccessTokenAllowExpired(testJWTConfig, login.AccessToken)
	if err != nil {
		t.Fatalf("parse old token: %v", err)
	}
	if _, ok := sessions.sessions[oldClaims.ID]; ok {
		t.Fatal("old session survived rotation")
	}

	// The consumed refresh token cannot be replayed.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if errCode(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("replay code = %v, want unauthorized", errCode(err))
	}
}

func TestRefreshRejectsForgedAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	if errCode(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("code = %v, want unauthorized", errCode(err))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	seedCompany(t, repo, "buyer@meridian.example", "orange-crate-41", enums.CompanyStatusActive)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "buyer@meridian.example",
		Password: "orange-crate-41",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, login.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.sessions[claims.ID]; ok {
		t.Fatal("session survived logout")
	}
}
