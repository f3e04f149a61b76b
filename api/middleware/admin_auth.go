package middleware

import (
	"context"
	"net/http"

	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/api/validators"
	"github.com/strataform/strataform-backend/internal/adminauth"
	pkgAuth "github.com/strataform/strataform-backend/pkg/auth"
	"github.com/strataform/strataform-backend/pkg/auth/session"
	"github.com/strataform/strataform-backend/pkg/config"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
)

// AdminAuth validates the full admin credential set: a bearer token plus the
// session and admin opaque tokens. A valid bearer token without both opaque
// tokens never passes. Each credential is read cookie-first, then header.
func AdminAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, admins adminauth.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := validators.ExtractBearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.TokenType != pkgAuth.TokenTypeAdmin || claims.Role == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin token required"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			sessionToken := validators.ExtractOpaqueToken(r, validators.SessionTokenCookieName, validators.SessionTokenHeaderName)
			adminToken := validators.ExtractOpaqueToken(r, validators.AdminTokenCookieName, validators.AdminTokenHeaderName)
			if sessionToken == "" || adminToken == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session credentials"))
				return
			}

			admin, err := admins.VerifyOpaqueTokens(r.Context(), claims.SubjectID, sessionToken, adminToken)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxAdminID, admin.ID)
			ctx = context.WithValue(ctx, ctxAdminRole, admin.Role)
			ctx = context.WithValue(ctx, ctxAccessID, claims.ID)

			if logg != nil {
				ctx = logg.WithAdminID(ctx, admin.ID.String())
				ctx = logg.WithActorRole(ctx, admin.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
