package controllers

import (
	"net/http"

	"github.com/strataform/strataform-backend/api/middleware"
	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/api/validators"
	"github.com/strataform/strataform-backend/internal/adminauth"
	"github.com/strataform/strataform-backend/internal/auth"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
)

// AdminAuthLogin wires the back-office login endpoint. All four credentials
// come back in the body; cookie handling is left to the client.
func AdminAuthLogin(svc adminauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adminauth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminAuthRefresh rotates the admin bearer pair. The opaque tokens are
// untouched; they only change on a fresh login.
func AdminAuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminAuthLogout(svc adminauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		adminID := middleware.AdminIDFromContext(ctx)
		accessID := middleware.AccessIDFromContext(ctx)
		if accessID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}
		if err := svc.Logout(ctx, adminID, accessID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}
