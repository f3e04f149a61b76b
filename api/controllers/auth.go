package controllers

import (
	"net/http"

	"github.com/strataform/strataform-backend/api/middleware"
	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/api/validators"
	"github.com/strataform/strataform-backend/internal/auth"
	"github.com/strataform/strataform-backend/internal/companies"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
	"github.com/strataform/strataform-backend/pkg/types"
)

// AuthLogin wires the storefront login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.LoginRequest
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

type registerRequest struct {
	Name            string         `json:"name" validate:"required"`
	ContactEmail    string         `json:"contact_email" validate:"required,email"`
	Password        string         `json:"password" validate:"required,min=8"`
	Phone           *string        `json:"phone"`
	TaxID           *string        `json:"tax_id"`
	BillingAddress  *types.Address `json:"billing_address"`
	ShippingAddress *types.Address `json:"shipping_address"`
}

// AuthRegister creates a pending company account.
func AuthRegister(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Register(r.Context(), companies.RegisterInput{
			Name:            body.Name,
			ContactEmail:    body.ContactEmail,
			Password:        body.Password,
			Phone:           body.Phone,
			TaxID:           body.TaxID,
			BillingAddress:  body.BillingAddress,
			ShippingAddress: body.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, company)
	}
}

func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
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

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}
