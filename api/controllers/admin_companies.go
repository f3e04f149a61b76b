package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/api/validators"
	"github.com/strataform/strataform-backend/internal/companies"
	"github.com/strataform/strataform-backend/pkg/enums"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
)

func AdminCompanyList(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminCompanyDetail(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "companyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid company id"))
			return
		}

		company, err := svc.Get(r.Context(), companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}

type companyStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminCompanySetStatus activates, suspends, or deactivates an account.
func AdminCompanySetStatus(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "companyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid company id"))
			return
		}

		var body companyStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseCompanyStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
				WithDetails(map[string]string{"status": body.Status}))
			return
		}

		company, err := svc.SetStatus(r.Context(), companyID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}

type assignTierRequest struct {
	PricingTierID *uuid.UUID `json:"pricing_tier_id"`
}

// AdminCompanyAssignTier sets or clears the company's pricing tier reference.
func AdminCompanyAssignTier(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := uuid.Parse(chi.URLParam(r, "companyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid company id"))
			return
		}

		var body assignTierRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.AssignPricingTier(r.Context(), companyID, body.PricingTierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}
