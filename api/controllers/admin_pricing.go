package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/api/validators"
	"github.com/strataform/strataform-backend/internal/pricing"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
)

type tierRequest struct {
	Name                 string      `json:"name" validate:"required"`
	PercentageAdjustment int         `json:"percentage_adjustment"`
	OwnerCompanyID       *uuid.UUID  `json:"owner_company_id"`
	AppliesToAllProducts bool        `json:"applies_to_all_products"`
	SpecificCategoryIDs  []uuid.UUID `json:"specific_category_ids"`
	EffectiveFrom        *time.Time  `json:"effective_from"`
	ExpiresAt            *time.Time  `json:"expires_at"`
}

func (t tierRequest) toInput() pricing.TierInput {
	return pricing.TierInput{
		Name:                 t.Name,
		PercentageAdjustment: t.PercentageAdjustment,
		OwnerCompanyID:       t.OwnerCompanyID,
		AppliesToAllProducts: t.AppliesToAllProducts,
		SpecificCategoryIDs:  t.SpecificCategoryIDs,
		EffectiveFrom:        t.EffectiveFrom,
		ExpiresAt:            t.ExpiresAt,
	}
}

func AdminTierCreate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body tierRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.CreateTier(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tier)
	}
}

func AdminTierUpdate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tierID, err := uuid.Parse(chi.URLParam(r, "tierId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier id"))
			return
		}

		var body tierRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.UpdateTier(r.Context(), tierID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

func AdminTierDetail(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tierID, err := uuid.Parse(chi.URLParam(r, "tierId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier id"))
			return
		}

		tier, err := svc.GetTier(r.Context(), tierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

func AdminTierList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tiers, err := svc.ListTiers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tiers)
	}
}

// AdminTierDelete removes a tier and reports how many companies lost their
// assignment. ?force=true skips the explicit unassign pass.
func AdminTierDelete(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tierID, err := uuid.Parse(chi.URLParam(r, "tierId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier id"))
			return
		}
		force := r.URL.Query().Get("force") == "true"

		result, err := svc.DeleteTier(r.Context(), tierID, force)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
