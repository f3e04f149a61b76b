package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/api/validators"
	"github.com/strataform/strataform-backend/internal/quotes"
	"github.com/strataform/strataform-backend/pkg/enums"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
	"github.com/strataform/strataform-backend/pkg/pagination"
)

// AdminQuoteList lists quotes across companies, optionally filtered.
func AdminQuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := parseStatusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := quotes.ListFilter{Status: status}
		if raw := strings.TrimSpace(r.URL.Query().Get("company_id")); raw != "" {
			companyID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid company id"))
				return
			}
			filter.CompanyID = &companyID
		}

		page, err := svc.List(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminQuoteDetail(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := uuid.Parse(chi.URLParam(r, "quoteId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote id"))
			return
		}

		quote, err := svc.Get(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

type quoteStatusRequest struct {
	Status             string  `json:"status" validate:"required"`
	QuotedPriceCents   *int    `json:"quoted_price_cents"`
	QuotedLeadTimeDays *int    `json:"quoted_lead_time_days"`
	AdminNotes         *string `json:"admin_notes"`
}

// AdminQuoteUpdateStatus advances a quote through its lifecycle.
func AdminQuoteUpdateStatus(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := uuid.Parse(chi.URLParam(r, "quoteId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote id"))
			return
		}

		var body quoteStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		next, err := enums.ParseQuoteStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
				WithDetails(map[string]string{"status": body.Status}))
			return
		}

		quote, err := svc.UpdateStatus(r.Context(), quoteID, next, quotes.ReviewInput{
			QuotedPriceCents:   body.QuotedPriceCents,
			QuotedLeadTimeDays: body.QuotedLeadTimeDays,
			AdminNotes:         sanitizeOptional(body.AdminNotes, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
