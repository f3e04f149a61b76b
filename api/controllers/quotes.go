package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/api/middleware"
	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/api/validators"
	"github.com/strataform/strataform-backend/internal/quotes"
	"github.com/strataform/strataform-backend/pkg/enums"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
	"github.com/strataform/strataform-backend/pkg/pagination"
	"github.com/strataform/strataform-backend/pkg/types"
)

func sanitizeOptional(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	clean := validators.SanitizeString(*value, maxLen)
	return &clean
}

type convertRequest struct {
	DeliveryAddress       types.Address `json:"delivery_address"`
	RequestedDeliveryDate *time.Time    `json:"requested_delivery_date"`
	SpecialInstructions   *string       `json:"special_instructions"`
}

// QuoteConvert turns the company's active cart into a quote request.
func QuoteConvert(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body convertRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.ConvertCartToQuote(r.Context(), middleware.CompanyIDFromContext(r.Context()), quotes.ConvertInput{
			DeliveryAddress:       body.DeliveryAddress,
			RequestedDeliveryDate: body.RequestedDeliveryDate,
			SpecialInstructions:   sanitizeOptional(body.SpecialInstructions, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

func QuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := svc.ListForCompany(r.Context(), middleware.CompanyIDFromContext(r.Context()), status, pagination.Params{
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

func QuoteDetail(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := uuid.Parse(chi.URLParam(r, "quoteId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote id"))
			return
		}

		quote, err := svc.GetForCompany(r.Context(), middleware.CompanyIDFromContext(r.Context()), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func parseStatusFilter(r *http.Request) (*enums.QuoteStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseQuoteStatus(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
			WithDetails(map[string]string{"status": raw})
	}
	return &status, nil
}
