package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/api/middleware"
	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/api/validators"
	"github.com/strataform/strataform-backend/internal/carts"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
	"github.com/strataform/strataform-backend/pkg/types"
)

func CartFetch(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := svc.GetActiveCart(r.Context(), middleware.CompanyIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

type addItemRequest struct {
	ProductID          uuid.UUID           `json:"product_id" validate:"required"`
	Quantity           int                 `json:"quantity" validate:"required,min=1"`
	FinishOptionID     *uuid.UUID          `json:"finish_option_id"`
	UpholsteryOptionID *uuid.UUID          `json:"upholstery_option_id"`
	Notes              *string             `json:"notes"`
	Configuration      types.Configuration `json:"configuration"`
}

func CartAddItem(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), middleware.CompanyIDFromContext(r.Context()), carts.AddItemInput{
			ProductID:          body.ProductID,
			Quantity:           body.Quantity,
			FinishOptionID:     body.FinishOptionID,
			UpholsteryOptionID: body.UpholsteryOptionID,
			Notes:              body.Notes,
			Configuration:      body.Configuration,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

type updateItemRequest struct {
	Quantity           *int       `json:"quantity" validate:"omitempty,min=1"`
	FinishOptionID     *uuid.UUID `json:"finish_option_id"`
	UpholsteryOptionID *uuid.UUID `json:"upholstery_option_id"`
	Notes              *string    `json:"notes"`
}

func CartUpdateItem(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
			return
		}

		var body updateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.UpdateItem(r.Context(), middleware.CompanyIDFromContext(r.Context()), itemID, carts.UpdateItemInput{
			Quantity:           body.Quantity,
			FinishOptionID:     body.FinishOptionID,
			UpholsteryOptionID: body.UpholsteryOptionID,
			Notes:              body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartRemoveItem(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
			return
		}

		cart, err := svc.RemoveItem(r.Context(), middleware.CompanyIDFromContext(r.Context()), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartClear(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := svc.ClearCart(r.Context(), middleware.CompanyIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}
