package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ofcourt/storefront-backend/api/middleware"
	"github.com/ofcourt/storefront-backend/api/responses"
	"github.com/ofcourt/storefront-backend/api/validators"
	checkoutsvc "github.com/ofcourt/storefront-backend/internal/checkout"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/paypal"
)

type createProviderOrderRequest struct {
	checkoutsvc.Form
}

type createProviderOrderResponse struct {
	ID     string             `json:"id"`
	Totals checkoutsvc.Totals `json:"totals"`
}

type captureProviderOrderRequest struct {
	OrderID string `json:"orderID" validate:"required"`
	checkoutsvc.Form
}

type captureProviderOrderResponse struct {
	Status  string `json:"status"`
	Receipt any    `json:"receipt"`
}

// PayPalCreateOrder opens a provider order for the shopper's cart total.
func PayPalCreateOrder(orchestrator *checkoutsvc.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.SubjectFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopper identity missing"))
			return
		}

		var payload createProviderOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, totals, err := orchestrator.CreateProviderOrder(r.Context(), subject, payload.Form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, createProviderOrderResponse{ID: orderID, Totals: totals})
	}
}

// PayPalCaptureOrder captures an approved provider order and completes the
// checkout.
func PayPalCaptureOrder(orchestrator *checkoutsvc.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.SubjectFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopper identity missing"))
			return
		}

		var payload captureProviderOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := orchestrator.CompleteProviderOrder(r.Context(), subject, userIDPointer(r), payload.OrderID, payload.Form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, captureProviderOrderResponse{Status: paypal.StatusCompleted, Receipt: receipt})
	}
}

func userIDPointer(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &userID
}
