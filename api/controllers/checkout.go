package controllers

import (
	"net/http"

	"github.com/ofcourt/storefront-backend/api/middleware"
	"github.com/ofcourt/storefront-backend/api/responses"
	"github.com/ofcourt/storefront-backend/api/validators"
	checkoutsvc "github.com/ofcourt/storefront-backend/internal/checkout"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
)

type cardCheckoutRequest struct {
	checkoutsvc.Form
}

// CheckoutCard completes a checkout on the card path. The card is only
// shape-validated; no issuer is contacted.
func CheckoutCard(orchestrator *checkoutsvc.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.SubjectFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopper identity missing"))
			return
		}

		var payload cardCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := orchestrator.CompleteCardOrder(r.Context(), subject, userIDPointer(r), payload.Form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
