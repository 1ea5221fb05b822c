package controllers

import (
	"net/http"

	"github.com/ofcourt/storefront-backend/api/middleware"
	"github.com/ofcourt/storefront-backend/api/responses"
	"github.com/ofcourt/storefront-backend/internal/receipts"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
)

// ReceiptLast returns the shopper's most recent receipt.
func ReceiptLast(store *receipts.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.SubjectFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopper identity missing"))
			return
		}

		receipt, err := store.Last(r.Context(), subject.Key())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}
