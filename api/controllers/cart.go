package controllers

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/ofcourt/storefront-backend/api/middleware"
	"github.com/ofcourt/storefront-backend/api/responses"
	"github.com/ofcourt/storefront-backend/api/validators"
	cartsvc "github.com/ofcourt/storefront-backend/internal/cart"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

type addCartItemRequest struct {
	ProductID     string            `json:"id" validate:"required"`
	Title         string            `json:"title" validate:"required"`
	UnitPrice     float64           `json:"unitPrice" validate:"required"`
	Quantity      int               `json:"quantity"`
	TotalPrice    float64           `json:"totalPrice"`
	Customization map[string]string `json:"customization"`
}

type cartResponse struct {
	Items types.CartItems `json:"items"`
	Total float64         `json:"total"`
}

func newCartResponse(items types.CartItems) cartResponse {
	if items == nil {
		items = types.CartItems{}
	}
	return cartResponse{Items: items, Total: cartsvc.Total(items)}
}

// CartGet returns the shopper's cart.
func CartGet(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.SubjectFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopper identity missing"))
			return
		}

		items, err := svc.Get(r.Context(), subject)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(items))
	}
}

// CartAddItem appends a line to the shopper's cart.
func CartAddItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.SubjectFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopper identity missing"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.AddItem(r.Context(), subject, types.CartItem{
			ProductID:     payload.ProductID,
			Title:         payload.Title,
			UnitPrice:     payload.UnitPrice,
			Quantity:      payload.Quantity,
			TotalPrice:    payload.TotalPrice,
			Customization: payload.Customization,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(items))
	}
}

// CartRemoveItem drops one line by its cart id.
func CartRemoveItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.SubjectFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopper identity missing"))
			return
		}

		cartID := chi.URLParam(r, "cartId")
		if cartID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required"))
			return
		}

		items, err := svc.RemoveItem(r.Context(), subject, cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(items))
	}
}

// CartClear empties the shopper's cart.
func CartClear(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := middleware.SubjectFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopper identity missing"))
			return
		}

		if err := svc.Clear(r.Context(), subject); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(nil))
	}
}
