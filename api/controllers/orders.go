package controllers

import (
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofcourt/storefront-backend/api/middleware"
	"github.com/ofcourt/storefront-backend/api/responses"
	"github.com/ofcourt/storefront-backend/api/validators"
	orderssvc "github.com/ofcourt/storefront-backend/internal/orders"
	"github.com/ofcourt/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

type createOrderRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
	// pointer so an absent total and an explicit zero total stay distinct
	Total           *float64        `json:"total"`
	Currency        string          `json:"currency"`
	ProviderOrderID *string         `json:"providerOrderID"`
	Items           types.CartItems `json:"items"`
}

type orderLineItemResponse struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	LineTotal   float64 `json:"lineTotal"`
}

type orderResponse struct {
	ID              string                  `json:"id"`
	CustomerEmail   string                  `json:"customerEmail"`
	CustomerName    *string                 `json:"customerName,omitempty"`
	Total           float64                 `json:"total"`
	Currency        string                  `json:"currency"`
	Status          string                  `json:"status"`
	ProviderOrderID *string                 `json:"providerOrderID,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	Items           []orderLineItemResponse `json:"items"`
}

func newOrderResponse(order *models.Order) orderResponse {
	total, _ := order.TotalPrice.Float64()
	items := make([]orderLineItemResponse, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		unitPrice, _ := item.UnitPrice.Float64()
		lineTotal, _ := item.LineTotal.Float64()
		items = append(items, orderLineItemResponse{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
		})
	}
	return orderResponse{
		ID:              order.ID.String(),
		CustomerEmail:   order.CustomerEmail,
		CustomerName:    order.CustomerName,
		Total:           total,
		Currency:        order.Currency,
		Status:          order.Status.String(),
		ProviderOrderID: order.ProviderOrderID,
		CreatedAt:       order.CreatedAt,
		Items:           items,
	}
}

// OrdersCreate persists an order. Email and total are required; everything
// else is optional. An authenticated caller gets the order attached to
// their account.
func OrdersCreate(svc *orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Total == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "total is required"))
			return
		}

		order, err := svc.Create(r.Context(), orderssvc.CreateOrderInput{
			CustomerEmail:   validators.SanitizeString(payload.Email, 320),
			CustomerName:    payload.Name,
			TotalPrice:      decimal.NewFromFloat(*payload.Total),
			Currency:        payload.Currency,
			UserID:          userIDPointer(r),
			ProviderOrderID: payload.ProviderOrderID,
			Items:           payload.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrdersDetail returns one of the authenticated customer's orders. Orders
// belonging to someone else read as not found.
func OrdersDetail(svc *orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a uuid"))
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.CustomerEmail != email {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrdersHistory lists the authenticated customer's orders, newest first.
func OrdersHistory(svc *orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		orders, err := svc.ListByCustomer(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history := make([]orderResponse, 0, len(orders))
		for i := range orders {
			history = append(history, newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, history)
	}
}
