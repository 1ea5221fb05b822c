package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofcourt/storefront-backend/api/middleware"
	orderssvc "github.com/ofcourt/storefront-backend/internal/orders"
	"github.com/ofcourt/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

type stubOrdersRepo struct {
	created *models.Order
	items   []models.OrderLineItem
	found   *models.Order
}

func (s *stubOrdersRepo) WithTx(_ *gorm.DB) orderssvc.Repository { return s }

func (s *stubOrdersRepo) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	s.created = order
	return order, nil
}

func (s *stubOrdersRepo) CreateLineItems(_ context.Context, items []models.OrderLineItem) error {
	s.items = items
	return nil
}

func (s *stubOrdersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if s.found == nil || s.found.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.found, nil
}

func (s *stubOrdersRepo) ListByCustomerEmail(_ context.Context, _ uuid.UUID, _ string) ([]models.Order, error) {
	return nil, nil
}

type stubStoreResolver struct {
	storeID uuid.UUID
	err     error
}

func (s *stubStoreResolver) ResolveID(_ context.Context) (uuid.UUID, error) {
	return s.storeID, s.err
}

func ordersHandler(t *testing.T, resolver *stubStoreResolver) (http.HandlerFunc, *stubOrdersRepo) {
	t.Helper()

	repo := &stubOrdersRepo{}
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc, err := orderssvc.NewService(repo, resolver, logg)
	if err != nil {
		t.Fatalf("new orders service: %v", err)
	}
	return OrdersCreate(svc, logg), repo
}

func postOrder(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/create-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func ordersDetailRouter(t *testing.T, repo *stubOrdersRepo, email string) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test"})
	svc, err := orderssvc.NewService(repo, &stubStoreResolver{storeID: uuid.New()}, logg)
	if err != nil {
		t.Fatalf("new orders service: %v", err)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithEmail(req.Context(), email)))
		})
	})
	r.Get("/orders/{orderId}", OrdersDetail(svc, logg))
	return r
}

func TestOrdersDetailReturnsOwnOrder(t *testing.T) {
	orderID := uuid.New()
	repo := &stubOrdersRepo{found: &models.Order{ID: orderID, CustomerEmail: "player@example.com"}}
	router := ordersDetailRouter(t, repo, "player@example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data := body.Data.(map[string]any); data["id"] != orderID.String() {
		t.Fatalf("unexpected payload %v", data)
	}
}

func TestOrdersDetailHidesOtherCustomersOrders(t *testing.T) {
	orderID := uuid.New()
	repo := &stubOrdersRepo{found: &models.Order{ID: orderID, CustomerEmail: "someone.else@example.com"}}
	router := ordersDetailRouter(t, repo, "player@example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another customer's order, got %d", w.Code)
	}
}

func TestOrdersDetailRejectsMalformedID(t *testing.T) {
	router := ordersDetailRouter(t, &stubOrdersRepo{}, "player@example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestOrdersCreateMissingEmail(t *testing.T) {
	handler, _ := ordersHandler(t, &stubStoreResolver{storeID: uuid.New()})

	w := postOrder(handler, `{"total": 130}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
}

func TestOrdersCreateMissingTotal(t *testing.T) {
	handler, _ := ordersHandler(t, &stubStoreResolver{storeID: uuid.New()})

	w := postOrder(handler, `{"email": "player@example.com"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestOrdersCreateExplicitZeroTotal(t *testing.T) {
	handler, repo := ordersHandler(t, &stubStoreResolver{storeID: uuid.New()})

	w := postOrder(handler, `{"email": "player@example.com", "total": 0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for explicit zero total, got %d: %s", w.Code, w.Body.String())
	}
	if repo.created == nil || !repo.created.TotalPrice.IsZero() {
		t.Fatalf("expected zero-total order persisted, got %+v", repo.created)
	}
}

func TestOrdersCreateStoreMisconfigured(t *testing.T) {
	resolver := &stubStoreResolver{err: pkgerrors.New(pkgerrors.CodeInternal, "store configuration error")}
	handler, _ := ordersHandler(t, resolver)

	w := postOrder(handler, `{"email": "player@example.com", "total": 130}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestOrdersCreateSuccess(t *testing.T) {
	handler, repo := ordersHandler(t, &stubStoreResolver{storeID: uuid.New()})

	w := postOrder(handler, `{
		"email": "player@example.com",
		"name": "Alex Chen",
		"total": 130,
		"items": [{"id": "racket", "title": "Pro Racket", "unitPrice": 120, "quantity": 1, "totalPrice": 120, "cartId": "c1"}]
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["customerEmail"] != "player@example.com" {
		t.Fatalf("unexpected payload %v", data)
	}
	if data["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", data["status"])
	}
	if repo.created == nil {
		t.Fatal("expected order persisted")
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(repo.items))
	}
}
