package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/orderfood/api/internal/auth"
	"github.com/orderfood/api/internal/cart"
	"github.com/orderfood/api/internal/enum"
	"github.com/orderfood/api/internal/handler"
	mw "github.com/orderfood/api/internal/middleware"
	"github.com/orderfood/api/internal/remote"
)

const testSecret = "test-secret"

// --- Mock service ---

type mockCartService struct {
	loadFn        func(ctx context.Context, customerID int64) (*cart.View, error)
	addItemFn     func(ctx context.Context, customerID, productID int64, quantity int, note string) (*cart.View, error)
	setQuantityFn func(ctx context.Context, customerID, lineID int64, quantity int) (*cart.View, error)
	editNoteFn    func(ctx context.Context, customerID, lineID int64, note string) (*cart.View, error)
	deleteItemFn  func(ctx context.Context, customerID, lineID int64) (*cart.View, error)
	clearFn       func(ctx context.Context, customerID int64) error
}

func (m *mockCartService) Load(ctx context.Context, customerID int64) (*cart.View, error) {
	return m.loadFn(ctx, customerID)
}

func (m *mockCartService) AddItem(ctx context.Context, customerID, productID int64, quantity int, note string) (*cart.View, error) {
	return m.addItemFn(ctx, customerID, productID, quantity, note)
}

func (m *mockCartService) SetQuantity(ctx context.Context, customerID, lineID int64, quantity int) (*cart.View, error) {
	return m.setQuantityFn(ctx, customerID, lineID, quantity)
}

func (m *mockCartService) EditNote(ctx context.Context, customerID, lineID int64, note string) (*cart.View, error) {
	return m.editNoteFn(ctx, customerID, lineID, note)
}

func (m *mockCartService) DeleteItem(ctx context.Context, customerID, lineID int64) (*cart.View, error) {
	return m.deleteItemFn(ctx, customerID, lineID)
}

func (m *mockCartService) Clear(ctx context.Context, customerID int64) error {
	return m.clearFn(ctx, customerID)
}

// --- Helpers ---

func setupCartRouter(svc *mockCartService) *chi.Mux {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(testSecret))
		handler.NewCartHandler(svc).RegisterRoutes(r)
	})
	return r
}

func authedRequest(t *testing.T, method, path string, body interface{}, customerID int64, role string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	token, err := auth.GenerateToken(testSecret, customerID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func emptyView() *cart.View {
	return &cart.View{Subtotal: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero}
}

// --- Tests ---

func TestCartGet(t *testing.T) {
	svc := &mockCartService{
		loadFn: func(_ context.Context, customerID int64) (*cart.View, error) {
			if customerID != 7 {
				t.Errorf("expected customer 7, got %d", customerID)
			}
			return &cart.View{
				Order:     &remote.Order{ID: 42},
				ItemCount: 3,
				Subtotal:  decimal.NewFromInt(150000),
				Total:     decimal.NewFromInt(150000),
			}, nil
		},
	}
	rr := httptest.NewRecorder()
	setupCartRouter(svc).ServeHTTP(rr, authedRequest(t, http.MethodGet, "/cart", nil, 7, enum.RoleCustomer))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d; body: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["itemCount"].(float64) != 3 {
		t.Errorf("expected itemCount 3, got %v", resp["itemCount"])
	}
}

func TestCartGetRequiresAuth(t *testing.T) {
	svc := &mockCartService{}
	rr := httptest.NewRecorder()
	setupCartRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cart", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestCartAddItem(t *testing.T) {
	var gotProduct int64
	var gotQuantity int
	svc := &mockCartService{
		addItemFn: func(_ context.Context, _, productID int64, quantity int, _ string) (*cart.View, error) {
			gotProduct = productID
			gotQuantity = quantity
			return emptyView(), nil
		},
	}
	rr := httptest.NewRecorder()
	body := map[string]interface{}{"productId": 12, "quantity": 2, "note": "no onions"}
	setupCartRouter(svc).ServeHTTP(rr, authedRequest(t, http.MethodPost, "/cart/items", body, 7, enum.RoleCustomer))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d; body: %s", rr.Code, rr.Body.String())
	}
	if gotProduct != 12 || gotQuantity != 2 {
		t.Errorf("expected product 12 qty 2, got product %d qty %d", gotProduct, gotQuantity)
	}
}

func TestCartAddItemRequiresProduct(t *testing.T) {
	svc := &mockCartService{}
	rr := httptest.NewRecorder()
	setupCartRouter(svc).ServeHTTP(rr, authedRequest(t, http.MethodPost, "/cart/items", map[string]int{"quantity": 1}, 7, enum.RoleCustomer))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestCartSetQuantityBelowOne(t *testing.T) {
	svc := &mockCartService{
		setQuantityFn: func(_ context.Context, _, _ int64, _ int) (*cart.View, error) {
			return emptyView(), cart.ErrBadQuantity
		},
	}
	rr := httptest.NewRecorder()
	setupCartRouter(svc).ServeHTTP(rr, authedRequest(t, http.MethodPatch, "/cart/items/5", map[string]int{"quantity": 0}, 7, enum.RoleCustomer))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", rr.Code)
	}
}

func TestCartDeleteUnknownItem(t *testing.T) {
	svc := &mockCartService{
		deleteItemFn: func(_ context.Context, _, _ int64) (*cart.View, error) {
			return nil, cart.ErrNoSuchLine
		},
	}
	rr := httptest.NewRecorder()
	setupCartRouter(svc).ServeHTTP(rr, authedRequest(t, http.MethodDelete, "/cart/items/5", nil, 7, enum.RoleCustomer))

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestCartEditNote(t *testing.T) {
	var gotNote string
	svc := &mockCartService{
		editNoteFn: func(_ context.Context, _, lineID int64, note string) (*cart.View, error) {
			if lineID != 5 {
				t.Errorf("expected line 5, got %d", lineID)
			}
			gotNote = note
			return emptyView(), nil
		},
	}
	rr := httptest.NewRecorder()
	setupCartRouter(svc).ServeHTTP(rr, authedRequest(t, http.MethodPut, "/cart/items/5/note", map[string]string{"note": "extra spicy"}, 7, enum.RoleCustomer))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotNote != "extra spicy" {
		t.Errorf("expected note to pass through, got %q", gotNote)
	}
}

func TestCartClear(t *testing.T) {
	cleared := false
	svc := &mockCartService{
		clearFn: func(_ context.Context, _ int64) error {
			cleared = true
			return nil
		},
	}
	rr := httptest.NewRecorder()
	setupCartRouter(svc).ServeHTTP(rr, authedRequest(t, http.MethodDelete, "/cart", nil, 7, enum.RoleCustomer))

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rr.Code)
	}
	if !cleared {
		t.Error("expected clear to reach the service")
	}
}

func TestCartServiceOutageMapsTo502(t *testing.T) {
	svc := &mockCartService{
		loadFn: func(_ context.Context, _ int64) (*cart.View, error) {
			return nil, &remote.Error{StatusCode: http.StatusInternalServerError, Message: "boom"}
		},
	}
	rr := httptest.NewRecorder()
	setupCartRouter(svc).ServeHTTP(rr, authedRequest(t, http.MethodGet, "/cart", nil, 7, enum.RoleCustomer))

	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rr.Code)
	}
}
