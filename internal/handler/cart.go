package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderfood/api/internal/cart"
	"github.com/orderfood/api/internal/middleware"
	"github.com/orderfood/api/internal/remote"
)

// CartService defines the view-model methods needed by cart handlers.
// Satisfied by *cart.Service; narrow interface for testability.
type CartService interface {
	Load(ctx context.Context, customerID int64) (*cart.View, error)
	AddItem(ctx context.Context, customerID, productID int64, quantity int, note string) (*cart.View, error)
	SetQuantity(ctx context.Context, customerID, lineID int64, quantity int) (*cart.View, error)
	EditNote(ctx context.Context, customerID, lineID int64, note string) (*cart.View, error)
	DeleteItem(ctx context.Context, customerID, lineID int64) (*cart.View, error)
	Clear(ctx context.Context, customerID int64) error
}

// CartHandler handles the customer cart endpoints.
type CartHandler struct {
	svc CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// Expected to be mounted behind authentication.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Patch("/cart/items/{id}", h.SetQuantity)
	r.Put("/cart/items/{id}/note", h.EditNote)
	r.Delete("/cart/items/{id}", h.DeleteItem)
	r.Delete("/cart", h.Clear)
}

type addItemRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type editNoteRequest struct {
	Note string `json:"note"`
}

// Get returns the customer's current cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	view, err := h.svc.Load(r.Context(), claims.CustomerID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddItem puts a product in the cart, creating it when needed.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID < 1 {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	view, err := h.svc.AddItem(r.Context(), claims.CustomerID, req.ProductID, req.Quantity, req.Note)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// SetQuantity changes a cart line's quantity.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	lineID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.svc.SetQuantity(r.Context(), claims.CustomerID, lineID, req.Quantity)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// EditNote updates a line note; the persist is debounced server-side.
func (h *CartHandler) EditNote(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	lineID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req editNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.svc.EditNote(r.Context(), claims.CustomerID, lineID, req.Note)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteItem removes a line from the cart.
func (h *CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	lineID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	view, err := h.svc.DeleteItem(r.Context(), claims.CustomerID, lineID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Clear discards the whole cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if err := h.svc.Clear(r.Context(), claims.CustomerID); err != nil {
		writeCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeCartError maps cart-level errors onto HTTP statuses. Remote failures
// surface as 502 so the frontend can tell "you did it wrong" from "the
// order service is down".
func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrBadQuantity):
		writeError(w, http.StatusUnprocessableEntity, "quantity must be at least 1")
	case errors.Is(err, cart.ErrNoSuchLine):
		writeError(w, http.StatusNotFound, "item is not in the cart")
	case errors.Is(err, cart.ErrEmptyCart):
		writeError(w, http.StatusNotFound, "cart is empty")
	default:
		if code := remote.StatusCode(err); code == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusBadGateway, "order service unavailable")
	}
}
