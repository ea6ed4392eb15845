package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/orderfood/api/internal/enum"
	"github.com/orderfood/api/internal/middleware"
	"github.com/orderfood/api/internal/remote"
	"github.com/orderfood/api/internal/status"
)

// BoardStore defines the order client methods the kitchen board needs.
type BoardStore interface {
	ListOrders(ctx context.Context) ([]remote.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*remote.Order, error)
	SetStatus(ctx context.Context, orderID int64, st string) error
	DeleteOrder(ctx context.Context, orderID int64) error
}

// BoardNotifier pushes status changes to connected boards.
type BoardNotifier interface {
	OrderChanged(orderID int64, st string)
}

// BoardHandler handles the staff-facing order board.
type BoardHandler struct {
	store    BoardStore
	notifier BoardNotifier
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(store BoardStore, notifier BoardNotifier) *BoardHandler {
	return &BoardHandler{store: store, notifier: notifier}
}

// RegisterRoutes registers board endpoints on the given Chi router.
// Expected to be mounted behind authentication plus a staff/admin role
// check.
func (h *BoardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/board/orders", h.List)
	r.Post("/board/orders/{id}/status", h.UpdateStatus)
	r.Delete("/board/orders/{id}", h.Delete)
}

// boardOrder decorates an order with the moves the board may offer for it.
type boardOrder struct {
	remote.Order
	NextStatuses []status.Status `json:"nextStatuses"`
	CanCancel    bool            `json:"canCancel"`
}

type boardResponse struct {
	Orders []boardOrder   `json:"orders"`
	Counts map[string]int `json:"counts"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// List returns every submitted order, newest first, with per-status counts.
// Pending orders are carts still being filled; they never reach the board.
// An optional ?status= narrows the list; counts always cover the whole
// board so the filter chips stay accurate.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := status.Status(r.URL.Query().Get("status"))
	if filter != "" && (!status.IsValid(filter) || filter == status.Pending) {
		writeError(w, http.StatusUnprocessableEntity, "unknown status filter")
		return
	}

	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "order service unavailable")
		return
	}

	resp := boardResponse{Orders: []boardOrder{}, Counts: make(map[string]int)}
	for _, o := range orders {
		if o.Status == enum.OrderStatusPending {
			continue
		}
		st := status.Status(o.Status)
		resp.Counts[o.Status]++
		if filter != "" && st != filter {
			continue
		}
		resp.Orders = append(resp.Orders, boardOrder{
			Order:        o,
			NextStatuses: status.Next(st),
			CanCancel:    status.CanCancel(st),
		})
	}
	sort.Slice(resp.Orders, func(i, j int) bool { return resp.Orders[i].ID > resp.Orders[j].ID })
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus moves an order through its lifecycle. Staff are held to the
// transition table; admins may set any valid status to fix a mis-tap.
func (h *BoardHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	orderID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	target := status.Status(req.Status)
	if !status.IsValid(target) {
		writeError(w, http.StatusUnprocessableEntity, "unknown status")
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if remote.StatusCode(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadGateway, "order service unavailable")
		return
	}

	current := status.Status(order.Status)
	if claims.Role != enum.RoleAdmin && !status.CanTransition(current, target) {
		writeError(w, http.StatusConflict, "illegal status transition")
		return
	}

	if err := h.store.SetStatus(r.Context(), orderID, string(target)); err != nil {
		writeError(w, http.StatusBadGateway, "order service unavailable")
		return
	}
	h.notifier.OrderChanged(orderID, string(target))
	writeJSON(w, http.StatusOK, map[string]string{"status": string(target)})
}

// Delete removes an order entirely. Admin only; staff cancel instead of
// deleting.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims.Role != enum.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	orderID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteOrder(r.Context(), orderID); err != nil {
		if remote.StatusCode(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadGateway, "order service unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
