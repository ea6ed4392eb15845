package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderfood/api/internal/middleware"
	"github.com/orderfood/api/internal/remote"
)

// OrderHistory lists a customer's orders. Satisfied by
// *remote.OrdersClient.
type OrderHistory interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]remote.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*remote.Order, error)
}

// GatewayReturner settles a gateway redirect-back. Satisfied by
// *checkout.Orchestrator.
type GatewayReturner interface {
	CompleteGatewayReturn(ctx context.Context, rawQuery string) (*remote.GatewayResult, error)
}

// OrdersHandler handles order history and the payment return callback.
type OrdersHandler struct {
	orders  OrderHistory
	gateway GatewayReturner
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(orders OrderHistory, gateway GatewayReturner) *OrdersHandler {
	return &OrdersHandler{orders: orders, gateway: gateway}
}

// RegisterRoutes registers the authenticated order endpoints.
func (h *OrdersHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
}

// RegisterPublicRoutes registers the endpoints the gateway calls back into;
// the customer arrives here from the gateway without a session header.
func (h *OrdersHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/payment/return", h.PaymentReturn)
}

// List returns the customer's orders, newest first.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	orders, err := h.orders.ListByCustomer(r.Context(), claims.CustomerID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "order service unavailable")
		return
	}
	if orders == nil {
		orders = []remote.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get returns a single order, but only the customer's own.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	orderID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		if remote.StatusCode(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadGateway, "order service unavailable")
		return
	}
	if order.Customer == nil || order.Customer.ID != claims.CustomerID {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// PaymentReturn verifies the gateway's redirect-back query. The raw query is
// forwarded untouched; re-encoding it would break the signature.
func (h *OrdersHandler) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.CompleteGatewayReturn(r.Context(), r.URL.RawQuery)
	if err != nil {
		writeError(w, http.StatusBadGateway, "payment verification unavailable")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
