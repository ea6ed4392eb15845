package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/orderfood/api/internal/middleware"
	"github.com/orderfood/api/internal/remote"
	"github.com/orderfood/api/internal/voucher"
)

// VoucherEvaluator defines the evaluator methods needed by voucher handlers.
// Satisfied by *voucher.Evaluator.
type VoucherEvaluator interface {
	ListEligible(ctx context.Context, orderTotal decimal.Decimal) ([]voucher.Eligible, error)
	ValidateCode(ctx context.Context, code string, orderTotal decimal.Decimal) (*remote.VoucherValidation, error)
}

// PendingOrderFinder locates the customer's cart so vouchers can be judged
// against its total.
type PendingOrderFinder interface {
	FindPendingOrder(ctx context.Context, customerID int64) (*remote.Order, error)
}

// VouchersHandler handles voucher browsing and code validation.
type VouchersHandler struct {
	eval   VoucherEvaluator
	orders PendingOrderFinder
}

// NewVouchersHandler creates a new VouchersHandler.
func NewVouchersHandler(eval VoucherEvaluator, orders PendingOrderFinder) *VouchersHandler {
	return &VouchersHandler{eval: eval, orders: orders}
}

// RegisterRoutes registers voucher endpoints on the given Chi router.
// Expected to be mounted behind authentication.
func (h *VouchersHandler) RegisterRoutes(r chi.Router) {
	r.Get("/vouchers/eligible", h.ListEligible)
	r.Post("/vouchers/validate", h.Validate)
}

type validateVoucherRequest struct {
	Code string `json:"code"`
}

// ListEligible returns every currently valid voucher, annotated with
// usability against the customer's cart total.
func (h *VouchersHandler) ListEligible(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	total, ok := h.cartTotal(w, r, claims.CustomerID)
	if !ok {
		return
	}
	eligible, err := h.eval.ListEligible(r.Context(), total)
	if err != nil {
		writeError(w, http.StatusBadGateway, "voucher service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, eligible)
}

// Validate checks a manually entered voucher code against the cart total.
func (h *VouchersHandler) Validate(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	var req validateVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	total, ok := h.cartTotal(w, r, claims.CustomerID)
	if !ok {
		return
	}
	result, err := h.eval.ValidateCode(r.Context(), req.Code, total)
	if err != nil {
		writeError(w, http.StatusBadGateway, "voucher service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *VouchersHandler) cartTotal(w http.ResponseWriter, r *http.Request, customerID int64) (decimal.Decimal, bool) {
	order, err := h.orders.FindPendingOrder(r.Context(), customerID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "order service unavailable")
		return decimal.Zero, false
	}
	if order == nil {
		return decimal.Zero, true
	}
	return order.TotalPrice, true
}
