package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderfood/api/internal/checkout"
	"github.com/orderfood/api/internal/middleware"
)

// CheckoutService defines the orchestrator methods needed by checkout
// handlers. Satisfied by *checkout.Orchestrator.
type CheckoutService interface {
	State(customerID int64) *checkout.State
	Begin(ctx context.Context, customerID int64) (*checkout.State, error)
	SelectVoucher(ctx context.Context, customerID, voucherID int64) (*checkout.State, error)
	SkipVoucher(customerID int64) (*checkout.State, error)
	RemoveVoucher(ctx context.Context, customerID int64) (*checkout.State, error)
	SelectPayment(customerID int64, method string) (*checkout.State, error)
	Confirm(ctx context.Context, customerID int64) (*checkout.State, error)
	Cancel(customerID int64)
}

// CheckoutHandler handles the checkout flow endpoints.
type CheckoutHandler struct {
	svc CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(svc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// RegisterRoutes registers checkout endpoints on the given Chi router.
// Expected to be mounted behind authentication.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart/checkout", h.Get)
	r.Post("/cart/checkout", h.Begin)
	r.Delete("/cart/checkout", h.Cancel)
	r.Post("/cart/checkout/voucher", h.SelectVoucher)
	r.Delete("/cart/checkout/voucher", h.RemoveVoucher)
	r.Post("/cart/checkout/payment-method", h.SelectPayment)
	r.Post("/cart/checkout/confirm", h.Confirm)
}

type selectVoucherRequest struct {
	VoucherID int64 `json:"voucherId"`
	Skip      bool  `json:"skip"`
}

type selectPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// Get returns the current checkout state without changing it.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.svc.State(claims.CustomerID))
}

// Begin opens a checkout over the pending order.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	state, err := h.svc.Begin(r.Context(), claims.CustomerID)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SelectVoucher applies a voucher, or skips the step entirely.
func (h *CheckoutHandler) SelectVoucher(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	var req selectVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var (
		state *checkout.State
		err   error
	)
	if req.Skip {
		state, err = h.svc.SkipVoucher(claims.CustomerID)
	} else {
		if req.VoucherID < 1 {
			writeError(w, http.StatusBadRequest, "voucherId is required")
			return
		}
		state, err = h.svc.SelectVoucher(r.Context(), claims.CustomerID, req.VoucherID)
	}
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// RemoveVoucher detaches the applied voucher.
func (h *CheckoutHandler) RemoveVoucher(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	state, err := h.svc.RemoveVoucher(r.Context(), claims.CustomerID)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SelectPayment records the payment method.
func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	var req selectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	state, err := h.svc.SelectPayment(claims.CustomerID, req.PaymentMethod)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Confirm submits the order with the chosen method.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	state, err := h.svc.Confirm(r.Context(), claims.CustomerID)
	if err != nil {
		// A failed submission still carries the phase the customer landed
		// in, so the frontend can render the retry surface. A voucher the
		// order stopped qualifying for is the cart's fault, not upstream's.
		if state != nil {
			status := http.StatusBadGateway
			if errors.Is(err, checkout.ErrVoucherNotUsable) {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, status, state)
			return
		}
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Cancel abandons the checkout; the cart survives.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	h.svc.Cancel(claims.CustomerID)
	w.WriteHeader(http.StatusNoContent)
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusConflict, "cart is empty")
	case errors.Is(err, checkout.ErrNoCheckout):
		writeError(w, http.StatusConflict, "no checkout in progress")
	case errors.Is(err, checkout.ErrPhase):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrInvalidMethod):
		writeError(w, http.StatusUnprocessableEntity, "unknown payment method")
	case errors.Is(err, checkout.ErrNoPaymentMethod):
		writeError(w, http.StatusUnprocessableEntity, "no payment method selected")
	case errors.Is(err, checkout.ErrVoucherNotUsable):
		writeError(w, http.StatusUnprocessableEntity, "voucher cannot be used with this order")
	default:
		writeError(w, http.StatusBadGateway, "order service unavailable")
	}
}
