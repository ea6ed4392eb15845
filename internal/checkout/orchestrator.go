// Package checkout walks a cart through voucher selection, payment choice
// and submission as an explicit phase machine. Every move is a named
// operation checked against the current phase, so a stray double-click or a
// replayed request cannot submit an order twice.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/orderfood/api/internal/enum"
	"github.com/orderfood/api/internal/remote"
	"github.com/orderfood/api/internal/voucher"
)

type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseVoucherSelection Phase = "voucher_selection"
	PhasePaymentSelection Phase = "payment_selection"
	PhaseConfirming       Phase = "confirming"
	PhaseSubmitting       Phase = "submitting"
	PhaseRedirected       Phase = "redirected"
	PhaseCompleted        Phase = "completed"
	PhaseFailed           Phase = "failed"
)

var (
	ErrEmptyCart             = errors.New("cannot check out an empty cart")
	ErrNoCheckout            = errors.New("no checkout in progress")
	ErrPhase                 = errors.New("operation not allowed in current phase")
	ErrInvalidMethod         = errors.New("unknown payment method")
	ErrNoPaymentMethod       = errors.New("no payment method selected")
	ErrVoucherNotUsable      = errors.New("voucher cannot be used with this order")
	ErrVoucherAlreadyApplied = errors.New("a voucher is already applied")
)

// Where the frontend sends the customer after a cash order completes, and
// how long the confirmation stays on screen first.
const (
	historyRedirectHint  = "/my-orders"
	historyRedirectDelay = 2000 // milliseconds
)

// State is a customer's checkout in flight. Everything in it is derivable
// from the order service except the phase itself and the gateway redirect
// URL.
type State struct {
	Phase       Phase           `json:"phase"`
	OrderID     int64           `json:"orderId"`
	Method      string          `json:"paymentMethod,omitempty"`
	Voucher     *remote.Voucher `json:"voucher,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	RedirectURL string          `json:"redirectUrl,omitempty"`
	// RedirectHint points the frontend at the order history after a cash
	// order completes; RedirectAfterMS is how long to show the confirmation.
	RedirectHint    string `json:"redirectHint,omitempty"`
	RedirectAfterMS int    `json:"redirectAfterMs,omitempty"`
	Failure         string `json:"failure,omitempty"`
}

// OrderStore is the slice of the order client checkout needs.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID int64) (*remote.Order, error)
	FindPendingOrder(ctx context.Context, customerID int64) (*remote.Order, error)
	ApplyVoucher(ctx context.Context, orderID, voucherID int64, discount decimal.Decimal) error
	RemoveVoucher(ctx context.Context, orderID int64) error
	SetPaymentMethod(ctx context.Context, orderID int64, method string) error
	SetStatus(ctx context.Context, orderID int64, st string) error
}

// PaymentGateway is the slice of the payment bridge checkout needs.
type PaymentGateway interface {
	CreateSession(ctx context.Context, amount decimal.Decimal, orderInfo string, orderID int64) (string, error)
	VerifyReturn(ctx context.Context, rawQuery string) (*remote.GatewayResult, error)
}

// VoucherEvaluator decides voucher usability against an order total.
type VoucherEvaluator interface {
	ListEligible(ctx context.Context, orderTotal decimal.Decimal) ([]voucher.Eligible, error)
}

// Carts is the slice of the cart service checkout needs: flushing debounced
// note edits before the order submits, and retiring the cart session once
// the order is placed so a stale snapshot cannot resurface as the cart.
type Carts interface {
	FlushNotes()
	DropSession(customerID int64)
}

// Notifier fans order lifecycle events out to the kitchen board. May be nil.
type Notifier interface {
	OrderChanged(orderID int64, st string)
}

// session is one customer's checkout slot. Its lock is held across the
// upstream calls an operation makes, so checkouts of different customers
// never wait on each other.
type session struct {
	mu sync.Mutex
	st *State // nil when no checkout is in flight
}

func (s *session) stateIn(phases ...Phase) (*State, error) {
	if s.st == nil {
		return nil, ErrNoCheckout
	}
	for _, p := range phases {
		if s.st.Phase == p {
			return s.st, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPhase, s.st.Phase)
}

type Orchestrator struct {
	orders   OrderStore
	payments PaymentGateway
	eval     VoucherEvaluator
	carts    Carts
	notifier Notifier

	// mu guards the session map only; upstream calls run under the
	// per-customer session lock.
	mu       sync.Mutex
	sessions map[int64]*session
}

func NewOrchestrator(orders OrderStore, payments PaymentGateway, eval VoucherEvaluator, carts Carts, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		orders:   orders,
		payments: payments,
		eval:     eval,
		carts:    carts,
		notifier: notifier,
		sessions: make(map[int64]*session),
	}
}

func (o *Orchestrator) session(customerID int64) *session {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[customerID]
	if !ok {
		s = &session{}
		o.sessions[customerID] = s
	}
	return s
}

// State returns the customer's checkout state, an idle one when none exists.
func (o *Orchestrator) State(customerID int64) *State {
	s := o.session(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != nil {
		copied := *s.st
		return &copied
	}
	return &State{Phase: PhaseIdle}
}

// Begin starts a checkout over the customer's pending order. An empty or
// missing cart refuses to start; a fetch failure leaves the customer idle so
// a retry starts clean.
func (o *Orchestrator) Begin(ctx context.Context, customerID int64) (*State, error) {
	s := o.session(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st != nil && s.st.Phase != PhaseIdle && s.st.Phase != PhaseCompleted && s.st.Phase != PhaseFailed {
		copied := *s.st
		return &copied, nil
	}

	order, err := o.orders.FindPendingOrder(ctx, customerID)
	if err != nil {
		s.st = nil
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	if order == nil || len(order.Lines) == 0 {
		s.st = nil
		return nil, ErrEmptyCart
	}

	st := &State{
		Phase:   PhaseVoucherSelection,
		OrderID: order.ID,
		Total:   order.TotalPrice,
	}
	if order.Voucher != nil {
		// A voucher persisted by an earlier submission attempt stays applied.
		st.Voucher = order.Voucher.Voucher
		st.Discount = order.Voucher.DiscountAmount
		st.Total = order.TotalPrice.Sub(st.Discount)
	}

	// A voucher outage should not block ordering; skip straight to payment.
	if _, err := o.eval.ListEligible(ctx, order.TotalPrice); err != nil {
		log.Printf("ERROR: list vouchers at checkout start: %v", err)
		st.Phase = PhasePaymentSelection
	}

	s.st = st
	copied := *st
	return &copied, nil
}

// SelectVoucher applies one of the eligible vouchers during voucher
// selection and advances to payment selection. An unusable voucher leaves
// the customer where they are.
func (o *Orchestrator) SelectVoucher(ctx context.Context, customerID, voucherID int64) (*State, error) {
	s := o.session(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.stateIn(PhaseVoucherSelection)
	if err != nil {
		return nil, err
	}
	if st.Voucher != nil {
		return nil, ErrVoucherAlreadyApplied
	}
	order, err := o.orders.GetOrder(ctx, st.OrderID)
	if err != nil {
		return nil, err
	}
	eligible, err := o.eval.ListEligible(ctx, order.TotalPrice)
	if err != nil {
		return nil, err
	}
	var chosen *voucher.Eligible
	for i := range eligible {
		if eligible[i].Voucher.ID == voucherID {
			chosen = &eligible[i]
			break
		}
	}
	if chosen == nil || !chosen.Usable {
		return nil, ErrVoucherNotUsable
	}
	// The choice lives in the checkout until submission; the order-voucher
	// link is only persisted right before payment.
	st.Voucher = &chosen.Voucher
	st.Discount = chosen.Discount
	st.Total = order.TotalPrice.Sub(chosen.Discount)
	st.Phase = PhasePaymentSelection
	copied := *st
	return &copied, nil
}

// SkipVoucher advances to payment selection without a discount.
func (o *Orchestrator) SkipVoucher(customerID int64) (*State, error) {
	s := o.session(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.stateIn(PhaseVoucherSelection)
	if err != nil {
		return nil, err
	}
	st.Phase = PhasePaymentSelection
	copied := *st
	return &copied, nil
}

// RemoveVoucher detaches the applied voucher and returns the customer to
// voucher selection so they can pick another or skip.
func (o *Orchestrator) RemoveVoucher(ctx context.Context, customerID int64) (*State, error) {
	s := o.session(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.stateIn(PhaseVoucherSelection, PhasePaymentSelection, PhaseConfirming)
	if err != nil {
		return nil, err
	}
	if st.Voucher != nil {
		if err := o.orders.RemoveVoucher(ctx, st.OrderID); err != nil {
			return nil, fmt.Errorf("remove voucher: %w", err)
		}
	}
	st.Voucher = nil
	st.Total = st.Total.Add(st.Discount)
	st.Discount = decimal.Zero
	st.Phase = PhaseVoucherSelection
	copied := *st
	return &copied, nil
}

// SelectPayment records the payment method and moves to the confirmation
// step. Only the closed method set is accepted.
func (o *Orchestrator) SelectPayment(customerID int64, method string) (*State, error) {
	s := o.session(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.stateIn(PhasePaymentSelection, PhaseConfirming)
	if err != nil {
		return nil, err
	}
	switch method {
	case enum.PaymentMethodCOD, enum.PaymentMethodGateway:
	default:
		return nil, ErrInvalidMethod
	}
	st.Method = method
	st.Phase = PhaseConfirming
	copied := *st
	return &copied, nil
}

// Confirm submits the order with the chosen method. The order is re-read
// and re-priced first: the cart may have been edited since the voucher was
// chosen, and a voucher the order no longer qualifies for detaches here
// instead of being charged. Cash on delivery completes in place; a gateway
// payment returns the redirect URL and parks the checkout until the gateway
// return arrives. A submission failure for cash returns to confirming so
// the customer can retry; a gateway failure lands back in payment selection.
func (o *Orchestrator) Confirm(ctx context.Context, customerID int64) (*State, error) {
	s := o.session(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.stateIn(PhaseConfirming)
	if err != nil {
		return nil, err
	}
	if st.Method == "" {
		return nil, ErrNoPaymentMethod
	}

	st.Phase = PhaseSubmitting
	o.carts.FlushNotes()

	order, err := o.orders.GetOrder(ctx, st.OrderID)
	if err != nil {
		st.Phase = PhaseConfirming
		st.Failure = "Could not place the order"
		copied := *st
		return &copied, fmt.Errorf("reload order before submit: %w", err)
	}
	st.Total = order.TotalPrice
	if st.Voucher != nil {
		if !voucher.StillUsable(*st.Voucher, order.TotalPrice) {
			if order.Voucher != nil {
				if err := o.orders.RemoveVoucher(ctx, st.OrderID); err != nil {
					log.Printf("ERROR: detach voucher from order %d: %v", st.OrderID, err)
				}
			}
			st.Voucher = nil
			st.Discount = decimal.Zero
			st.Phase = PhaseVoucherSelection
			st.Failure = "Voucher removed: order is below its minimum"
			copied := *st
			return &copied, ErrVoucherNotUsable
		}
		st.Discount = voucher.Discount(*st.Voucher, order.TotalPrice)
		st.Total = order.TotalPrice.Sub(st.Discount)
	}

	// The voucher link is persisted before any payment call. It is not
	// rolled back if the payment itself fails afterwards; the cart's
	// recheck-on-edit handles a stale link on the pending order.
	if st.Voucher != nil && st.Discount.IsPositive() {
		if err := o.orders.ApplyVoucher(ctx, st.OrderID, st.Voucher.ID, st.Discount); err != nil {
			st.Phase = PhaseConfirming
			st.Failure = "Could not apply the voucher"
			copied := *st
			return &copied, fmt.Errorf("apply voucher: %w", err)
		}
	}

	switch st.Method {
	case enum.PaymentMethodCOD:
		if err := o.orders.SetPaymentMethod(ctx, st.OrderID, enum.PaymentMethodCOD); err != nil {
			st.Phase = PhaseConfirming
			st.Failure = "Could not place the order"
			copied := *st
			return &copied, err
		}
		st.Phase = PhaseCompleted
		st.Failure = ""
		st.RedirectHint = historyRedirectHint
		st.RedirectAfterMS = historyRedirectDelay
		o.carts.DropSession(customerID)
		o.notify(st.OrderID, enum.OrderStatusConfirmed)
	case enum.PaymentMethodGateway:
		url, err := o.payments.CreateSession(ctx, st.Total, fmt.Sprintf("Order %d", st.OrderID), st.OrderID)
		if err != nil {
			st.Phase = PhasePaymentSelection
			st.Failure = "Payment could not be started"
			copied := *st
			return &copied, err
		}
		st.Phase = PhaseRedirected
		st.RedirectURL = url
		st.Failure = ""
	}
	copied := *st
	return &copied, nil
}

// Cancel abandons a checkout in progress. The cart itself is untouched.
func (o *Orchestrator) Cancel(customerID int64) {
	s := o.session(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = nil
}

// CompleteGatewayReturn verifies the gateway's redirect-back query and
// settles the order. On success the order is confirmed and pushed to the
// board; on failure the order stays pending and the checkout re-opens at
// payment selection.
func (o *Orchestrator) CompleteGatewayReturn(ctx context.Context, rawQuery string) (*remote.GatewayResult, error) {
	result, err := o.payments.VerifyReturn(ctx, rawQuery)
	if err != nil {
		return nil, fmt.Errorf("gateway return: %w", err)
	}

	o.mu.Lock()
	ids := make([]int64, 0, len(o.sessions))
	held := make([]*session, 0, len(o.sessions))
	for id, s := range o.sessions {
		ids = append(ids, id)
		held = append(held, s)
	}
	o.mu.Unlock()

	// The redirect back carries only the order ID; find whose checkout it
	// settles.
	for i, s := range held {
		s.mu.Lock()
		if s.st == nil || s.st.OrderID != result.OrderID {
			s.mu.Unlock()
			continue
		}
		if result.Status == "success" {
			s.st.Phase = PhaseCompleted
			s.st.RedirectURL = ""
			s.st.Failure = ""
			o.carts.DropSession(ids[i])
		} else {
			s.st.Phase = PhasePaymentSelection
			s.st.RedirectURL = ""
			s.st.Failure = result.Message
		}
		s.mu.Unlock()
		break
	}

	if result.Status == "success" {
		if err := o.orders.SetStatus(ctx, result.OrderID, enum.OrderStatusConfirmed); err != nil {
			log.Printf("ERROR: confirm order %d after payment: %v", result.OrderID, err)
		} else {
			o.notify(result.OrderID, enum.OrderStatusConfirmed)
		}
	}
	return result, nil
}

func (o *Orchestrator) notify(orderID int64, st string) {
	if o.notifier != nil {
		o.notifier.OrderChanged(orderID, st)
	}
}
