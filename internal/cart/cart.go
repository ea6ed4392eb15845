// Package cart is the customer-facing view-model over the pending order.
// The pending order on the order service is the single source of truth; this
// package re-reads it after every mutation instead of patching totals
// locally, and keeps only per-session presentation state (feedback messages,
// debounced note edits) in memory.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderfood/api/internal/enum"
	"github.com/orderfood/api/internal/remote"
	"github.com/orderfood/api/internal/voucher"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrBadQuantity = errors.New("quantity must be at least 1")
	ErrNoSuchLine  = errors.New("item is not in the cart")
)

// OrderStore is the slice of the order client the cart needs.
type OrderStore interface {
	FindPendingOrder(ctx context.Context, customerID int64) (*remote.Order, error)
	CreateOrder(ctx context.Context, customerID int64, clientKey uuid.UUID) (*remote.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*remote.Order, error)
	AddLine(ctx context.Context, orderID, productID int64, quantity int, note string) (*remote.OrderLine, error)
	UpdateLine(ctx context.Context, lineID int64, quantity int, note string) error
	DeleteLine(ctx context.Context, lineID int64) error
	DeleteOrder(ctx context.Context, orderID int64) error
	ApplyVoucher(ctx context.Context, orderID, voucherID int64, discount decimal.Decimal) error
	RemoveVoucher(ctx context.Context, orderID int64) error
}

// View is what a cart read returns: the order snapshot plus derived totals
// and the transient feedback message.
type View struct {
	Order      *remote.Order   `json:"order"`
	ItemCount  int             `json:"itemCount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Message    string          `json:"message,omitempty"`
	MessageTag string          `json:"messageTag,omitempty"`
}

type Service struct {
	orders   OrderStore
	sessions *Sessions
	writer   *DeferredWriter
}

func NewService(orders OrderStore, sessions *Sessions, writer *DeferredWriter) *Service {
	return &Service{orders: orders, sessions: sessions, writer: writer}
}

// Load returns the customer's current cart, fetching the pending order from
// the order service. A customer with no pending order gets an empty view.
func (s *Service) Load(ctx context.Context, customerID int64) (*View, error) {
	sess := s.sessions.Get(customerID)
	sess.Lock()
	defer sess.Unlock()

	order, err := s.orders.FindPendingOrder(ctx, customerID)
	if err != nil {
		return nil, err
	}
	sess.SetOrder(order)
	return s.view(sess), nil
}

// AddItem puts a product in the cart, creating the pending order first when
// none exists. Adding a product that is already in the cart adds a second
// line; merging quantities is a deliberate tap on the existing line instead.
func (s *Service) AddItem(ctx context.Context, customerID, productID int64, quantity int, note string) (*View, error) {
	if quantity < 1 {
		return nil, ErrBadQuantity
	}
	sess := s.sessions.Get(customerID)
	sess.Lock()
	defer sess.Unlock()

	order, err := s.ensureOrder(ctx, sess)
	if err != nil {
		return nil, err
	}
	if _, err := s.orders.AddLine(ctx, order.ID, productID, quantity, note); err != nil {
		sess.SetMessage("error", "Could not add item")
		return s.view(sess), err
	}
	if err := s.refresh(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.recheckVoucher(ctx, sess); err != nil {
		log.Printf("ERROR: voucher recheck after add: %v", err)
	}
	sess.SetMessage("success", "Added to cart")
	return s.view(sess), nil
}

// SetQuantity changes a line's quantity. Zero and negative values are
// rejected; removing an item is an explicit delete, not a decrement to zero.
func (s *Service) SetQuantity(ctx context.Context, customerID, lineID int64, quantity int) (*View, error) {
	sess := s.sessions.Get(customerID)
	sess.Lock()
	defer sess.Unlock()

	// Rejected before any round-trip; the line keeps its current quantity.
	if quantity < 1 {
		sess.SetMessage("error", "Quantity must be at least 1")
		return s.view(sess), ErrBadQuantity
	}
	line, err := s.findLine(ctx, sess, lineID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateLine(ctx, lineID, quantity, line.Note); err != nil {
		sess.SetMessage("error", "Could not update quantity")
		return s.view(sess), err
	}
	if err := s.refresh(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.recheckVoucher(ctx, sess); err != nil {
		log.Printf("ERROR: voucher recheck after quantity change: %v", err)
	}
	return s.view(sess), nil
}

// EditNote updates a line's note. The snapshot echoes the text immediately
// while the write itself is debounced, so rapid typing produces one persist
// with the final text.
func (s *Service) EditNote(ctx context.Context, customerID, lineID int64, note string) (*View, error) {
	sess := s.sessions.Get(customerID)
	sess.Lock()
	defer sess.Unlock()

	line, err := s.findLine(ctx, sess, lineID)
	if err != nil {
		return nil, err
	}
	line.Note = note
	quantity := line.Quantity
	s.writer.Schedule(lineID, func() {
		// Detached from the request; the caller's context is gone by the
		// time the debounce fires.
		if err := s.orders.UpdateLine(context.Background(), lineID, quantity, note); err != nil {
			log.Printf("ERROR: persist note for line %d: %v", lineID, err)
		}
	})
	return s.view(sess), nil
}

// DeleteItem removes a line from the cart. A cart whose last line is removed
// stays a pending order with zero lines; the customer keeps shopping into
// the same order.
func (s *Service) DeleteItem(ctx context.Context, customerID, lineID int64) (*View, error) {
	sess := s.sessions.Get(customerID)
	sess.Lock()
	defer sess.Unlock()

	if _, err := s.findLine(ctx, sess, lineID); err != nil {
		return nil, err
	}
	s.writer.Cancel(lineID)
	if err := s.orders.DeleteLine(ctx, lineID); err != nil {
		sess.SetMessage("error", "Could not remove item")
		return s.view(sess), err
	}
	if err := s.refresh(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.recheckVoucher(ctx, sess); err != nil {
		log.Printf("ERROR: voucher recheck after delete: %v", err)
	}
	sess.SetMessage("success", "Removed from cart")
	return s.view(sess), nil
}

// Clear discards the whole cart, order included.
func (s *Service) Clear(ctx context.Context, customerID int64) error {
	sess := s.sessions.Get(customerID)
	sess.Lock()
	defer sess.Unlock()

	order, err := s.currentOrder(ctx, sess)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}
	for _, line := range order.Lines {
		s.writer.Cancel(line.ID)
	}
	if err := s.orders.DeleteOrder(ctx, order.ID); err != nil {
		return err
	}
	sess.SetOrder(nil)
	return nil
}

// FlushNotes persists every debounced note immediately. Checkout calls this
// before submitting so the order carries the text as typed.
func (s *Service) FlushNotes() {
	s.writer.Flush()
}

// DropSession discards the customer's cached cart session. Checkout calls
// this once the order is placed, so the next cart read starts from a fresh
// pending-order scan instead of the snapshot of the finalized order.
func (s *Service) DropSession(customerID int64) {
	s.sessions.Drop(customerID)
}

// Session exposes the customer's session for collaborators that share its
// lock, such as the checkout orchestrator.
func (s *Service) Session(customerID int64) *Session {
	return s.sessions.Get(customerID)
}

// ensureOrder returns the pending order, creating it when the customer has
// none. Creation runs under the session lock and carries an idempotency key,
// so a concurrent double-add cannot produce two carts.
func (s *Service) ensureOrder(ctx context.Context, sess *Session) (*remote.Order, error) {
	order, err := s.currentOrder(ctx, sess)
	if err != nil {
		return nil, err
	}
	if order != nil {
		return order, nil
	}
	order, err = s.orders.CreateOrder(ctx, sess.customerID, uuid.New())
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	sess.SetOrder(order)
	return order, nil
}

// currentOrder refreshes the snapshot from the order service, falling back
// to the pending-order scan when no order is cached yet. A cached order
// whose status has moved past pending was placed in the meantime and is no
// longer the cart.
func (s *Service) currentOrder(ctx context.Context, sess *Session) (*remote.Order, error) {
	if cached := sess.Order(); cached != nil {
		order, err := s.orders.GetOrder(ctx, cached.ID)
		if err != nil {
			return nil, err
		}
		if order.Status == enum.OrderStatusPending {
			sess.SetOrder(order)
			return order, nil
		}
		sess.SetOrder(nil)
	}
	order, err := s.orders.FindPendingOrder(ctx, sess.customerID)
	if err != nil {
		return nil, err
	}
	sess.SetOrder(order)
	return order, nil
}

func (s *Service) refresh(ctx context.Context, sess *Session) error {
	cached := sess.Order()
	if cached == nil {
		return nil
	}
	order, err := s.orders.GetOrder(ctx, cached.ID)
	if err != nil {
		return err
	}
	sess.SetOrder(order)
	return nil
}

func (s *Service) findLine(ctx context.Context, sess *Session, lineID int64) (*remote.OrderLine, error) {
	order, err := s.currentOrder(ctx, sess)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrEmptyCart
	}
	for i := range order.Lines {
		if order.Lines[i].ID == lineID {
			return &order.Lines[i], nil
		}
	}
	return nil, ErrNoSuchLine
}

// recheckVoucher re-validates an applied voucher after the total changed.
// Below the minimum the voucher detaches with a message; otherwise the
// discount is recomputed against the new total.
func (s *Service) recheckVoucher(ctx context.Context, sess *Session) error {
	order := sess.Order()
	if order == nil || order.Voucher == nil || order.Voucher.Voucher == nil {
		return nil
	}
	v := *order.Voucher.Voucher
	if !voucher.StillUsable(v, order.TotalPrice) {
		if err := s.orders.RemoveVoucher(ctx, order.ID); err != nil {
			return err
		}
		sess.SetMessage("error", fmt.Sprintf("Voucher %s removed: order is below its minimum", v.Code))
		return s.refresh(ctx, sess)
	}
	discount := voucher.Discount(v, order.TotalPrice)
	if !discount.Equal(order.Voucher.DiscountAmount) {
		if err := s.orders.ApplyVoucher(ctx, order.ID, v.ID, discount); err != nil {
			return err
		}
		return s.refresh(ctx, sess)
	}
	return nil
}

func (s *Service) view(sess *Session) *View {
	tag, msg := sess.Message()
	view := &View{Order: sess.Order(), Message: msg, MessageTag: tag}
	order := sess.Order()
	if order == nil {
		return view
	}
	for _, line := range order.Lines {
		view.ItemCount += line.Quantity
		view.Subtotal = view.Subtotal.Add(line.SubTotal)
	}
	if order.Voucher != nil {
		view.Discount = order.Voucher.DiscountAmount
	}
	view.Total = view.Subtotal.Sub(view.Discount)
	if view.Total.IsNegative() {
		view.Total = decimal.Zero
	}
	return view
}
