package remote

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderfood/api/internal/enum"
)

// OrdersClient wraps every network-visible read/mutation of orders and their
// lines. No other package talks to the order service directly, and callers
// re-read after every write instead of patching local state.
type OrdersClient struct {
	*Client
}

func NewOrdersClient(c *Client) *OrdersClient {
	return &OrdersClient{Client: c}
}

// ListOrders fetches the full order collection. The service offers no
// filtered query, so every caller filters the list client-side.
func (c *OrdersClient) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches a single order with its lines.
func (c *OrdersClient) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, nil, &order); err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return &order, nil
}

// FindPendingOrder scans the order collection for the customer's cart. At
// most one pending order exists per customer; nil means no cart yet.
func (c *OrdersClient) FindPendingOrder(ctx context.Context, customerID int64) (*Order, error) {
	orders, err := c.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		o := &orders[i]
		if o.Customer != nil && o.Customer.ID == customerID && o.Status == enum.OrderStatusPending {
			return o, nil
		}
	}
	return nil, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (c *OrdersClient) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	orders, err := c.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	var mine []Order
	for _, o := range orders {
		if o.Customer != nil && o.Customer.ID == customerID {
			mine = append(mine, o)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })
	return mine, nil
}

// CreateOrder creates an empty pending order for the customer. The client
// key makes creation idempotent upstream: if a pending order already exists
// for this customer the service returns it instead of creating a second one.
func (c *OrdersClient) CreateOrder(ctx context.Context, customerID int64, clientKey uuid.UUID) (*Order, error) {
	body := map[string]interface{}{
		"status":     enum.OrderStatusPending,
		"totalPrice": 0,
		"customer":   map[string]int64{"idCustomer": customerID},
		"clientKey":  clientKey.String(),
	}
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, body, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// AddLine appends a new line to the order. Adding the same product twice
// produces two lines; quantity merging is the caller's explicit choice, not
// this client's. The line subtotal is server-derived from the product price.
func (c *OrdersClient) AddLine(ctx context.Context, orderID, productID int64, quantity int, note string) (*OrderLine, error) {
	body := map[string]interface{}{
		"quantity": quantity,
		"note":     note,
		"order":    map[string]int64{"idOrder": orderID},
		"product":  map[string]int64{"idProduct": productID},
	}
	var line OrderLine
	if err := c.do(ctx, http.MethodPost, "/orderDetails", nil, body, &line); err != nil {
		return nil, fmt.Errorf("add line: %w", err)
	}
	return &line, nil
}

// UpdateLine replaces the mutable fields of a line. Quantity below 1 never
// reaches this call; the view-model rejects it first.
func (c *OrdersClient) UpdateLine(ctx context.Context, lineID int64, quantity int, note string) error {
	body := map[string]interface{}{
		"quantity": quantity,
		"note":     note,
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orderDetails/%d", lineID), nil, body, nil); err != nil {
		return fmt.Errorf("update line %d: %w", lineID, err)
	}
	return nil
}

func (c *OrdersClient) DeleteLine(ctx context.Context, lineID int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/orderDetails/%d", lineID), nil, nil, nil); err != nil {
		return fmt.Errorf("delete line %d: %w", lineID, err)
	}
	return nil
}

// DeleteOrder removes an order. Some deployments of the order service refuse
// direct deletion while lines still reference the order; in that case every
// line is deleted first and the order delete retried once.
func (c *OrdersClient) DeleteOrder(ctx context.Context, orderID int64) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), nil, nil, nil)
	if err == nil {
		return nil
	}
	switch StatusCode(err) {
	case http.StatusConflict, http.StatusMethodNotAllowed:
	default:
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}

	order, getErr := c.GetOrder(ctx, orderID)
	if getErr != nil {
		return fmt.Errorf("delete order %d: %w", orderID, getErr)
	}
	for _, line := range order.Lines {
		if delErr := c.DeleteLine(ctx, line.ID); delErr != nil {
			return fmt.Errorf("delete order %d: %w", orderID, delErr)
		}
	}
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), nil, nil, nil); err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}
	return nil
}

// SetPaymentMethod finalizes a cash-on-delivery order: the service marks it
// confirmed with payment status UNPAID until delivery.
func (c *OrdersClient) SetPaymentMethod(ctx context.Context, orderID int64, method string) error {
	body := map[string]string{"paymentMethod": method}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/payment", orderID), nil, body, nil); err != nil {
		return fmt.Errorf("set payment method: %w", err)
	}
	return nil
}

// ApplyVoucher persists the order-voucher link with the discount snapshot.
// Must complete before any payment call for the same order.
func (c *OrdersClient) ApplyVoucher(ctx context.Context, orderID, voucherID int64, discount decimal.Decimal) error {
	body := map[string]interface{}{
		"voucherId":      voucherID,
		"discountAmount": discount.String(),
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/apply-voucher", orderID), nil, body, nil); err != nil {
		return fmt.Errorf("apply voucher: %w", err)
	}
	return nil
}

// RemoveVoucher detaches whatever voucher is applied to the order. A no-op
// upstream when none is applied.
func (c *OrdersClient) RemoveVoucher(ctx context.Context, orderID int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d/apply-voucher", orderID), nil, nil, nil); err != nil {
		return fmt.Errorf("remove voucher: %w", err)
	}
	return nil
}

// SetStatus issues a status transition. Legality is the caller's concern;
// this client carries whatever it is told.
func (c *OrdersClient) SetStatus(ctx context.Context, orderID int64, status string) error {
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d/status", orderID), nil, body, nil); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// Login verifies credentials against the customer service.
func (c *OrdersClient) Login(ctx context.Context, email, password string) (*Customer, error) {
	body := map[string]string{"email": email, "password": password}
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers/login", nil, body, &customer); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &customer, nil
}
