package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// VouchersClient reads the voucher catalog and delegates code validation to
// the voucher service, which owns the date-window and quantity checks.
type VouchersClient struct {
	*Client
}

func NewVouchersClient(c *Client) *VouchersClient {
	return &VouchersClient{Client: c}
}

// ListValid returns every voucher that is active, inside its date window and
// still has uses left. Order-value eligibility is evaluated locally on top.
func (c *VouchersClient) ListValid(ctx context.Context) ([]Voucher, error) {
	var vouchers []Voucher
	if err := c.do(ctx, http.MethodGet, "/vouchers/valid", nil, nil, &vouchers); err != nil {
		return nil, fmt.Errorf("list valid vouchers: %w", err)
	}
	return vouchers, nil
}

// Validate checks a code against an order value and returns the computed
// discount. An unusable code comes back with valid=false plus a reason, not
// an error; errors mean the call itself failed.
func (c *VouchersClient) Validate(ctx context.Context, code string, orderValue decimal.Decimal) (*VoucherValidation, error) {
	body := map[string]interface{}{
		"code":       code,
		"orderValue": orderValue,
	}
	var result VoucherValidation
	if err := c.do(ctx, http.MethodPost, "/vouchers/validate", nil, body, &result); err != nil {
		return nil, fmt.Errorf("validate voucher: %w", err)
	}
	return &result, nil
}
