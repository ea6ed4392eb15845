// Package voucher evaluates voucher eligibility and discounts against an
// order total. The voucher service owns date windows and remaining quantity;
// this package layers the order-value rules on top of what it returns.
package voucher

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/orderfood/api/internal/enum"
	"github.com/orderfood/api/internal/remote"
)

var oneHundred = decimal.NewFromInt(100)

// Lister is the slice of the voucher client this evaluator needs.
type Lister interface {
	ListValid(ctx context.Context) ([]remote.Voucher, error)
	Validate(ctx context.Context, code string, orderValue decimal.Decimal) (*remote.VoucherValidation, error)
}

// Eligible pairs a voucher with its usability against a specific order
// total. Unusable vouchers stay in the list so the customer can see how far
// they are from the threshold.
type Eligible struct {
	Voucher   remote.Voucher  `json:"voucher"`
	Usable    bool            `json:"usable"`
	Discount  decimal.Decimal `json:"discount"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

type Evaluator struct {
	vouchers Lister
}

func NewEvaluator(vouchers Lister) *Evaluator {
	return &Evaluator{vouchers: vouchers}
}

// ListEligible fetches the currently valid vouchers and splits them by the
// order total: usable ones carry their computed discount, the rest carry the
// amount still missing to reach minOrderValue.
func (e *Evaluator) ListEligible(ctx context.Context, orderTotal decimal.Decimal) ([]Eligible, error) {
	vouchers, err := e.vouchers.ListValid(ctx)
	if err != nil {
		return nil, err
	}
	eligible := make([]Eligible, 0, len(vouchers))
	for _, v := range vouchers {
		entry := Eligible{Voucher: v}
		if orderTotal.GreaterThanOrEqual(v.MinOrderValue) {
			entry.Usable = true
			entry.Discount = Discount(v, orderTotal)
		} else {
			entry.Shortfall = v.MinOrderValue.Sub(orderTotal)
		}
		eligible = append(eligible, entry)
	}
	return eligible, nil
}

// ValidateCode checks a manually entered code. Codes are case-insensitive:
// the stored form is upper-case, so the input is upper-cased before the
// lookup.
func (e *Evaluator) ValidateCode(ctx context.Context, code string, orderTotal decimal.Decimal) (*remote.VoucherValidation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return e.vouchers.Validate(ctx, code, orderTotal)
}

// Discount computes the amount a voucher takes off the given total. A
// percentage voucher is capped at maxDiscount when one is set; a fixed
// voucher never discounts more than the total itself.
func Discount(v remote.Voucher, orderTotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch v.DiscountType {
	case enum.DiscountTypePercentage:
		d = orderTotal.Mul(v.DiscountValue).Div(oneHundred)
		if v.MaxDiscount != nil && d.GreaterThan(*v.MaxDiscount) {
			d = *v.MaxDiscount
		}
	case enum.DiscountTypeFixed:
		d = v.DiscountValue
	default:
		return decimal.Zero
	}
	if d.GreaterThan(orderTotal) {
		d = orderTotal
	}
	return d
}

// StillUsable reports whether an already-applied voucher survives an edit
// that changed the order total. Dropping below minOrderValue detaches it.
func StillUsable(v remote.Voucher, orderTotal decimal.Decimal) bool {
	return orderTotal.GreaterThanOrEqual(v.MinOrderValue)
}
