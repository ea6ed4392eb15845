package voucher_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderfood/api/internal/enum"
	"github.com/orderfood/api/internal/remote"
	"github.com/orderfood/api/internal/voucher"
)

type stubLister struct {
	vouchers  []remote.Voucher
	validated *remote.VoucherValidation
	lastCode  string
}

func (s *stubLister) ListValid(_ context.Context) ([]remote.Voucher, error) {
	return s.vouchers, nil
}

func (s *stubLister) Validate(_ context.Context, code string, _ decimal.Decimal) (*remote.VoucherValidation, error) {
	s.lastCode = code
	return s.validated, nil
}

func percentVoucher(id int64, code string, percent, minOrder int64, maxDiscount *int64) remote.Voucher {
	v := remote.Voucher{
		ID:            id,
		Code:          code,
		DiscountType:  enum.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(percent),
		MinOrderValue: decimal.NewFromInt(minOrder),
		Quantity:      10,
		Active:        true,
	}
	if maxDiscount != nil {
		d := decimal.NewFromInt(*maxDiscount)
		v.MaxDiscount = &d
	}
	return v
}

func TestDiscountPercentageCapped(t *testing.T) {
	limit := int64(30000)
	v := percentVoucher(1, "SAVE20", 20, 100000, &limit)

	// 20% of 200,000 is 40,000, capped at 30,000.
	got := voucher.Discount(v, decimal.NewFromInt(200000))
	assert.True(t, got.Equal(decimal.NewFromInt(30000)), "got %s", got)

	// 20% of 120,000 is 24,000, under the cap.
	got = voucher.Discount(v, decimal.NewFromInt(120000))
	assert.True(t, got.Equal(decimal.NewFromInt(24000)), "got %s", got)
}

func TestDiscountPercentageUncapped(t *testing.T) {
	v := percentVoucher(1, "SAVE10", 10, 0, nil)
	got := voucher.Discount(v, decimal.NewFromInt(250000))
	assert.True(t, got.Equal(decimal.NewFromInt(25000)), "got %s", got)
}

func TestDiscountFixedNeverExceedsTotal(t *testing.T) {
	v := remote.Voucher{
		ID:            2,
		Code:          "MINUS15K",
		DiscountType:  enum.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(15000),
	}
	got := voucher.Discount(v, decimal.NewFromInt(50000))
	assert.True(t, got.Equal(decimal.NewFromInt(15000)), "got %s", got)

	got = voucher.Discount(v, decimal.NewFromInt(10000))
	assert.True(t, got.Equal(decimal.NewFromInt(10000)), "got %s", got)
}

func TestDiscountUnknownTypeIsZero(t *testing.T) {
	v := remote.Voucher{DiscountType: "bogo", DiscountValue: decimal.NewFromInt(10)}
	assert.True(t, voucher.Discount(v, decimal.NewFromInt(100000)).IsZero())
}

func TestListEligibleSplitsByMinimum(t *testing.T) {
	limit := int64(30000)
	lister := &stubLister{vouchers: []remote.Voucher{
		percentVoucher(1, "SAVE20", 20, 100000, &limit),
		percentVoucher(2, "BIGSPENDER", 25, 500000, nil),
	}}
	eval := voucher.NewEvaluator(lister)

	eligible, err := eval.ListEligible(context.Background(), decimal.NewFromInt(200000))
	require.NoError(t, err)
	require.Len(t, eligible, 2)

	assert.True(t, eligible[0].Usable)
	assert.True(t, eligible[0].Discount.Equal(decimal.NewFromInt(30000)), "got %s", eligible[0].Discount)

	assert.False(t, eligible[1].Usable)
	assert.True(t, eligible[1].Shortfall.Equal(decimal.NewFromInt(300000)), "got %s", eligible[1].Shortfall)
}

func TestValidateCodeUppercases(t *testing.T) {
	lister := &stubLister{validated: &remote.VoucherValidation{Valid: true}}
	eval := voucher.NewEvaluator(lister)

	_, err := eval.ValidateCode(context.Background(), "  save20 ", decimal.NewFromInt(150000))
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", lister.lastCode)
}

func TestStillUsable(t *testing.T) {
	v := percentVoucher(1, "SAVE20", 20, 100000, nil)

	assert.True(t, voucher.StillUsable(v, decimal.NewFromInt(100000)))
	assert.True(t, voucher.StillUsable(v, decimal.NewFromInt(150000)))
	assert.False(t, voucher.StillUsable(v, decimal.NewFromInt(99999)))
}
