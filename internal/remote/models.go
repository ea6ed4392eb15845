package remote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire models for the order collection service. Field names follow the
// service's JSON contract; amounts are decoded with shopspring/decimal so no
// float arithmetic happens on money.

type Order struct {
	ID            int64           `json:"idOrder"`
	OrderDate     time.Time       `json:"orderDate"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	Customer      *Customer       `json:"customer,omitempty"`
	Lines         []OrderLine     `json:"orderDetails"`
	Voucher       *AppliedVoucher `json:"orderVoucher,omitempty"`
}

type OrderLine struct {
	ID       int64           `json:"idOrderDetail"`
	Quantity int             `json:"quantity"`
	Note     string          `json:"note"`
	SubTotal decimal.Decimal `json:"subTotal"`
	Product  *Product        `json:"product,omitempty"`
}

type Product struct {
	ID    int64           `json:"idProduct"`
	Name  string          `json:"nameProduct"`
	Price decimal.Decimal `json:"priceProduct"`
}

type Customer struct {
	ID    int64  `json:"idCustomer"`
	Name  string `json:"nameCustomer,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type Voucher struct {
	ID            int64            `json:"idVoucher"`
	Code          string           `json:"code"`
	DiscountType  string           `json:"discountType"`
	DiscountValue decimal.Decimal  `json:"discountValue"`
	MinOrderValue decimal.Decimal  `json:"minOrderValue"`
	MaxDiscount   *decimal.Decimal `json:"maxDiscount,omitempty"`
	Quantity      int              `json:"quantity"`
	StartDate     string           `json:"startDate"`
	EndDate       string           `json:"endDate"`
	Active        bool             `json:"status"`
}

// AppliedVoucher links one order to one voucher with the discount amount
// snapshotted at application time.
type AppliedVoucher struct {
	ID             int64           `json:"idOrderVoucher"`
	Voucher        *Voucher        `json:"voucher,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// VoucherValidation is the voucher service's authoritative answer for one
// code against one order total. The discount figure is never recomputed
// locally, only re-displayed.
type VoucherValidation struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message"`
	Voucher  *Voucher        `json:"voucher,omitempty"`
}

// GatewayResult is the payment bridge's verdict on a gateway return
// callback.
type GatewayResult struct {
	Status        string          `json:"status"`
	OrderID       int64           `json:"orderId"`
	TransactionNo string          `json:"transactionNo"`
	Amount        decimal.Decimal `json:"amount"`
	Message       string          `json:"message"`
}
