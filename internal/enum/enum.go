package enum

// ── Order lifecycle (lowercase on the wire, matching the order service) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
	PaymentStatusFailed = "FAILED"
)

const (
	PaymentMethodCOD     = "COD"
	PaymentMethodGateway = "GATEWAY"
)

// ── Roles (mutually exclusive, drive route visibility) ──

const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
	RoleAdmin    = "ADMIN"
)

// ── Voucher discount types ──

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)
