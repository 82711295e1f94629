// file: internals/features/finance/payments/model/payment_order_model.go
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"edudesk_backend/internals/store"
)

const (
	PaymentOrderCollection    = "payment_orders"
	PaymentOrderSchemaVersion = 1

	GatewayMidtrans = "midtrans"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
)

func (s OrderStatus) Final() bool { return s == OrderCompleted || s == OrderFailed }

// GatewayEvent: jejak notifikasi gateway yang diterima untuk satu order.
type GatewayEvent struct {
	TransactionStatus string    `json:"transactionStatus"`
	FraudStatus       string    `json:"fraudStatus,omitempty"`
	StatusCode        string    `json:"statusCode,omitempty"`
	GatewayRef        string    `json:"gatewayRef,omitempty"`
	Applied           bool      `json:"applied"`
	ReceivedAt        time.Time `json:"receivedAt"`
}

// PaymentOrder memetakan order_id gateway -> transaksi siswa.
// Disimpan di store.GlobalTenant karena webhook datang tanpa konteks tenant.
type PaymentOrder struct {
	SchemaVersion int             `json:"schemaVersion"`
	ID            string          `json:"id" validate:"required"` // = order_id
	TenantCode    string          `json:"tenantCode" validate:"required"`
	StudentID     string          `json:"studentId" validate:"required"`
	TransactionID string          `json:"transactionId" validate:"required"`
	FeeType       string          `json:"feeType" validate:"required"`
	AcademicYear  string          `json:"academicYear" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Gateway       string          `json:"gateway"`
	Status        OrderStatus     `json:"status" validate:"oneof=pending completed failed"`

	SnapToken   string `json:"snapToken,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	GatewayRef  string `json:"gatewayRef,omitempty"`

	Events []GatewayEvent `json:"events,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func NormalizePaymentOrder(o *PaymentOrder) {
	o.SchemaVersion = PaymentOrderSchemaVersion
	if o.Gateway == "" {
		o.Gateway = GatewayMidtrans
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
}

func NewPaymentOrderCollection(b store.Backend) *store.Collection[PaymentOrder] {
	return store.NewCollection(b, PaymentOrderCollection,
		store.WithNormalizer(NormalizePaymentOrder),
	)
}
