// file: internals/features/finance/payments/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	feeCalc "edudesk_backend/internals/features/finance/fee_snapshot/service"
	model "edudesk_backend/internals/features/finance/payments/model"
	studentModel "edudesk_backend/internals/features/students/model"
)

type CashPaymentRequest struct {
	FeeType string          `json:"feeType" validate:"required,max=40"`
	Amount  decimal.Decimal `json:"amount"`
	Note    string          `json:"note" validate:"omitempty,max=200"`
}

type OnlinePaymentRequest struct {
	FeeType   string          `json:"feeType" validate:"required,max=40"`
	Amount    decimal.Decimal `json:"amount"`
	Email     string          `json:"email" validate:"omitempty,email"`
	Phone     string          `json:"phone" validate:"omitempty,max=30"`
	Payer     string          `json:"payer" validate:"omitempty,max=100"`
	FinishURL string          `json:"finishUrl" validate:"omitempty,url"`
}

// PaymentResult: transaksi baru + tunggakan setelahnya.
type PaymentResult struct {
	StudentID   string                   `json:"studentId"`
	Transaction studentModel.Transaction `json:"transaction"`
	Outstanding feeCalc.Breakdown        `json:"outstanding"`
}

func ToPaymentResult(st studentModel.Student, tx studentModel.Transaction) PaymentResult {
	return PaymentResult{StudentID: st.ID, Transaction: tx, Outstanding: feeCalc.Compute(&st)}
}

type PaymentOrderResponse struct {
	OrderID       string            `json:"orderId"`
	StudentID     string            `json:"studentId"`
	TransactionID string            `json:"transactionId"`
	FeeType       string            `json:"feeType"`
	AcademicYear  string            `json:"academicYear"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        model.OrderStatus `json:"status"`
	SnapToken     string            `json:"snapToken,omitempty"`
	RedirectURL   string            `json:"redirectUrl,omitempty"`
	GatewayRef    string            `json:"gatewayRef,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
}

func FromOrder(o model.PaymentOrder) PaymentOrderResponse {
	out := PaymentOrderResponse{
		OrderID:       o.ID,
		StudentID:     o.StudentID,
		TransactionID: o.TransactionID,
		FeeType:       o.FeeType,
		AcademicYear:  o.AcademicYear,
		Amount:        o.Amount,
		Status:        o.Status,
		GatewayRef:    o.GatewayRef,
		CreatedAt:     o.CreatedAt,
		CompletedAt:   o.CompletedAt,
	}
	// token hanya berguna selama masih pending
	if o.Status == model.OrderPending {
		out.SnapToken = o.SnapToken
		out.RedirectURL = o.RedirectURL
	}
	return out
}

func FromOrders(list []model.PaymentOrder) []PaymentOrderResponse {
	out := make([]PaymentOrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, FromOrder(o))
	}
	return out
}
