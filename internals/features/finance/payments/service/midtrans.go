package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	model "edudesk_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Snap gateway
========================================================= */

type SnapRequest struct {
	OrderID  string
	Amount   int64
	ItemID   string
	ItemName string
	Name     string
	Email    string
	Phone    string
	Finish   string
}

// SnapGateway: pembuat token snap (fake di tes).
type SnapGateway interface {
	CreateSnap(ctx context.Context, req SnapRequest) (token, redirectURL string, err error)
}

type MidtransSnap struct {
	client snap.Client
}

// NewMidtransSnap: useProduction=false -> Sandbox.
func NewMidtransSnap(serverKey string, useProduction bool) *MidtransSnap {
	m := &MidtransSnap{}
	if useProduction {
		m.client.New(serverKey, midtrans.Production)
	} else {
		m.client.New(serverKey, midtrans.Sandbox)
	}
	return m
}

func (m *MidtransSnap) CreateSnap(_ context.Context, r SnapRequest) (string, string, error) {
	if r.Amount <= 0 {
		return "", "", errors.New("invalid gross amount")
	}
	first, last := splitName(r.Name)
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  r.OrderID,
			GrossAmt: r.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: r.Email,
			Phone: r.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       r.ItemID,
				Price:    r.Amount,
				Qty:      1,
				Name:     truncate(r.ItemName, 50),
				Category: "Fee",
			},
		},
	}
	if r.Finish != "" {
		req.Callbacks = &snap.Callbacks{Finish: r.Finish}
	}

	resp, merr := m.client.CreateTransaction(req)
	if merr != nil {
		return "", "", errors.New("midtrans: " + merr.Message)
	}
	return resp.Token, resp.RedirectURL, nil
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if i := strings.LastIndex(full, " "); i > 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}

// truncate: potong per rune, bukan per byte.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

/* =========================================================
   Notification (webhook)
========================================================= */

type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, failure, refund
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// Signature = SHA512(order_id + status_code + gross_amount + serverKey), hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func VerifySignature(n Notification, serverKey string) bool {
	if serverKey == "" || n.SignatureKey == "" {
		return false
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// MapTransactionStatus: status gateway -> status order. decided=false berarti belum final.
func MapTransactionStatus(transactionStatus, fraudStatus string) (model.OrderStatus, bool) {
	switch strings.ToLower(transactionStatus) {
	case "settlement":
		return model.OrderCompleted, true
	case "capture":
		switch strings.ToLower(fraudStatus) {
		case "", "accept":
			return model.OrderCompleted, true
		case "challenge":
			return model.OrderPending, false
		}
		return model.OrderFailed, true
	case "deny", "cancel", "expire", "failure":
		return model.OrderFailed, true
	}
	return model.OrderPending, false
}
