// file: internals/features/students/model/fee_model.go
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Nominal disimpan sebagai angka JSON (bukan string) agar filter/sort di backend konsisten.
	decimal.MarshalJSONWithoutQuotes = true
}

/* =======================================================================
   Fee types
======================================================================= */

type FeeType string

const (
	FeeTypeSchool    FeeType = "schoolFee"
	FeeTypeTransport FeeType = "transportFee"
	FeeTypeHostel    FeeType = "hostelFee"
	FeeTypeMess      FeeType = "messFee"

	// saldo bawaan tahun lalu (dibayar langsung mengurangi allFee)
	FeeTypeLastYearBalance   FeeType = "lastYearBalanceFee"
	FeeTypeLastYearTransport FeeType = "lastYearTransportFee"
)

// CurrentFeeTypes: jenis biaya tahun berjalan yang dihitung dari transaksi.
var CurrentFeeTypes = []FeeType{FeeTypeSchool, FeeTypeTransport, FeeTypeHostel, FeeTypeMess}

func (t FeeType) IsCarried() bool {
	return t == FeeTypeLastYearBalance || t == FeeTypeLastYearTransport
}

// ParseFeeType menerima variasi penulisan ("TransportFee", "transportfee", ...).
func ParseFeeType(s string) (FeeType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range append(append([]FeeType(nil), CurrentFeeTypes...), FeeTypeLastYearBalance, FeeTypeLastYearTransport) {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

/* =======================================================================
   Fee structure
======================================================================= */

type SchoolFees struct {
	AdmissionFee decimal.Decimal `json:"AdmissionFee"`
	TutionFee    decimal.Decimal `json:"TutionFee"`
	Total        decimal.Decimal `json:"total"`
}

// AllFee: snapshot biaya siswa untuk tahun ajaran berjalan + saldo bawaan.
type AllFee struct {
	LastYearBalanceFee   decimal.Decimal `json:"lastYearBalanceFee"`
	LastYearTransportFee decimal.Decimal `json:"lastYearTransportFee"`

	SchoolFees          SchoolFees      `json:"schoolFees"`
	TuitionFeesDiscount decimal.Decimal `json:"tuitionFeesDiscount"`

	TransportFee         decimal.Decimal `json:"transportFee"`
	TransportFeeDiscount decimal.Decimal `json:"transportFeeDiscount"`

	HostelFee         decimal.Decimal `json:"hostelFee"`
	HostelFeeDiscount decimal.Decimal `json:"hostelFeeDiscount"`

	MessFee         decimal.Decimal `json:"messFee"`
	MessFeeDiscount decimal.Decimal `json:"messFeeDiscount"`
}

// Due: nominal tagihan untuk satu jenis biaya.
func (f AllFee) Due(t FeeType) decimal.Decimal {
	switch t {
	case FeeTypeSchool:
		return f.SchoolFees.Total
	case FeeTypeTransport:
		return f.TransportFee
	case FeeTypeHostel:
		return f.HostelFee
	case FeeTypeMess:
		return f.MessFee
	case FeeTypeLastYearBalance:
		return f.LastYearBalanceFee
	case FeeTypeLastYearTransport:
		return f.LastYearTransportFee
	}
	return decimal.Zero
}

// Normalize menjaga invariant total = AdmissionFee + TutionFee.
func (f *AllFee) Normalize() {
	f.SchoolFees.Total = f.SchoolFees.AdmissionFee.Add(f.SchoolFees.TutionFee)
}

/* =======================================================================
   Transactions
======================================================================= */

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeOnline PaymentMode = "online"
)

// Transaction immutable setelah dibuat; hanya status pending -> completed|failed yang boleh berubah.
type Transaction struct {
	ID           string            `json:"id" validate:"required"`
	AcademicYear string            `json:"academicYear" validate:"required"`
	FeeType      string            `json:"feeType" validate:"required"`
	Amount       decimal.Decimal   `json:"amount"`
	Status       TransactionStatus `json:"status" validate:"oneof=pending completed failed"`
	PaymentMode  PaymentMode       `json:"paymentMode,omitempty"`
	ReceiptNo    string            `json:"receiptNo,omitempty"`
	OrderID      string            `json:"orderId,omitempty"`
	Note         string            `json:"note,omitempty"`
	FeeSnapshot  *AllFee           `json:"feeSnapshot,omitempty"`
	// kelebihan bayar saat settle (order online yang tumpang tindih)
	Overpaid     *decimal.Decimal  `json:"overpaid,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

func (t Transaction) IsCompleted() bool { return t.Status == TransactionCompleted }
