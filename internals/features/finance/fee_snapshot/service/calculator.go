// file: internals/features/finance/fee_snapshot/service/calculator.go
//
// Kalkulator tunggakan (pure). Dipakai promosi, pembayaran, list/export, dan
// endpoint outstanding. Satu definisi total, tidak ada varian kedua.
package service

import (
	"strings"

	"github.com/shopspring/decimal"

	model "edudesk_backend/internals/features/students/model"
)

// Outstanding = due(feeType) - Σ transaksi completed di tahun ajaran tsb, minimal 0.
// feeType dicocokkan case-insensitive terhadap transactions[].feeType.
func Outstanding(s *model.Student, feeType model.FeeType, academicYear string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	due := s.AllFee.Due(feeType)
	paid := Paid(s, feeType, academicYear)
	out := due.Sub(paid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Paid: jumlah transaksi completed untuk feeType + tahun ajaran.
func Paid(s *model.Student, feeType model.FeeType, academicYear string) decimal.Decimal {
	paid := decimal.Zero
	if s == nil {
		return paid
	}
	for _, tx := range s.Transactions {
		if !tx.IsCompleted() {
			continue
		}
		if tx.AcademicYear != academicYear {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(tx.FeeType), string(feeType)) {
			continue
		}
		paid = paid.Add(tx.Amount)
	}
	return paid
}

// TotalOutstanding: Σ outstanding jenis biaya berjalan + saldo bawaan (lastYear*).
func TotalOutstanding(s *model.Student) decimal.Decimal {
	return Compute(s).Total
}

type Breakdown struct {
	AcademicYear string                            `json:"academicYear"`
	Items        map[model.FeeType]decimal.Decimal `json:"items"`
	Total        decimal.Decimal                   `json:"total"`
}

// Compute menghitung outstanding per jenis biaya untuk tahun ajaran siswa.
func Compute(s *model.Student) Breakdown {
	b := Breakdown{Items: make(map[model.FeeType]decimal.Decimal, 6), Total: decimal.Zero}
	if s == nil {
		return b
	}
	b.AcademicYear = s.AcademicYear
	for _, t := range model.CurrentFeeTypes {
		v := Outstanding(s, t, s.AcademicYear)
		b.Items[t] = v
		b.Total = b.Total.Add(v)
	}
	// saldo bawaan sudah net (pembayaran carried langsung mengurangi allFee)
	for _, t := range []model.FeeType{model.FeeTypeLastYearBalance, model.FeeTypeLastYearTransport} {
		v := OutstandingFor(s, t)
		b.Items[t] = v
		b.Total = b.Total.Add(v)
	}
	return b
}

// OutstandingFor dipakai handler: carried fee -> nilai allFee, selain itu Outstanding.
func OutstandingFor(s *model.Student, feeType model.FeeType) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	if feeType.IsCarried() {
		v := s.AllFee.Due(feeType)
		if v.IsNegative() {
			return decimal.Zero
		}
		return v
	}
	return Outstanding(s, feeType, s.AcademicYear)
}

// Pending: jumlah transaksi pending (online belum settle) untuk feeType.
// Jenis biaya berjalan hanya dihitung di tahun ajaran siswa; saldo bawaan semua tahun.
func Pending(s *model.Student, feeType model.FeeType) decimal.Decimal {
	sum := decimal.Zero
	if s == nil {
		return sum
	}
	for _, tx := range s.Transactions {
		if tx.Status != model.TransactionPending {
			continue
		}
		if !feeType.IsCarried() && tx.AcademicYear != s.AcademicYear {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(tx.FeeType), string(feeType)) {
			continue
		}
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// Payable: outstanding dikurangi yang sedang menunggu settle, minimal 0.
func Payable(s *model.Student, feeType model.FeeType) decimal.Decimal {
	v := OutstandingFor(s, feeType).Sub(Pending(s, feeType))
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
