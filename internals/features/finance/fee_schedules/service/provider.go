// file: internals/features/finance/fee_schedules/service/provider.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	feeModel "edudesk_backend/internals/features/finance/fee_schedules/model"
	studentModel "edudesk_backend/internals/features/students/model"
	"edudesk_backend/internals/store"
)

var ErrScheduleNotFound = errors.New("fee schedule not found")

type FeeAmounts struct {
	AdmissionFee decimal.Decimal `json:"AdmissionFee"`
	TutionFee    decimal.Decimal `json:"TutionFee"`
}

func (a FeeAmounts) Total() decimal.Decimal { return a.AdmissionFee.Add(a.TutionFee) }

// FeeQuote: tarif setelah diskon tier siswa + tarif asli (tier standard).
type FeeQuote struct {
	StudentFees  FeeAmounts `json:"studentFees"`
	OriginalFees FeeAmounts `json:"originalFees"`
}

// Discount = (original admission + tuition) - (student admission + tuition).
func (q FeeQuote) Discount() decimal.Decimal {
	return q.OriginalFees.Total().Sub(q.StudentFees.Total())
}

// Provider membaca koleksi fee_schedules.
type Provider struct {
	schedules *store.Collection[feeModel.FeeSchedule]
}

func NewProvider(schedules *store.Collection[feeModel.FeeSchedule]) *Provider {
	return &Provider{schedules: schedules}
}

// Lookup: tier siswa (fallback standard) + tier standard untuk kelas/tahun target.
func (p *Provider) Lookup(ctx context.Context, tenant, className, academicYear string, s *studentModel.Student) (FeeQuote, error) {
	studentType := feeModel.TypeRegular
	tier := feeModel.TierStandard
	if s != nil {
		if t := strings.TrimSpace(s.StudentType); t != "" {
			studentType = t
		}
		if t := strings.ToLower(strings.TrimSpace(s.DiscountTier)); t != "" {
			tier = t
		}
	}

	rows, err := p.schedules.FindAll(ctx, tenant,
		store.Filter{Field: "academicYear", Value: academicYear},
		store.Filter{Field: "className", Value: className},
	)
	if err != nil {
		return FeeQuote{}, err
	}

	original, ok := pick(rows, studentType, feeModel.TierStandard)
	if !ok {
		return FeeQuote{}, fmt.Errorf("%w: class %s year %s type %s", ErrScheduleNotFound, className, academicYear, studentType)
	}
	// tier dicari pada tipe yang sama dengan tarif asli, supaya diskon tidak lintas tipe
	actual, ok := match(rows, original.StudentType, tier)
	if !ok {
		actual = original
	}
	return FeeQuote{
		StudentFees:  FeeAmounts{AdmissionFee: actual.AdmissionFee, TutionFee: actual.TutionFee},
		OriginalFees: FeeAmounts{AdmissionFee: original.AdmissionFee, TutionFee: original.TutionFee},
	}, nil
}

// pick: cocokkan studentType lalu fallback ke tipe regular.
func pick(rows []feeModel.FeeSchedule, studentType, tier string) (feeModel.FeeSchedule, bool) {
	for _, st := range []string{studentType, feeModel.TypeRegular} {
		if r, ok := match(rows, st, tier); ok {
			return r, true
		}
	}
	return feeModel.FeeSchedule{}, false
}

func match(rows []feeModel.FeeSchedule, studentType, tier string) (feeModel.FeeSchedule, bool) {
	for _, r := range rows {
		if strings.EqualFold(r.StudentType, studentType) && strings.EqualFold(r.Tier, tier) {
			return r, true
		}
	}
	return feeModel.FeeSchedule{}, false
}
