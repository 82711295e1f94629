// file: internals/features/finance/fee_schedules/model/fee_schedule_model.go
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"edudesk_backend/internals/store"
)

const (
	FeeScheduleCollection    = "fee_schedules"
	FeeScheduleSchemaVersion = 1

	// tier tanpa potongan; dipakai sebagai "originalFees" dan fallback
	TierStandard = "standard"
	TypeRegular  = "regular"
)

// FeeSchedule: tarif per (tahun ajaran, kelas, tipe siswa, tier diskon) dalam satu tenant.
type FeeSchedule struct {
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id" validate:"required"`
	TenantCode    string `json:"tenantCode" validate:"required"`

	AcademicYear string `json:"academicYear" validate:"required"`
	ClassName    string `json:"className" validate:"required"`
	StudentType  string `json:"studentType" validate:"required"`
	Tier         string `json:"tier" validate:"required"`

	AdmissionFee decimal.Decimal `json:"AdmissionFee"`
	TutionFee    decimal.Decimal `json:"TutionFee"`
	Note         string          `json:"note,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key: identitas unik schedule di dalam tenant.
func (f FeeSchedule) Key() string {
	return strings.Join([]string{
		strings.ToLower(f.AcademicYear),
		strings.ToLower(f.ClassName),
		strings.ToLower(f.StudentType),
		strings.ToLower(f.Tier),
	}, "|")
}

func NormalizeFeeSchedule(f *FeeSchedule) {
	f.SchemaVersion = FeeScheduleSchemaVersion
	f.AcademicYear = strings.TrimSpace(f.AcademicYear)
	f.ClassName = strings.TrimSpace(f.ClassName)
	f.StudentType = strings.TrimSpace(f.StudentType)
	f.Tier = strings.ToLower(strings.TrimSpace(f.Tier))
	if f.StudentType == "" {
		f.StudentType = TypeRegular
	}
	if f.Tier == "" {
		f.Tier = TierStandard
	}
}

func NewFeeScheduleCollection(b store.Backend) *store.Collection[FeeSchedule] {
	return store.NewCollection(b, FeeScheduleCollection,
		store.WithNormalizer(NormalizeFeeSchedule),
	)
}
