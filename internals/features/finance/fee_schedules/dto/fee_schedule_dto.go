// file: internals/features/finance/fee_schedules/dto/fee_schedule_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	model "edudesk_backend/internals/features/finance/fee_schedules/model"
)

type FeeScheduleCreateRequest struct {
	AcademicYear string          `json:"academicYear" validate:"required,max=20"`
	ClassName    string          `json:"className" validate:"required,max=50"`
	StudentType  string          `json:"studentType" validate:"omitempty,max=30"`
	Tier         string          `json:"tier" validate:"omitempty,max=30"`
	AdmissionFee decimal.Decimal `json:"AdmissionFee"`
	TutionFee    decimal.Decimal `json:"TutionFee"`
	Note         string          `json:"note" validate:"omitempty,max=500"`
}

// NegativeField: nama field nominal yang negatif ("" jika aman).
func (r FeeScheduleCreateRequest) NegativeField() string {
	if r.AdmissionFee.IsNegative() {
		return "AdmissionFee"
	}
	if r.TutionFee.IsNegative() {
		return "TutionFee"
	}
	return ""
}

func (r FeeScheduleCreateRequest) ToModel(id, tenant string, now time.Time) model.FeeSchedule {
	return model.FeeSchedule{
		ID:           id,
		TenantCode:   tenant,
		AcademicYear: strings.TrimSpace(r.AcademicYear),
		ClassName:    strings.TrimSpace(r.ClassName),
		StudentType:  r.StudentType,
		Tier:         r.Tier,
		AdmissionFee: r.AdmissionFee,
		TutionFee:    r.TutionFee,
		Note:         strings.TrimSpace(r.Note),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PATCH: hanya nominal & catatan; kunci (tahun/kelas/tipe/tier) tidak bisa diubah.
type FeeScheduleUpdateRequest struct {
	AdmissionFee *decimal.Decimal `json:"AdmissionFee"`
	TutionFee    *decimal.Decimal `json:"TutionFee"`
	Note         *string          `json:"note" validate:"omitempty,max=500"`
}

func (r FeeScheduleUpdateRequest) NegativeField() string {
	if r.AdmissionFee != nil && r.AdmissionFee.IsNegative() {
		return "AdmissionFee"
	}
	if r.TutionFee != nil && r.TutionFee.IsNegative() {
		return "TutionFee"
	}
	return ""
}

func (r FeeScheduleUpdateRequest) Apply(m *model.FeeSchedule, now time.Time) {
	if r.AdmissionFee != nil {
		m.AdmissionFee = *r.AdmissionFee
	}
	if r.TutionFee != nil {
		m.TutionFee = *r.TutionFee
	}
	if r.Note != nil {
		m.Note = strings.TrimSpace(*r.Note)
	}
	m.UpdatedAt = now
}

type FeeScheduleResponse struct {
	ID           string          `json:"id"`
	AcademicYear string          `json:"academicYear"`
	ClassName    string          `json:"className"`
	StudentType  string          `json:"studentType"`
	Tier         string          `json:"tier"`
	AdmissionFee decimal.Decimal `json:"AdmissionFee"`
	TutionFee    decimal.Decimal `json:"TutionFee"`
	Total        decimal.Decimal `json:"total"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func FromModel(m model.FeeSchedule) FeeScheduleResponse {
	return FeeScheduleResponse{
		ID:           m.ID,
		AcademicYear: m.AcademicYear,
		ClassName:    m.ClassName,
		StudentType:  m.StudentType,
		Tier:         m.Tier,
		AdmissionFee: m.AdmissionFee,
		TutionFee:    m.TutionFee,
		Total:        m.AdmissionFee.Add(m.TutionFee),
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func FromModels(list []model.FeeSchedule) []FeeScheduleResponse {
	out := make([]FeeScheduleResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromModel(m))
	}
	return out
}
