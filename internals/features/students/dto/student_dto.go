// file: internals/features/students/dto/student_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	feeCalc "edudesk_backend/internals/features/finance/fee_snapshot/service"
	model "edudesk_backend/internals/features/students/model"
	uploadModel "edudesk_backend/internals/features/uploads/model"
)

/* =======================================================================
   Create
======================================================================= */

type StudentCreateRequest struct {
	AdmissionNo  string `json:"admissionNo" validate:"omitempty,max=50"`
	FirstName    string `json:"firstName" validate:"required,max=100"`
	MiddleName   string `json:"middleName" validate:"omitempty,max=100"`
	LastName     string `json:"lastName" validate:"omitempty,max=100"`
	Gender       string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth  string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	GuardianName string `json:"guardianName" validate:"omitempty,max=150"`
	Phone        string `json:"phone" validate:"omitempty,max=30"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address" validate:"omitempty,max=500"`

	Class        string `json:"class" validate:"required,max=50"`
	Division     string `json:"division" validate:"omitempty,max=50"`
	Course       string `json:"course" validate:"omitempty,max=100"`
	AcademicYear string `json:"academicYear" validate:"omitempty,max=20"`
	StudentType  string `json:"studentType" validate:"omitempty,max=30"`
	DiscountTier string `json:"discountTier" validate:"omitempty,max=30"`

	// nil = ambil dari fee schedule
	AllFee *model.AllFee `json:"allFee"`
}

func (r StudentCreateRequest) ToModel() model.Student {
	st := model.Student{
		AdmissionNo:  strings.TrimSpace(r.AdmissionNo),
		FirstName:    r.FirstName,
		MiddleName:   r.MiddleName,
		LastName:     r.LastName,
		Gender:       r.Gender,
		DateOfBirth:  r.DateOfBirth,
		GuardianName: strings.TrimSpace(r.GuardianName),
		Phone:        strings.TrimSpace(r.Phone),
		Email:        strings.TrimSpace(r.Email),
		Address:      strings.TrimSpace(r.Address),
		Class:        r.Class,
		Division:     r.Division,
		Course:       strings.TrimSpace(r.Course),
		AcademicYear: strings.TrimSpace(r.AcademicYear),
		StudentType:  strings.TrimSpace(r.StudentType),
		DiscountTier: strings.ToLower(strings.TrimSpace(r.DiscountTier)),
	}
	if r.AllFee != nil {
		st.AllFee = *r.AllFee
	}
	return st
}

// NegativeFee: nama field biaya yang negatif ("" jika aman).
func NegativeFee(f model.AllFee) string {
	checks := []struct {
		name string
		v    decimal.Decimal
	}{
		{"lastYearBalanceFee", f.LastYearBalanceFee},
		{"lastYearTransportFee", f.LastYearTransportFee},
		{"schoolFees.AdmissionFee", f.SchoolFees.AdmissionFee},
		{"schoolFees.TutionFee", f.SchoolFees.TutionFee},
		{"transportFee", f.TransportFee},
		{"hostelFee", f.HostelFee},
		{"messFee", f.MessFee},
	}
	for _, c := range checks {
		if c.v.IsNegative() {
			return "allFee." + c.name
		}
	}
	return ""
}

/* =======================================================================
   Update (PATCH)
======================================================================= */

type FeePatch struct {
	LastYearBalanceFee   *decimal.Decimal `json:"lastYearBalanceFee"`
	LastYearTransportFee *decimal.Decimal `json:"lastYearTransportFee"`
	AdmissionFee         *decimal.Decimal `json:"AdmissionFee"`
	TutionFee            *decimal.Decimal `json:"TutionFee"`
	TuitionFeesDiscount  *decimal.Decimal `json:"tuitionFeesDiscount"`
	HostelFee            *decimal.Decimal `json:"hostelFee"`
	HostelFeeDiscount    *decimal.Decimal `json:"hostelFeeDiscount"`
	MessFee              *decimal.Decimal `json:"messFee"`
	MessFeeDiscount      *decimal.Decimal `json:"messFeeDiscount"`
}

// Negative: nama field patch yang negatif ("" jika aman).
func (p *FeePatch) Negative() string {
	if p == nil {
		return ""
	}
	for name, v := range map[string]*decimal.Decimal{
		"lastYearBalanceFee":      p.LastYearBalanceFee,
		"lastYearTransportFee":    p.LastYearTransportFee,
		"schoolFees.AdmissionFee": p.AdmissionFee,
		"schoolFees.TutionFee":    p.TutionFee,
		"tuitionFeesDiscount":     p.TuitionFeesDiscount,
		"hostelFee":               p.HostelFee,
		"hostelFeeDiscount":       p.HostelFeeDiscount,
		"messFee":                 p.MessFee,
		"messFeeDiscount":         p.MessFeeDiscount,
	} {
		if v != nil && v.IsNegative() {
			return "allFee." + name
		}
	}
	return ""
}

type StudentUpdateRequest struct {
	AdmissionNo  *string `json:"admissionNo" validate:"omitempty,max=50"`
	FirstName    *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	MiddleName   *string `json:"middleName" validate:"omitempty,max=100"`
	LastName     *string `json:"lastName" validate:"omitempty,max=100"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth  *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	GuardianName *string `json:"guardianName" validate:"omitempty,max=150"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Address      *string `json:"address" validate:"omitempty,max=500"`
	Class        *string `json:"class" validate:"omitempty,min=1,max=50"`
	Division     *string `json:"division" validate:"omitempty,max=50"`
	Course       *string `json:"course" validate:"omitempty,max=100"`
	StudentType  *string `json:"studentType" validate:"omitempty,max=30"`
	DiscountTier *string `json:"discountTier" validate:"omitempty,max=30"`

	AllFee *FeePatch `json:"allFee"`
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setDec(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func (r StudentUpdateRequest) Apply(s *model.Student) {
	set(&s.AdmissionNo, r.AdmissionNo)
	set(&s.FirstName, r.FirstName)
	set(&s.MiddleName, r.MiddleName)
	set(&s.LastName, r.LastName)
	set(&s.Gender, r.Gender)
	set(&s.DateOfBirth, r.DateOfBirth)
	set(&s.GuardianName, r.GuardianName)
	set(&s.Phone, r.Phone)
	set(&s.Email, r.Email)
	set(&s.Address, r.Address)
	set(&s.Class, r.Class)
	set(&s.Division, r.Division)
	set(&s.Course, r.Course)
	set(&s.StudentType, r.StudentType)
	if r.DiscountTier != nil {
		s.DiscountTier = strings.ToLower(strings.TrimSpace(*r.DiscountTier))
	}
	if p := r.AllFee; p != nil {
		f := &s.AllFee
		setDec(&f.LastYearBalanceFee, p.LastYearBalanceFee)
		setDec(&f.LastYearTransportFee, p.LastYearTransportFee)
		setDec(&f.SchoolFees.AdmissionFee, p.AdmissionFee)
		setDec(&f.SchoolFees.TutionFee, p.TutionFee)
		setDec(&f.TuitionFeesDiscount, p.TuitionFeesDiscount)
		setDec(&f.HostelFee, p.HostelFee)
		setDec(&f.HostelFeeDiscount, p.HostelFeeDiscount)
		setDec(&f.MessFee, p.MessFee)
		setDec(&f.MessFeeDiscount, p.MessFeeDiscount)
	}
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new current inactive"`
}

type TransportRequest struct {
	BusPlate             string           `json:"busPlate" validate:"omitempty,max=30"`
	BusStop              string           `json:"busStop" validate:"required_with=BusPlate,max=100"`
	TransportFee         *decimal.Decimal `json:"transportFee"`
	TransportFeeDiscount decimal.Decimal  `json:"transportFeeDiscount"`
}

/* =======================================================================
   Response
======================================================================= */

// StudentListItem: baris list/export (tanpa transaksi & dokumen).
type StudentListItem struct {
	ID               string              `json:"id"`
	FeeID            string              `json:"feeId,omitempty"`
	AdmissionNo      string              `json:"admissionNo,omitempty"`
	FullName         string              `json:"fullName"`
	Class            string              `json:"class"`
	Division         string              `json:"division,omitempty"`
	AcademicYear     string              `json:"academicYear"`
	Status           model.StudentStatus `json:"status"`
	Phone            string              `json:"phone,omitempty"`
	BusPlate         string              `json:"busPlate,omitempty"`
	BusStop          string              `json:"busStop,omitempty"`
	AvatarURL        string              `json:"avatarUrl,omitempty"`
	TotalOutstanding decimal.Decimal     `json:"totalOutstanding"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

func ToListItem(s model.Student) StudentListItem {
	out := StudentListItem{
		ID:               s.ID,
		FeeID:            s.FeeID,
		AdmissionNo:      s.AdmissionNo,
		FullName:         s.FullName(),
		Class:            s.Class,
		Division:         s.Division,
		AcademicYear:     s.AcademicYear,
		Status:           s.Status,
		Phone:            s.Phone,
		BusPlate:         s.BusPlate,
		BusStop:          s.BusStop,
		TotalOutstanding: feeCalc.TotalOutstanding(&s),
		UpdatedAt:        s.UpdatedAt,
	}
	if s.Avatar != nil {
		out.AvatarURL = s.Avatar.URL
	}
	return out
}

func ToListItems(list []model.Student) []StudentListItem {
	out := make([]StudentListItem, 0, len(list))
	for _, s := range list {
		out = append(out, ToListItem(s))
	}
	return out
}

// StudentDetail: dokumen lengkap + rincian tunggakan.
type StudentDetail struct {
	model.Student
	FullName    string            `json:"fullName"`
	Outstanding feeCalc.Breakdown `json:"outstanding"`
}

func ToDetail(s model.Student) StudentDetail {
	return StudentDetail{Student: s, FullName: s.FullName(), Outstanding: feeCalc.Compute(&s)}
}

type OutstandingResponse struct {
	StudentID    string            `json:"studentId"`
	FeeType      model.FeeType     `json:"feeType,omitempty"`
	Amount       decimal.Decimal   `json:"amount"`
	Breakdown    feeCalc.Breakdown `json:"breakdown"`
	AcademicYear string            `json:"academicYear"`
}

type DocumentResponse struct {
	Document  uploadModel.StoredFile   `json:"document"`
	Documents []uploadModel.StoredFile `json:"documents"`
}
