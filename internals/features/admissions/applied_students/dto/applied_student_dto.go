// file: internals/features/admissions/applied_students/dto/applied_student_dto.go
package dto

import (
	"strings"
	"time"

	model "edudesk_backend/internals/features/admissions/applied_students/model"
	studentModel "edudesk_backend/internals/features/students/model"
)

type ApplyRequest struct {
	FirstName      string `json:"firstName" validate:"required,max=100"`
	MiddleName     string `json:"middleName" validate:"omitempty,max=100"`
	LastName       string `json:"lastName" validate:"omitempty,max=100"`
	Gender         string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth    string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	GuardianName   string `json:"guardianName" validate:"omitempty,max=150"`
	Phone          string `json:"phone" validate:"required,min=6,max=30"`
	Email          string `json:"email" validate:"omitempty,email"`
	Address        string `json:"address" validate:"omitempty,max=500"`
	PreviousSchool string `json:"previousSchool" validate:"omitempty,max=200"`
	ClassApplied   string `json:"classApplied" validate:"required,max=50"`
	Course         string `json:"course" validate:"omitempty,max=100"`
	AcademicYear   string `json:"academicYear" validate:"omitempty,max=20"`
	StudentType    string `json:"studentType" validate:"omitempty,max=30"`
}

func (r ApplyRequest) ToModel() model.AppliedStudent {
	return model.AppliedStudent{
		FirstName:      r.FirstName,
		MiddleName:     r.MiddleName,
		LastName:       r.LastName,
		Gender:         r.Gender,
		DateOfBirth:    r.DateOfBirth,
		GuardianName:   strings.TrimSpace(r.GuardianName),
		Phone:          r.Phone,
		Email:          strings.TrimSpace(r.Email),
		Address:        strings.TrimSpace(r.Address),
		PreviousSchool: strings.TrimSpace(r.PreviousSchool),
		ClassApplied:   r.ClassApplied,
		Course:         strings.TrimSpace(r.Course),
		AcademicYear:   strings.TrimSpace(r.AcademicYear),
		StudentType:    strings.TrimSpace(r.StudentType),
	}
}

type ReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Note     string `json:"note" validate:"omitempty,max=500"`
}

type AdmitRequest struct {
	Division string               `json:"division" validate:"omitempty,max=50"`
	AllFee   *studentModel.AllFee `json:"allFee"`
}

type ApplicantResponse struct {
	ID             string                  `json:"id"`
	ApplicationNo  string                  `json:"applicationNo"`
	FullName       string                  `json:"fullName"`
	FirstName      string                  `json:"firstName"`
	MiddleName     string                  `json:"middleName,omitempty"`
	LastName       string                  `json:"lastName,omitempty"`
	Gender         string                  `json:"gender,omitempty"`
	DateOfBirth    string                  `json:"dateOfBirth,omitempty"`
	GuardianName   string                  `json:"guardianName,omitempty"`
	Phone          string                  `json:"phone"`
	Email          string                  `json:"email,omitempty"`
	Address        string                  `json:"address,omitempty"`
	PreviousSchool string                  `json:"previousSchool,omitempty"`
	ClassApplied   string                  `json:"classApplied"`
	Course         string                  `json:"course,omitempty"`
	AcademicYear   string                  `json:"academicYear"`
	Status         model.ApplicationStatus `json:"status"`
	ReviewNote     string                  `json:"reviewNote,omitempty"`
	ReviewedAt     *time.Time              `json:"reviewedAt,omitempty"`
	StudentID      string                  `json:"studentId,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
}

func FromModel(a model.AppliedStudent) ApplicantResponse {
	return ApplicantResponse{
		ID:             a.ID,
		ApplicationNo:  a.ApplicationNo,
		FullName:       a.FullName(),
		FirstName:      a.FirstName,
		MiddleName:     a.MiddleName,
		LastName:       a.LastName,
		Gender:         a.Gender,
		DateOfBirth:    a.DateOfBirth,
		GuardianName:   a.GuardianName,
		Phone:          a.Phone,
		Email:          a.Email,
		Address:        a.Address,
		PreviousSchool: a.PreviousSchool,
		ClassApplied:   a.ClassApplied,
		Course:         a.Course,
		AcademicYear:   a.AcademicYear,
		Status:         a.Status,
		ReviewNote:     a.ReviewNote,
		ReviewedAt:     a.ReviewedAt,
		StudentID:      a.StudentID,
		CreatedAt:      a.CreatedAt,
	}
}

func FromModels(list []model.AppliedStudent) []ApplicantResponse {
	out := make([]ApplicantResponse, 0, len(list))
	for _, a := range list {
		out = append(out, FromModel(a))
	}
	return out
}

// PublicReceipt: yang dikembalikan ke pendaftar (tanpa data review).
type PublicReceipt struct {
	ApplicationNo string                  `json:"applicationNo"`
	FullName      string                  `json:"fullName"`
	ClassApplied  string                  `json:"classApplied"`
	AcademicYear  string                  `json:"academicYear"`
	Status        model.ApplicationStatus `json:"status"`
}
