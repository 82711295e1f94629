// file: internals/features/admissions/applied_students/model/applied_student_model.go
package model

import (
	"strings"
	"time"

	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

const (
	AppliedStudentCollection    = "applied_students"
	AppliedStudentSchemaVersion = 1
)

type ApplicationStatus string

const (
	ApplicationApplied  ApplicationStatus = "applied"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
	ApplicationAdmitted ApplicationStatus = "admitted"
)

type AppliedStudent struct {
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id" validate:"required"`
	TenantCode    string `json:"tenantCode" validate:"required"`
	ApplicationNo string `json:"applicationNo"`

	FirstName      string `json:"firstName" validate:"required,max=100"`
	MiddleName     string `json:"middleName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Gender         string `json:"gender,omitempty"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	GuardianName   string `json:"guardianName,omitempty"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Address        string `json:"address,omitempty"`
	PreviousSchool string `json:"previousSchool,omitempty"`

	ClassApplied string `json:"classApplied" validate:"required"`
	Course       string `json:"course,omitempty"`
	AcademicYear string `json:"academicYear" validate:"required"`
	StudentType  string `json:"studentType,omitempty"`

	Status     ApplicationStatus `json:"status" validate:"oneof=applied approved rejected admitted"`
	ReviewNote string            `json:"reviewNote,omitempty"`
	ReviewedBy string            `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time        `json:"reviewedAt,omitempty"`
	StudentID  string            `json:"studentId,omitempty"`
	AdmittedAt *time.Time        `json:"admittedAt,omitempty"`

	// kunci duplikat: nama + telepon + tahun ajaran
	ApplicantKey string `json:"applicantKey"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a AppliedStudent) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.FirstName, a.MiddleName, a.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func ApplicantKey(fullName, phone, academicYear string) string {
	return helper.NormalizeKey(fullName) + "|" + helper.CompactKey(phone) + "|" + helper.CompactKey(academicYear)
}

func NormalizeAppliedStudent(a *AppliedStudent) {
	a.SchemaVersion = AppliedStudentSchemaVersion
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.MiddleName = strings.TrimSpace(a.MiddleName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.ClassApplied = strings.TrimSpace(a.ClassApplied)
	if a.Status == "" {
		a.Status = ApplicationApplied
	}
	a.ApplicantKey = ApplicantKey(a.FullName(), a.Phone, a.AcademicYear)
}

func NewAppliedStudentCollection(b store.Backend) *store.Collection[AppliedStudent] {
	return store.NewCollection(b, AppliedStudentCollection,
		store.WithNormalizer(NormalizeAppliedStudent),
	)
}
