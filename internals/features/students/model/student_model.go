// file: internals/features/students/model/student_model.go
package model

import (
	"strings"
	"time"

	uploadModel "edudesk_backend/internals/features/uploads/model"
	"edudesk_backend/internals/store"
)

const (
	StudentCollection    = "students"
	StudentSchemaVersion = 2

	DefaultStudentType  = "regular"
	DefaultDiscountTier = "standard"
)

type StudentStatus string

const (
	StudentStatusNew      StudentStatus = "new"
	StudentStatusCurrent  StudentStatus = "current"
	StudentStatusInactive StudentStatus = "inactive"
)

// PromotionRecord: jejak kenaikan kelas (untuk deteksi promosi ganda secara manual).
type PromotionRecord struct {
	FromClass string    `json:"fromClass"`
	ToClass   string    `json:"toClass"`
	FromYear  string    `json:"fromYear"`
	ToYear    string    `json:"toYear"`
	At        time.Time `json:"at"`
}

type Student struct {
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id" validate:"required"`
	TenantCode    string `json:"tenantCode" validate:"required"`
	FeeID         string `json:"feeId,omitempty"`
	AdmissionNo   string `json:"admissionNo,omitempty"`

	FirstName    string `json:"firstName" validate:"required,max=100"`
	MiddleName   string `json:"middleName,omitempty" validate:"max=100"`
	LastName     string `json:"lastName,omitempty" validate:"max=100"`
	Gender       string `json:"gender,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	GuardianName string `json:"guardianName,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Address      string `json:"address,omitempty"`

	Class        string        `json:"class" validate:"required"`
	Division     string        `json:"division,omitempty"`
	Course       string        `json:"course,omitempty"`
	AcademicYear string        `json:"academicYear" validate:"required"`
	Status       StudentStatus `json:"status" validate:"oneof=new current inactive"`
	StudentType  string        `json:"studentType"`
	DiscountTier string        `json:"discountTier"`

	AllFee       AllFee        `json:"allFee"`
	Transactions []Transaction `json:"transactions" validate:"dive"`

	// denormalisasi transport (bukan FK)
	BusPlate string `json:"busPlate,omitempty"`
	BusStop  string `json:"busStop,omitempty"`

	Avatar    *uploadModel.StoredFile  `json:"avatar,omitempty"`
	Documents []uploadModel.StoredFile `json:"documents,omitempty" validate:"dive"`

	Promotions []PromotionRecord `json:"promotions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s Student) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.FirstName, s.MiddleName, s.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeStudent dipanggil di boundary store sebelum validasi.
func NormalizeStudent(s *Student) {
	s.SchemaVersion = StudentSchemaVersion
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.MiddleName = strings.TrimSpace(s.MiddleName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Class = strings.TrimSpace(s.Class)
	s.Division = strings.TrimSpace(s.Division)
	if s.Status == "" {
		s.Status = StudentStatusNew
	}
	if s.StudentType == "" {
		s.StudentType = DefaultStudentType
	}
	if s.DiscountTier == "" {
		s.DiscountTier = DefaultDiscountTier
	}
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	s.AllFee.Normalize()
}

// NewStudentCollection: koleksi students dengan normalizer + upgrader legacy.
func NewStudentCollection(b store.Backend) *store.Collection[Student] {
	return store.NewCollection(b, StudentCollection,
		store.WithNormalizer(NormalizeStudent),
		store.WithUpgrader[Student](UpgradeStudentDocument),
	)
}
