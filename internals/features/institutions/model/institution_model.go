// file: internals/features/institutions/model/institution_model.go
package model

import (
	"strings"
	"time"

	uploadModel "edudesk_backend/internals/features/uploads/model"
	"edudesk_backend/internals/store"
)

const (
	InstitutionCollection    = "institutions"
	InstitutionSchemaVersion = 1
)

type InstitutionKind string

const (
	KindSchool  InstitutionKind = "school"
	KindCollege InstitutionKind = "college"
)

type Location struct {
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	Country    string   `json:"country,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

type Theme struct {
	PrimaryColor   string `json:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondaryColor,omitempty" validate:"omitempty,hexcolor"`
	AccentColor    string `json:"accentColor,omitempty" validate:"omitempty,hexcolor"`
}

// Counters: nomor urut per tenant (read-modify-write, tanpa lock).
type Counters struct {
	FeeIDCount     int64 `json:"feeIdCount"`
	ReceiptCount   int64 `json:"receiptCount"`
	AdmissionCount int64 `json:"admissionCount"`
}

// Institution: root tenant. id dokumen == tenantCode.
type Institution struct {
	SchemaVersion int             `json:"schemaVersion"`
	ID            string          `json:"id" validate:"required"`
	TenantCode    string          `json:"tenantCode" validate:"required,max=64"`
	Name          string          `json:"name" validate:"required,max=200"`
	Slug          string          `json:"slug" validate:"omitempty,max=80"`
	Kind          InstitutionKind `json:"kind" validate:"oneof=school college"`

	AcademicYear string   `json:"academicYear" validate:"required"`
	Classes      []string `json:"classes" validate:"dive,required"` // urut, kelas terakhir tidak bisa naik
	Divisions    []string `json:"divisions,omitempty" validate:"dive,required"`
	Courses      []string `json:"courses,omitempty" validate:"dive,required"`

	Location Location                `json:"location"`
	Theme    Theme                   `json:"theme"`
	Logo     *uploadModel.StoredFile `json:"logo,omitempty"`
	Counters Counters                `json:"counters"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NextClass: kelas setelah current pada urutan Classes. false bila current kelas terakhir / tidak dikenal.
func (i Institution) NextClass(current string) (string, bool) {
	current = strings.TrimSpace(current)
	for idx, cls := range i.Classes {
		if strings.EqualFold(strings.TrimSpace(cls), current) {
			if idx+1 < len(i.Classes) {
				return i.Classes[idx+1], true
			}
			return "", false
		}
	}
	return "", false
}

func (i Institution) HasClass(name string) bool {
	for _, cls := range i.Classes {
		if strings.EqualFold(strings.TrimSpace(cls), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func NormalizeInstitution(i *Institution) {
	i.SchemaVersion = InstitutionSchemaVersion
	i.TenantCode = strings.TrimSpace(i.TenantCode)
	if i.ID == "" {
		i.ID = i.TenantCode
	}
	if i.Kind == "" {
		i.Kind = KindSchool
	}
	i.Classes = trimAll(i.Classes)
	i.Divisions = trimAll(i.Divisions)
	i.Courses = trimAll(i.Courses)
	i.Theme.PrimaryColor = strings.TrimSpace(i.Theme.PrimaryColor)
	i.Theme.SecondaryColor = strings.TrimSpace(i.Theme.SecondaryColor)
	i.Theme.AccentColor = strings.TrimSpace(i.Theme.AccentColor)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func NewInstitutionCollection(b store.Backend) *store.Collection[Institution] {
	return store.NewCollection(b, InstitutionCollection,
		store.WithNormalizer(NormalizeInstitution),
	)
}
