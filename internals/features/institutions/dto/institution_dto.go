// file: internals/features/institutions/dto/institution_dto.go
package dto

import (
	"strings"
	"time"

	model "edudesk_backend/internals/features/institutions/model"
	uploadModel "edudesk_backend/internals/features/uploads/model"
)

type InstitutionCreateRequest struct {
	Name         string         `json:"name" validate:"required,max=200"`
	Slug         string         `json:"slug" validate:"omitempty,max=80"`
	Kind         string         `json:"kind" validate:"omitempty,oneof=school college"`
	AcademicYear string         `json:"academicYear" validate:"required,max=20"`
	Classes      []string       `json:"classes" validate:"required,min=1,dive,required,max=50"`
	Divisions    []string       `json:"divisions" validate:"omitempty,dive,required,max=50"`
	Courses      []string       `json:"courses" validate:"omitempty,dive,required,max=100"`
	Location     model.Location `json:"location"`
	Theme        model.Theme    `json:"theme"`
}

func (r InstitutionCreateRequest) ToModel() model.Institution {
	return model.Institution{
		Name:         strings.TrimSpace(r.Name),
		Slug:         r.Slug,
		Kind:         model.InstitutionKind(r.Kind),
		AcademicYear: strings.TrimSpace(r.AcademicYear),
		Classes:      r.Classes,
		Divisions:    r.Divisions,
		Courses:      r.Courses,
		Location:     r.Location,
		Theme:        r.Theme,
	}
}

type InstitutionUpdateRequest struct {
	Name         *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Slug         *string         `json:"slug" validate:"omitempty,max=80"`
	Kind         *string         `json:"kind" validate:"omitempty,oneof=school college"`
	AcademicYear *string         `json:"academicYear" validate:"omitempty,max=20"`
	Classes      *[]string       `json:"classes" validate:"omitempty,min=1,dive,required,max=50"`
	Divisions    *[]string       `json:"divisions" validate:"omitempty,dive,required,max=50"`
	Courses      *[]string       `json:"courses" validate:"omitempty,dive,required,max=100"`
	Location     *model.Location `json:"location"`
	Theme        *model.Theme    `json:"theme"`
}

func (r InstitutionUpdateRequest) Apply(i *model.Institution) {
	if r.Name != nil {
		i.Name = strings.TrimSpace(*r.Name)
	}
	if r.Slug != nil {
		i.Slug = *r.Slug
	}
	if r.Kind != nil {
		i.Kind = model.InstitutionKind(*r.Kind)
	}
	if r.AcademicYear != nil {
		i.AcademicYear = strings.TrimSpace(*r.AcademicYear)
	}
	if r.Classes != nil {
		i.Classes = *r.Classes
	}
	if r.Divisions != nil {
		i.Divisions = *r.Divisions
	}
	if r.Courses != nil {
		i.Courses = *r.Courses
	}
	if r.Location != nil {
		i.Location = *r.Location
	}
	if r.Theme != nil {
		i.Theme = *r.Theme
	}
}

type InstitutionResponse struct {
	TenantCode   string                  `json:"tenantCode"`
	Name         string                  `json:"name"`
	Slug         string                  `json:"slug"`
	Kind         model.InstitutionKind   `json:"kind"`
	AcademicYear string                  `json:"academicYear"`
	Classes      []string                `json:"classes"`
	Divisions    []string                `json:"divisions"`
	Courses      []string                `json:"courses"`
	Location     model.Location          `json:"location"`
	Theme        model.Theme             `json:"theme"`
	Logo         *uploadModel.StoredFile `json:"logo,omitempty"`
	Counters     model.Counters          `json:"counters"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

func FromModel(i model.Institution) InstitutionResponse {
	return InstitutionResponse{
		TenantCode:   i.TenantCode,
		Name:         i.Name,
		Slug:         i.Slug,
		Kind:         i.Kind,
		AcademicYear: i.AcademicYear,
		Classes:      i.Classes,
		Divisions:    i.Divisions,
		Courses:      i.Courses,
		Location:     i.Location,
		Theme:        i.Theme,
		Logo:         i.Logo,
		Counters:     i.Counters,
		UpdatedAt:    i.UpdatedAt,
	}
}

// Branding: data publik untuk halaman login/pendaftaran.
type Branding struct {
	Name    string      `json:"name"`
	Slug    string      `json:"slug"`
	LogoURL string      `json:"logoUrl,omitempty"`
	Theme   model.Theme `json:"theme"`
	Classes []string    `json:"classes"`
}

func ToBranding(i model.Institution) Branding {
	b := Branding{Name: i.Name, Slug: i.Slug, Theme: i.Theme, Classes: i.Classes}
	if i.Logo != nil {
		b.LogoURL = i.Logo.URL
	}
	return b
}
