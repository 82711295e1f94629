// file: internals/features/admissions/applied_students/service/applicant_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	model "edudesk_backend/internals/features/admissions/applied_students/model"
	instModel "edudesk_backend/internals/features/institutions/model"
	instService "edudesk_backend/internals/features/institutions/service"
	studentModel "edudesk_backend/internals/features/students/model"
	studentService "edudesk_backend/internals/features/students/service"
	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

var ErrUnknownInstitution = fiber.NewError(fiber.StatusNotFound, "Institution tidak ditemukan")

type ApplicantService struct {
	Applicants   *store.Collection[model.AppliedStudent]
	Institutions *store.Collection[instModel.Institution]
	Counters     *instService.Counters
	Students     *studentService.StudentService
	Log          *zap.Logger
	Now          func() time.Time
}

func NewApplicantService(b store.Backend, students *studentService.StudentService, log *zap.Logger) *ApplicantService {
	if log == nil {
		log = zap.NewNop()
	}
	insts := instModel.NewInstitutionCollection(b)
	return &ApplicantService{
		Applicants:   model.NewAppliedStudentCollection(b),
		Institutions: insts,
		Counters:     instService.NewCounters(insts),
		Students:     students,
		Log:          log,
		Now:          time.Now,
	}
}

// Apply (publik): kelas harus terdaftar, satu aplikasi per nama+telepon+tahun ajaran.
func (s *ApplicantService) Apply(ctx context.Context, tenant string, a model.AppliedStudent) (model.AppliedStudent, error) {
	inst, err := s.Institutions.Get(ctx, tenant, tenant)
	if errors.Is(err, store.ErrNotFound) {
		return a, ErrUnknownInstitution
	}
	if err != nil {
		return a, err
	}
	if len(inst.Classes) > 0 && !inst.HasClass(a.ClassApplied) {
		return a, helper.NewFieldError("classApplied", "kelas tidak terdaftar")
	}
	if strings.TrimSpace(a.AcademicYear) == "" {
		a.AcademicYear = inst.AcademicYear
	}

	key := model.ApplicantKey(a.FullName(), a.Phone, a.AcademicYear)
	dup, err := s.Applicants.FindAll(ctx, tenant, store.Filter{Field: "applicantKey", Value: key})
	if err != nil {
		return a, err
	}
	for _, d := range dup {
		if d.Status != model.ApplicationRejected {
			return a, fiber.NewError(fiber.StatusConflict, "Aplikasi dengan nama & telepon yang sama sudah ada")
		}
	}

	n, err := s.Counters.Next(ctx, tenant, instService.CounterAdmission)
	if err != nil {
		return a, err
	}

	now := s.Now()
	a.ID = uuid.NewString()
	a.TenantCode = tenant
	a.ApplicationNo = instService.FormatAdmissionNo(tenant, a.AcademicYear, n)
	a.Status = model.ApplicationApplied
	a.ReviewNote, a.ReviewedBy, a.ReviewedAt = "", "", nil
	a.StudentID, a.AdmittedAt = "", nil
	a.CreatedAt, a.UpdatedAt = now, now
	if err := s.Applicants.Insert(ctx, tenant, a.ID, &a); err != nil {
		return a, err
	}
	return a, nil
}

/* =======================================================================
   Review
======================================================================= */

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Review: applied -> approved|rejected, approved -> rejected. admitted & rejected final.
func (s *ApplicantService) Review(ctx context.Context, tenant, id string, d Decision, note, by string) (model.AppliedStudent, error) {
	a, err := s.Applicants.Get(ctx, tenant, id)
	if err != nil {
		return a, err
	}

	var next model.ApplicationStatus
	switch {
	case d == DecisionApprove && a.Status == model.ApplicationApplied:
		next = model.ApplicationApproved
	case d == DecisionReject && (a.Status == model.ApplicationApplied || a.Status == model.ApplicationApproved):
		next = model.ApplicationRejected
	default:
		return a, fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Tidak bisa %s aplikasi berstatus %s", d, a.Status))
	}

	now := s.Now()
	a.Status = next
	a.ReviewNote = strings.TrimSpace(note)
	a.ReviewedBy = by
	a.ReviewedAt = &now
	a.UpdatedAt = now
	if err := s.Applicants.Put(ctx, tenant, a.ID, &a); err != nil {
		return a, err
	}
	return a, nil
}

/* =======================================================================
   Admit
======================================================================= */

type Admission struct {
	Division string
	AllFee   *studentModel.AllFee // nil = fee schedule
}

// Admit: approved -> student baru (status new), nomor aplikasi jadi admissionNo.
func (s *ApplicantService) Admit(ctx context.Context, tenant, id string, in Admission) (model.AppliedStudent, studentModel.Student, error) {
	var st studentModel.Student
	a, err := s.Applicants.Get(ctx, tenant, id)
	if err != nil {
		return a, st, err
	}
	if a.Status != model.ApplicationApproved {
		return a, st, fiber.NewError(fiber.StatusConflict, "Hanya aplikasi approved yang bisa di-admit")
	}

	draft := studentModel.Student{
		AdmissionNo:  a.ApplicationNo,
		FirstName:    a.FirstName,
		MiddleName:   a.MiddleName,
		LastName:     a.LastName,
		Gender:       a.Gender,
		DateOfBirth:  a.DateOfBirth,
		GuardianName: a.GuardianName,
		Phone:        a.Phone,
		Email:        a.Email,
		Address:      a.Address,
		Class:        a.ClassApplied,
		Division:     strings.TrimSpace(in.Division),
		Course:       a.Course,
		AcademicYear: a.AcademicYear,
		StudentType:  a.StudentType,
	}
	if in.AllFee != nil {
		draft.AllFee = *in.AllFee
	}
	st, err = s.Students.Create(ctx, tenant, draft, in.AllFee != nil)
	if err != nil {
		return a, st, err
	}

	now := s.Now()
	a.Status = model.ApplicationAdmitted
	a.StudentID = st.ID
	a.AdmittedAt = &now
	a.UpdatedAt = now
	if err := s.Applicants.Put(ctx, tenant, a.ID, &a); err != nil {
		// siswa sudah terbentuk; aplikasi bisa diperbaiki manual
		s.Log.Error("admit: update application failed",
			zap.String("tenant", tenant),
			zap.String("application", a.ID),
			zap.String("student", st.ID),
			zap.Error(err),
		)
		return a, st, err
	}
	return a, st, nil
}
