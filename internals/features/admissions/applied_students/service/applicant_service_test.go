package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "edudesk_backend/internals/features/admissions/applied_students/model"
	feeModel "edudesk_backend/internals/features/finance/fee_schedules/model"
	feeService "edudesk_backend/internals/features/finance/fee_schedules/service"
	instModel "edudesk_backend/internals/features/institutions/model"
	studentModel "edudesk_backend/internals/features/students/model"
	studentService "edudesk_backend/internals/features/students/service"
	"edudesk_backend/internals/store/memstore"
)

func newApplicants(t *testing.T) *ApplicantService {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()
	require.NoError(t, instModel.NewInstitutionCollection(mem).Insert(ctx, "acme", "acme", &instModel.Institution{
		TenantCode: "acme", Name: "Acme", AcademicYear: "25-26", Classes: []string{"LKG", "UKG", "1"},
	}))
	schedules := feeModel.NewFeeScheduleCollection(mem)
	require.NoError(t, schedules.Insert(ctx, "acme", "f1", &feeModel.FeeSchedule{
		ID: "f1", TenantCode: "acme", AcademicYear: "25-26", ClassName: "LKG", Tier: "standard",
		AdmissionFee: decimal.NewFromInt(2000), TutionFee: decimal.NewFromInt(12000),
	}))

	students := studentService.NewStudentService(studentService.Deps{Backend: mem, Fees: feeService.NewProvider(schedules)})
	s := NewApplicantService(mem, students, nil)
	now := time.Date(2025, 4, 10, 11, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }
	return s
}

func applicant(first, phone, class string) model.AppliedStudent {
	return model.AppliedStudent{FirstName: first, Phone: phone, ClassApplied: class}
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "want fiber error, got %v", err)
	return fe.Code
}

func TestApply(t *testing.T) {
	s := newApplicants(t)
	ctx := context.Background()

	a, err := s.Apply(ctx, "acme", applicant("Meera", "+91 98450 11111", "lkg"))
	require.NoError(t, err)
	assert.Equal(t, "ACME/25-26/0001", a.ApplicationNo)
	assert.Equal(t, "25-26", a.AcademicYear)
	assert.Equal(t, model.ApplicationApplied, a.Status)

	// nama & telepon sama, format beda
	_, err = s.Apply(ctx, "acme", applicant("  meera ", "919845011111", "UKG"))
	assert.Equal(t, fiber.StatusConflict, statusCode(t, err))

	_, err = s.Apply(ctx, "acme", applicant("Ravi", "9845022222", "12"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classApplied")

	_, err = s.Apply(ctx, "ghost", applicant("Ravi", "9845022222", "1"))
	assert.ErrorIs(t, err, ErrUnknownInstitution)

	// setelah ditolak boleh daftar ulang
	_, err = s.Review(ctx, "acme", a.ID, DecisionReject, "incomplete", "u1")
	require.NoError(t, err)
	again, err := s.Apply(ctx, "acme", applicant("Meera", "+91 98450 11111", "LKG"))
	require.NoError(t, err)
	assert.Equal(t, "ACME/25-26/0002", again.ApplicationNo)
}

func TestReviewTransitions(t *testing.T) {
	s := newApplicants(t)
	ctx := context.Background()
	a, err := s.Apply(ctx, "acme", applicant("Meera", "9845011111", "LKG"))
	require.NoError(t, err)

	got, err := s.Review(ctx, "acme", a.ID, DecisionApprove, " ok ", "u1")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, got.Status)
	assert.Equal(t, "ok", got.ReviewNote)
	assert.Equal(t, "u1", got.ReviewedBy)
	require.NotNil(t, got.ReviewedAt)

	_, err = s.Review(ctx, "acme", a.ID, DecisionApprove, "", "u1")
	assert.Equal(t, fiber.StatusConflict, statusCode(t, err))

	got, err = s.Review(ctx, "acme", a.ID, DecisionReject, "seat full", "u2")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationRejected, got.Status)

	_, err = s.Review(ctx, "acme", a.ID, DecisionApprove, "", "u1")
	assert.Equal(t, fiber.StatusConflict, statusCode(t, err))
}

func TestAdmit(t *testing.T) {
	s := newApplicants(t)
	ctx := context.Background()
	a, err := s.Apply(ctx, "acme", model.AppliedStudent{FirstName: "Meera", LastName: "Iyer", Phone: "9845011111", ClassApplied: "LKG", GuardianName: "Lata"})
	require.NoError(t, err)

	_, _, err = s.Admit(ctx, "acme", a.ID, Admission{})
	assert.Equal(t, fiber.StatusConflict, statusCode(t, err), "must be approved first")

	_, err = s.Review(ctx, "acme", a.ID, DecisionApprove, "", "u1")
	require.NoError(t, err)

	app, st, err := s.Admit(ctx, "acme", a.ID, Admission{Division: "B"})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationAdmitted, app.Status)
	assert.Equal(t, st.ID, app.StudentID)
	assert.Equal(t, studentModel.StudentStatusNew, st.Status)
	assert.Equal(t, a.ApplicationNo, st.AdmissionNo)
	assert.Equal(t, "B", st.Division)
	assert.Equal(t, "Lata", st.GuardianName)
	assert.True(t, st.AllFee.SchoolFees.Total.Equal(decimal.NewFromInt(14000)))

	_, _, err = s.Admit(ctx, "acme", a.ID, Admission{})
	assert.Equal(t, fiber.StatusConflict, statusCode(t, err), "admitted is final")
}
