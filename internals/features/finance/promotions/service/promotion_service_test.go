package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	feeService "edudesk_backend/internals/features/finance/fee_schedules/service"
	instModel "edudesk_backend/internals/features/institutions/model"
	studentModel "edudesk_backend/internals/features/students/model"
	"edudesk_backend/internals/store"
	"edudesk_backend/internals/store/memstore"
)

const tenant = "acme"

// fakeFees: tarif tetap, gagal untuk siswa di failFor.
type fakeFees struct {
	failFor map[string]bool
	calls   []string
}

func (f *fakeFees) Lookup(_ context.Context, _, className, year string, s *studentModel.Student) (feeService.FeeQuote, error) {
	f.calls = append(f.calls, s.ID+":"+className+":"+year)
	if f.failFor[s.ID] {
		return feeService.FeeQuote{}, errors.New("no schedule")
	}
	return feeService.FeeQuote{
		StudentFees:  feeService.FeeAmounts{AdmissionFee: dec(500), TutionFee: dec(18000)},
		OriginalFees: feeService.FeeAmounts{AdmissionFee: dec(1000), TutionFee: dec(20000)},
	}, nil
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	mem      *memstore.Store
	students *store.Collection[studentModel.Student]
	fees     *fakeFees
	p        *Promoter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memstore.New()
	ctx := context.Background()

	insts := instModel.NewInstitutionCollection(mem)
	inst := instModel.Institution{
		TenantCode:   tenant,
		Name:         "Acme School",
		AcademicYear: "24-25",
		Classes:      []string{"5", "6", "7"},
	}
	require.NoError(t, insts.Insert(ctx, tenant, tenant, &inst))

	fees := &fakeFees{failFor: map[string]bool{}}
	students := studentModel.NewStudentCollection(mem)
	p := NewPromoter(students, insts, fees, 0, zap.NewNop())
	p.Now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }

	return &fixture{mem: mem, students: students, fees: fees, p: p}
}

func (f *fixture) add(t *testing.T, s studentModel.Student) {
	t.Helper()
	s.TenantCode = tenant
	if s.AcademicYear == "" {
		s.AcademicYear = "24-25"
	}
	if s.FirstName == "" {
		s.FirstName = "Student " + s.ID
	}
	require.NoError(t, f.students.Insert(context.Background(), tenant, s.ID, &s))
}

func (f *fixture) get(t *testing.T, id string) studentModel.Student {
	t.Helper()
	s, err := f.students.Get(context.Background(), tenant, id)
	require.NoError(t, err)
	return s
}

func TestPromote_BatchWithOneFailure(t *testing.T) {
	f := newFixture(t)
	f.add(t, studentModel.Student{ID: "s1", Class: "5", Status: studentModel.StudentStatusCurrent})
	f.add(t, studentModel.Student{ID: "s2", Class: "5", Status: studentModel.StudentStatusCurrent})
	f.add(t, studentModel.Student{ID: "s3", Class: "6", Status: studentModel.StudentStatusNew})
	f.fees.failFor["s2"] = true

	res, err := f.p.Promote(context.Background(), tenant, []string{"s1", "s2", "s3"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.ProcessedCount)
	assert.Equal(t, []string{"s1", "s3"}, res.Processed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "s2", res.Errors[0].Student)
	assert.Contains(t, res.Errors[0].Error, "no schedule")

	s1 := f.get(t, "s1")
	assert.Equal(t, "6", s1.Class)
	assert.Equal(t, "25-26", s1.AcademicYear)

	s2 := f.get(t, "s2")
	assert.Equal(t, "5", s2.Class)
	assert.Equal(t, "24-25", s2.AcademicYear)

	s3 := f.get(t, "s3")
	assert.Equal(t, "7", s3.Class)
	assert.Equal(t, studentModel.StudentStatusCurrent, s3.Status)
	require.Len(t, s3.Promotions, 1)
	assert.Equal(t, "6", s3.Promotions[0].FromClass)
}

func TestPromote_ExcludesInactiveAndLastClass(t *testing.T) {
	f := newFixture(t)
	f.add(t, studentModel.Student{ID: "gone", Class: "5", Status: studentModel.StudentStatusInactive})
	f.add(t, studentModel.Student{ID: "top", Class: "7", Status: studentModel.StudentStatusCurrent})

	res, err := f.p.Promote(context.Background(), tenant, []string{"gone", "top"})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ProcessedCount)
	assert.Empty(t, res.Processed)
	assert.Empty(t, res.Errors)
	assert.ElementsMatch(t, []SkippedItem{
		{Student: "gone", Reason: SkipInactive},
		{Student: "top", Reason: SkipLastClass},
	}, res.Skipped)
	assert.Empty(t, f.fees.calls)

	gone := f.get(t, "gone")
	assert.Equal(t, "5", gone.Class)
	assert.Equal(t, "24-25", gone.AcademicYear)
	top := f.get(t, "top")
	assert.Equal(t, "7", top.Class)
	assert.Equal(t, "24-25", top.AcademicYear)
}

func TestPromote_CarriesOutstandingForward(t *testing.T) {
	f := newFixture(t)
	f.add(t, studentModel.Student{
		ID:     "s1",
		Class:  "5",
		Status: studentModel.StudentStatusCurrent,
		AllFee: studentModel.AllFee{
			LastYearBalanceFee:   dec(100),
			LastYearTransportFee: dec(50),
			SchoolFees:           studentModel.SchoolFees{AdmissionFee: dec(500), TutionFee: dec(9500)},
			TransportFee:         dec(7000),
			TransportFeeDiscount: dec(300),
			HostelFee:            dec(2000),
			HostelFeeDiscount:    dec(100),
			MessFee:              dec(1000),
		},
		Transactions: []studentModel.Transaction{
			{ID: "t1", AcademicYear: "24-25", FeeType: "schoolFee", Amount: dec(6000), Status: studentModel.TransactionCompleted},
			{ID: "t2", AcademicYear: "24-25", FeeType: "transportFee", Amount: dec(3000), Status: studentModel.TransactionCompleted},
			{ID: "t3", AcademicYear: "24-25", FeeType: "messFee", Amount: dec(1000), Status: studentModel.TransactionPending},
		},
	})

	res, err := f.p.Promote(context.Background(), tenant, []string{"s1"})
	require.NoError(t, err)
	require.Equal(t, 1, res.ProcessedCount)

	s := f.get(t, "s1")
	fee := s.AllFee
	// 100 + hostel 2000 + mess 1000 + school (10000-6000)
	assert.True(t, dec(7100).Equal(fee.LastYearBalanceFee), "balance %s", fee.LastYearBalanceFee)
	// 50 + (7000-3000)
	assert.True(t, dec(4050).Equal(fee.LastYearTransportFee), "transport %s", fee.LastYearTransportFee)
	assert.True(t, dec(500).Equal(fee.SchoolFees.AdmissionFee))
	assert.True(t, dec(18000).Equal(fee.SchoolFees.TutionFee))
	assert.True(t, dec(18500).Equal(fee.SchoolFees.Total))
	assert.True(t, dec(2500).Equal(fee.TuitionFeesDiscount))
	assert.True(t, dec(7000).Equal(fee.TransportFee))
	assert.True(t, dec(300).Equal(fee.TransportFeeDiscount))
	assert.True(t, fee.HostelFee.IsZero())
	assert.True(t, fee.HostelFeeDiscount.IsZero())
	assert.True(t, fee.MessFee.IsZero())
	assert.Len(t, s.Transactions, 3)
	assert.Equal(t, []string{"s1:6:25-26"}, f.fees.calls)
}

func TestPromote_WriteFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.add(t, studentModel.Student{ID: "s1", Class: "5", Status: studentModel.StudentStatusCurrent})
	f.add(t, studentModel.Student{ID: "s2", Class: "5", Status: studentModel.StudentStatusCurrent})
	f.mem.FailPut = func(collection, _, id string) error {
		if collection == studentModel.StudentCollection && id == "s1" {
			return errors.New("disk full")
		}
		return nil
	}

	res, err := f.p.Promote(context.Background(), tenant, []string{"s1", "s2", "missing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, res.Processed)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "s1", res.Errors[0].Student)
	assert.Equal(t, "missing", res.Errors[1].Student)
	assert.Equal(t, 2, res.FailedCount)
}

func TestPromote_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.add(t, studentModel.Student{ID: "s1", Class: "5", Status: studentModel.StudentStatusCurrent})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := f.p.Promote(ctx, tenant, []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ProcessedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "5", f.get(t, "s1").Class)
}

func TestPromote_UnknownTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.p.Promote(context.Background(), "nope", []string{"s1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestPreview_DoesNotWrite(t *testing.T) {
	f := newFixture(t)
	f.add(t, studentModel.Student{ID: "s1", Class: "5", Status: studentModel.StudentStatusNew})
	f.add(t, studentModel.Student{ID: "s2", Class: "7", Status: studentModel.StudentStatusCurrent})

	out, err := f.p.Preview(context.Background(), tenant, []string{"s1", "s2"})
	require.NoError(t, err)
	require.Len(t, out.Plans, 1)
	assert.Equal(t, "6", out.Plans[0].ToClass)
	assert.Equal(t, "25-26", out.Plans[0].ToYear)
	assert.Equal(t, studentModel.StudentStatusCurrent, out.Plans[0].ToStatus)
	require.Len(t, out.Skipped, 1)

	s1 := f.get(t, "s1")
	assert.Equal(t, "5", s1.Class)
	assert.Equal(t, studentModel.StudentStatusNew, s1.Status)
}

func TestPromote_FallsBackToInstitutionYear(t *testing.T) {
	f := newFixture(t)
	// AcademicYear kosong di dokumen lama: ditulis langsung tanpa validasi
	require.NoError(t, f.mem.Put(context.Background(), studentModel.StudentCollection, tenant, "old",
		[]byte(`{"id":"old","tenantCode":"acme","firstName":"Old","class":"5","status":"current"}`)))

	s := f.get(t, "old")
	inst := instModel.Institution{AcademicYear: "2024-2025", Classes: []string{"5", "6"}}
	plan, err := f.p.PlanFor(context.Background(), tenant, inst, &s)
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", plan.ToYear)
}

func TestCarryForward_NegativeLegacyBalanceStartsAtZero(t *testing.T) {
	s := &studentModel.Student{
		AcademicYear: "24-25",
		AllFee: studentModel.AllFee{
			LastYearBalanceFee:   dec(-2000),
			LastYearTransportFee: dec(-10),
			SchoolFees:           studentModel.SchoolFees{Total: dec(1000)},
		},
	}
	quote := feeService.FeeQuote{
		StudentFees:  feeService.FeeAmounts{TutionFee: dec(100)},
		OriginalFees: feeService.FeeAmounts{TutionFee: dec(100)},
	}
	fee := CarryForward(s, "24-25", quote)
	assert.True(t, dec(1000).Equal(fee.LastYearBalanceFee), "balance %s", fee.LastYearBalanceFee)
	assert.True(t, fee.LastYearTransportFee.IsZero(), "transport %s", fee.LastYearTransportFee)
}
