package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feeModel "edudesk_backend/internals/features/finance/fee_schedules/model"
	studentModel "edudesk_backend/internals/features/students/model"
	"edudesk_backend/internals/store/memstore"
)

func seedSchedules(t *testing.T) *Provider {
	t.Helper()
	coll := feeModel.NewFeeScheduleCollection(memstore.New())
	ctx := context.Background()
	rows := []feeModel.FeeSchedule{
		{ID: "f1", AcademicYear: "25-26", ClassName: "6", Tier: "standard", AdmissionFee: decimal.NewFromInt(1000), TutionFee: decimal.NewFromInt(20000)},
		{ID: "f2", AcademicYear: "25-26", ClassName: "6", Tier: "sibling", AdmissionFee: decimal.NewFromInt(500), TutionFee: decimal.NewFromInt(18000)},
		{ID: "f3", AcademicYear: "25-26", ClassName: "6", StudentType: "hosteller", Tier: "standard", AdmissionFee: decimal.NewFromInt(1000), TutionFee: decimal.NewFromInt(30000)},
		{ID: "f4", AcademicYear: "24-25", ClassName: "6", Tier: "standard", AdmissionFee: decimal.NewFromInt(900), TutionFee: decimal.NewFromInt(19000)},
		{ID: "f5", AcademicYear: "25-26", ClassName: "6", Tier: "late", AdmissionFee: decimal.NewFromInt(1000), TutionFee: decimal.NewFromInt(34000)},
	}
	for i := range rows {
		rows[i].TenantCode = "acme"
		require.NoError(t, coll.Insert(ctx, "acme", rows[i].ID, &rows[i]))
	}
	return NewProvider(coll)
}

func TestProvider_Lookup(t *testing.T) {
	p := seedSchedules(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		student     *studentModel.Student
		wantStudent int64
		wantOrig    int64
		wantDisc    int64
	}{
		{name: "standard tier", student: &studentModel.Student{DiscountTier: "standard"}, wantStudent: 21000, wantOrig: 21000, wantDisc: 0},
		{name: "discount tier", student: &studentModel.Student{DiscountTier: "Sibling"}, wantStudent: 18500, wantOrig: 21000, wantDisc: 2500},
		{name: "unknown tier falls back", student: &studentModel.Student{DiscountTier: "vip"}, wantStudent: 21000, wantOrig: 21000},
		{name: "student type match", student: &studentModel.Student{StudentType: "hosteller"}, wantStudent: 31000, wantOrig: 31000},
		{name: "unknown type falls back to regular", student: &studentModel.Student{StudentType: "day"}, wantStudent: 21000, wantOrig: 21000},
		{name: "tier only on another type is ignored", student: &studentModel.Student{StudentType: "hosteller", DiscountTier: "late"}, wantStudent: 31000, wantOrig: 31000},
		{name: "hosteller tier missing keeps hosteller rate", student: &studentModel.Student{StudentType: "hosteller", DiscountTier: "sibling"}, wantStudent: 31000, wantOrig: 31000},
		{name: "fallback type keeps its own tiers", student: &studentModel.Student{StudentType: "day", DiscountTier: "sibling"}, wantStudent: 18500, wantOrig: 21000, wantDisc: 2500},
		{name: "nil student", wantStudent: 21000, wantOrig: 21000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := p.Lookup(ctx, "acme", "6", "25-26", tc.student)
			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(tc.wantStudent).Equal(q.StudentFees.Total()), "student %s", q.StudentFees.Total())
			assert.True(t, decimal.NewFromInt(tc.wantOrig).Equal(q.OriginalFees.Total()), "orig %s", q.OriginalFees.Total())
			assert.True(t, decimal.NewFromInt(tc.wantDisc).Equal(q.Discount()))
		})
	}
}

func TestProvider_LookupMissing(t *testing.T) {
	p := seedSchedules(t)
	_, err := p.Lookup(context.Background(), "acme", "7", "25-26", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrScheduleNotFound))

	_, err = p.Lookup(context.Background(), "other", "6", "25-26", nil)
	assert.True(t, errors.Is(err, ErrScheduleNotFound))
}
