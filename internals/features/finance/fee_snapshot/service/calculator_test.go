package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	model "edudesk_backend/internals/features/students/model"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func tx(year, feeType string, amount int64, status model.TransactionStatus) model.Transaction {
	return model.Transaction{ID: "t", AcademicYear: year, FeeType: feeType, Amount: d(amount), Status: status}
}

func TestOutstanding(t *testing.T) {
	tests := []struct {
		name    string
		student *model.Student
		feeType model.FeeType
		year    string
		want    decimal.Decimal
	}{
		{
			name: "transport minus completed payment",
			student: &model.Student{
				AllFee:       model.AllFee{TransportFee: d(7000)},
				Transactions: []model.Transaction{tx("24-25", "transportFee", 3000, model.TransactionCompleted)},
			},
			feeType: model.FeeTypeTransport,
			year:    "24-25",
			want:    d(4000),
		},
		{
			name: "school fee without transactions",
			student: &model.Student{
				AllFee: model.AllFee{SchoolFees: model.SchoolFees{AdmissionFee: d(500), TutionFee: d(15000), Total: d(15500)}},
			},
			feeType: model.FeeTypeSchool,
			year:    "24-25",
			want:    d(15500),
		},
		{
			name: "overpayment clamps to zero",
			student: &model.Student{
				AllFee:       model.AllFee{HostelFee: d(1000)},
				Transactions: []model.Transaction{tx("24-25", "hostelFee", 2500, model.TransactionCompleted)},
			},
			feeType: model.FeeTypeHostel,
			year:    "24-25",
			want:    decimal.Zero,
		},
		{
			name: "fee type matched case-insensitively",
			student: &model.Student{
				AllFee:       model.AllFee{MessFee: d(1200)},
				Transactions: []model.Transaction{tx("24-25", "MessFee", 200, model.TransactionCompleted)},
			},
			feeType: model.FeeTypeMess,
			year:    "24-25",
			want:    d(1000),
		},
		{
			name: "pending and failed payments ignored",
			student: &model.Student{
				AllFee: model.AllFee{TransportFee: d(7000)},
				Transactions: []model.Transaction{
					tx("24-25", "transportFee", 3000, model.TransactionPending),
					tx("24-25", "transportFee", 1000, model.TransactionFailed),
				},
			},
			feeType: model.FeeTypeTransport,
			year:    "24-25",
			want:    d(7000),
		},
		{
			name: "other academic year ignored",
			student: &model.Student{
				AllFee:       model.AllFee{TransportFee: d(7000)},
				Transactions: []model.Transaction{tx("23-24", "transportFee", 3000, model.TransactionCompleted)},
			},
			feeType: model.FeeTypeTransport,
			year:    "24-25",
			want:    d(7000),
		},
		{
			name:    "empty student",
			student: &model.Student{},
			feeType: model.FeeTypeSchool,
			year:    "24-25",
			want:    decimal.Zero,
		},
		{
			name:    "nil student",
			feeType: model.FeeTypeSchool,
			year:    "24-25",
			want:    decimal.Zero,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Outstanding(tc.student, tc.feeType, tc.year)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestCompute_TotalIncludesCarriedBalances(t *testing.T) {
	s := &model.Student{
		AcademicYear: "24-25",
		AllFee: model.AllFee{
			LastYearBalanceFee:   d(800),
			LastYearTransportFee: d(200),
			SchoolFees:           model.SchoolFees{AdmissionFee: d(500), TutionFee: d(9500), Total: d(10000)},
			TransportFee:         d(7000),
			HostelFee:            d(3000),
			MessFee:              d(1000),
		},
		Transactions: []model.Transaction{
			tx("24-25", "schoolFee", 4000, model.TransactionCompleted),
			tx("24-25", "transportfee", 7000, model.TransactionCompleted),
		},
	}

	b := Compute(s)
	assert.Equal(t, "24-25", b.AcademicYear)
	assert.True(t, d(6000).Equal(b.Items[model.FeeTypeSchool]))
	assert.True(t, decimal.Zero.Equal(b.Items[model.FeeTypeTransport]))
	assert.True(t, d(3000).Equal(b.Items[model.FeeTypeHostel]))
	assert.True(t, d(800).Equal(b.Items[model.FeeTypeLastYearBalance]))
	// 6000 + 0 + 3000 + 1000 + 800 + 200
	assert.True(t, d(11000).Equal(b.Total), "got %s", b.Total)
	assert.True(t, b.Total.Equal(TotalOutstanding(s)))
}

func TestOutstandingFor_CarriedType(t *testing.T) {
	s := &model.Student{
		AcademicYear: "24-25",
		AllFee:       model.AllFee{LastYearTransportFee: d(450), TransportFee: d(100)},
	}
	assert.True(t, d(450).Equal(OutstandingFor(s, model.FeeTypeLastYearTransport)))
	assert.True(t, d(100).Equal(OutstandingFor(s, model.FeeTypeTransport)))
}

func TestCompute_ClampsNegativeCarried(t *testing.T) {
	s := &model.Student{
		AcademicYear: "24-25",
		AllFee: model.AllFee{
			LastYearBalanceFee: d(-2000),
			SchoolFees:         model.SchoolFees{Total: d(1000)},
		},
	}
	b := Compute(s)
	assert.True(t, decimal.Zero.Equal(b.Items[model.FeeTypeLastYearBalance]))
	assert.True(t, d(1000).Equal(b.Total), "got %s", b.Total)
}

func TestPendingAndPayable(t *testing.T) {
	s := &model.Student{
		AcademicYear: "24-25",
		AllFee:       model.AllFee{LastYearBalanceFee: d(2000), TransportFee: d(7000)},
		Transactions: []model.Transaction{
			tx("24-25", "transportFee", 3000, model.TransactionPending),
			tx("23-24", "transportFee", 9000, model.TransactionPending),
			tx("24-25", "transportFee", 1000, model.TransactionCompleted),
			tx("24-25", "transportFee", 500, model.TransactionFailed),
			tx("23-24", "lastYearBalanceFee", 1500, model.TransactionPending),
			tx("24-25", "lastYearBalanceFee", 1500, model.TransactionPending),
		},
	}
	assert.True(t, d(3000).Equal(Pending(s, model.FeeTypeTransport)))
	assert.True(t, d(3000).Equal(Payable(s, model.FeeTypeTransport)))
	assert.True(t, d(3000).Equal(Pending(s, model.FeeTypeLastYearBalance)))
	assert.True(t, decimal.Zero.Equal(Payable(s, model.FeeTypeLastYearBalance)))
	assert.True(t, decimal.Zero.Equal(Pending(nil, model.FeeTypeSchool)))
}
