package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feeCalc "edudesk_backend/internals/features/finance/fee_snapshot/service"
	model "edudesk_backend/internals/features/finance/payments/model"
	instModel "edudesk_backend/internals/features/institutions/model"
	studentModel "edudesk_backend/internals/features/students/model"
	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
	"edudesk_backend/internals/store/memstore"
)

type fakeSnap struct {
	err  error
	reqs []SnapRequest
}

func (f *fakeSnap) CreateSnap(_ context.Context, r SnapRequest) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.reqs = append(f.reqs, r)
	return "tok-" + r.OrderID, "https://pay.test/" + r.OrderID, nil
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newPayments(t *testing.T, gw SnapGateway) *PaymentService {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()
	require.NoError(t, instModel.NewInstitutionCollection(mem).Insert(ctx, "acme", "acme", &instModel.Institution{
		TenantCode: "acme", Name: "Acme", AcademicYear: "25-26", Classes: []string{"6", "7"},
	}))

	s := NewPaymentService(mem, gw, nil)
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }
	s.Counters.Now = s.Now

	st := studentModel.Student{
		ID: "s1", TenantCode: "acme", FirstName: "Asha", LastName: "Rao", FeeID: "ACME-F0001",
		Class: "6", AcademicYear: "25-26",
		AllFee: studentModel.AllFee{
			SchoolFees:         studentModel.SchoolFees{AdmissionFee: dec(1000), TutionFee: dec(14500)},
			TransportFee:       dec(7000),
			LastYearBalanceFee: dec(2000),
		},
	}
	require.NoError(t, s.Students.Insert(ctx, "acme", st.ID, &st))
	return s
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var fe *helper.FieldValidationError
	require.True(t, errors.As(err, &fe), "want field error, got %v", err)
	return fe.Field
}

func TestRecordCash(t *testing.T) {
	s := newPayments(t, nil)
	ctx := context.Background()

	st, tx, err := s.RecordCash(ctx, "acme", "s1", CashPayment{FeeType: "TransportFee", Amount: dec(3000), Note: " april "})
	require.NoError(t, err)
	assert.Equal(t, studentModel.TransactionCompleted, tx.Status)
	assert.Equal(t, "transportFee", tx.FeeType)
	assert.Equal(t, "ACME/R/000001", tx.ReceiptNo)
	assert.Equal(t, "april", tx.Note)
	require.NotNil(t, tx.FeeSnapshot)
	assert.True(t, tx.FeeSnapshot.TransportFee.Equal(dec(7000)))
	assert.True(t, feeCalc.OutstandingFor(&st, studentModel.FeeTypeTransport).Equal(dec(4000)))

	_, _, err = s.RecordCash(ctx, "acme", "s1", CashPayment{FeeType: "transportFee", Amount: dec(5000)})
	assert.Equal(t, "amount", fieldOf(t, err))

	_, tx2, err := s.RecordCash(ctx, "acme", "s1", CashPayment{FeeType: "transportFee", Amount: dec(4000)})
	require.NoError(t, err)
	assert.Equal(t, "ACME/R/000002", tx2.ReceiptNo)

	cases := []struct {
		name  string
		in    CashPayment
		field string
	}{
		{"unknown fee type", CashPayment{FeeType: "libraryFee", Amount: dec(10)}, "feeType"},
		{"zero amount", CashPayment{FeeType: "schoolFee", Amount: decimal.Zero}, "amount"},
		{"negative amount", CashPayment{FeeType: "schoolFee", Amount: dec(-5)}, "amount"},
		{"fully paid", CashPayment{FeeType: "transportFee", Amount: dec(1)}, "amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.RecordCash(ctx, "acme", "s1", tc.in)
			assert.Equal(t, tc.field, fieldOf(t, err))
		})
	}

	_, _, err = s.RecordCash(ctx, "acme", "missing", CashPayment{FeeType: "schoolFee", Amount: dec(1)})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordCash_CarriedBalanceReducesAllFee(t *testing.T) {
	s := newPayments(t, nil)
	ctx := context.Background()

	st, tx, err := s.RecordCash(ctx, "acme", "s1", CashPayment{FeeType: "lastYearBalanceFee", Amount: dec(500)})
	require.NoError(t, err)
	assert.True(t, st.AllFee.LastYearBalanceFee.Equal(dec(1500)))
	assert.True(t, tx.FeeSnapshot.LastYearBalanceFee.Equal(dec(2000)))
	assert.True(t, feeCalc.TotalOutstanding(&st).Equal(dec(15500+7000+1500)))

	_, _, err = s.RecordCash(ctx, "acme", "s1", CashPayment{FeeType: "lastYearBalanceFee", Amount: dec(1501)})
	assert.Equal(t, "amount", fieldOf(t, err))
}

func TestOnlinePayment_SettlementCompletes(t *testing.T) {
	gw := &fakeSnap{}
	s := newPayments(t, gw)
	ctx := context.Background()

	order, err := s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "transportFee", Amount: dec(7000)})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "tok-"+order.ID, order.SnapToken)
	require.Len(t, gw.reqs, 1)
	assert.Equal(t, int64(7000), gw.reqs[0].Amount)
	assert.Equal(t, "Asha Rao", gw.reqs[0].Name)

	st, err := s.Students.Get(ctx, "acme", "s1")
	require.NoError(t, err)
	require.Len(t, st.Transactions, 1)
	assert.Equal(t, studentModel.TransactionPending, st.Transactions[0].Status)
	assert.True(t, feeCalc.OutstandingFor(&st, studentModel.FeeTypeTransport).Equal(dec(7000)), "pending does not count")

	done, err := s.HandleNotification(ctx, Notification{
		OrderID: order.ID, TransactionStatus: "settlement", StatusCode: "200", GrossAmount: "7000.00", TransactionID: "mt-1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, done.Status)
	assert.Equal(t, "mt-1", done.GatewayRef)
	require.NotNil(t, done.CompletedAt)

	st, err = s.Students.Get(ctx, "acme", "s1")
	require.NoError(t, err)
	assert.Equal(t, studentModel.TransactionCompleted, st.Transactions[0].Status)
	assert.Equal(t, "ACME/R/000001", st.Transactions[0].ReceiptNo)
	assert.True(t, feeCalc.OutstandingFor(&st, studentModel.FeeTypeTransport).IsZero())

	// order final tidak berubah lagi
	again, err := s.HandleNotification(ctx, Notification{OrderID: order.ID, TransactionStatus: "expire", StatusCode: "407", GrossAmount: "7000.00"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, again.Status)
	require.Len(t, again.Events, 2)
	assert.True(t, again.Events[0].Applied)
	assert.False(t, again.Events[1].Applied)

	list, err := s.ListOrders(ctx, "acme", "s1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.GetOrder(ctx, "other", order.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOnlinePayment_FailureAndMismatch(t *testing.T) {
	s := newPayments(t, &fakeSnap{})
	ctx := context.Background()

	o1, err := s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "schoolFee", Amount: dec(1000)})
	require.NoError(t, err)
	got, err := s.HandleNotification(ctx, Notification{OrderID: o1.ID, TransactionStatus: "deny", GrossAmount: "1000.00"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, got.Status)

	o2, err := s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "schoolFee", Amount: dec(2000)})
	require.NoError(t, err)
	got, err = s.HandleNotification(ctx, Notification{OrderID: o2.ID, TransactionStatus: "settlement", GrossAmount: "1.00"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, got.Status, "gross mismatch never completes")

	// pending tetap pending
	o3, err := s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "schoolFee", Amount: dec(500)})
	require.NoError(t, err)
	got, err = s.HandleNotification(ctx, Notification{OrderID: o3.ID, TransactionStatus: "pending", GrossAmount: "500.00"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, got.Status)

	st, err := s.Students.Get(ctx, "acme", "s1")
	require.NoError(t, err)
	assert.True(t, feeCalc.OutstandingFor(&st, studentModel.FeeTypeSchool).Equal(dec(15500)))

	_, err = s.HandleNotification(ctx, Notification{OrderID: "nope", TransactionStatus: "settlement"})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOnlinePayment_PendingReservesOutstanding(t *testing.T) {
	s := newPayments(t, &fakeSnap{})
	ctx := context.Background()

	o1, err := s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "lastYearBalanceFee", Amount: dec(2000)})
	require.NoError(t, err)

	_, err = s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "lastYearBalanceFee", Amount: dec(2000)})
	assert.Equal(t, "amount", fieldOf(t, err), "second order for the same balance")

	_, err = s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "transportFee", Amount: dec(4000)})
	require.NoError(t, err)
	_, err = s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "transportFee", Amount: dec(3001)})
	assert.Equal(t, "amount", fieldOf(t, err))

	// order gagal melepas reservasi
	_, err = s.HandleNotification(ctx, Notification{OrderID: o1.ID, TransactionStatus: "expire", GrossAmount: "2000.00"})
	require.NoError(t, err)
	_, err = s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "lastYearBalanceFee", Amount: dec(2000)})
	require.NoError(t, err)
}

func TestOnlinePayment_OverlappingSettlementNeverGoesNegative(t *testing.T) {
	s := newPayments(t, &fakeSnap{})
	ctx := context.Background()

	order, err := s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "lastYearBalanceFee", Amount: dec(2000)})
	require.NoError(t, err)

	// kasir menerima tunai sementara order online masih pending
	_, _, err = s.RecordCash(ctx, "acme", "s1", CashPayment{FeeType: "lastYearBalanceFee", Amount: dec(1500)})
	require.NoError(t, err)

	_, err = s.HandleNotification(ctx, Notification{
		OrderID: order.ID, TransactionStatus: "settlement", StatusCode: "200", GrossAmount: "2000.00",
	})
	require.NoError(t, err)

	st, err := s.Students.Get(ctx, "acme", "s1")
	require.NoError(t, err)
	assert.True(t, st.AllFee.LastYearBalanceFee.IsZero(), "got %s", st.AllFee.LastYearBalanceFee)

	var settled *studentModel.Transaction
	for i := range st.Transactions {
		if st.Transactions[i].OrderID == order.ID {
			settled = &st.Transactions[i]
		}
	}
	require.NotNil(t, settled)
	assert.Equal(t, studentModel.TransactionCompleted, settled.Status)
	require.NotNil(t, settled.Overpaid)
	assert.True(t, settled.Overpaid.Equal(dec(1500)), "got %s", settled.Overpaid)

	b := feeCalc.Compute(&st)
	assert.True(t, b.Items[studentModel.FeeTypeLastYearBalance].IsZero())
	assert.True(t, b.Total.Equal(dec(15500+7000)), "got %s", b.Total)
}

func TestStartOnline_GatewayErrors(t *testing.T) {
	s := newPayments(t, &fakeSnap{err: errors.New("timeout")})
	ctx := context.Background()

	_, err := s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "schoolFee", Amount: dec(100)})
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusBadGateway, fe.Code)

	st, err := s.Students.Get(ctx, "acme", "s1")
	require.NoError(t, err)
	assert.Empty(t, st.Transactions)

	_, err = s.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "schoolFee", Amount: decimal.RequireFromString("10.5")})
	assert.Equal(t, "amount", fieldOf(t, err))

	disabled := newPayments(t, nil)
	_, err = disabled.StartOnline(ctx, "acme", "s1", OnlinePayment{FeeType: "schoolFee", Amount: dec(100)})
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestMapTransactionStatus(t *testing.T) {
	cases := []struct {
		status, fraud string
		want          model.OrderStatus
		decided       bool
	}{
		{"settlement", "", model.OrderCompleted, true},
		{"capture", "accept", model.OrderCompleted, true},
		{"capture", "challenge", model.OrderPending, false},
		{"capture", "deny", model.OrderFailed, true},
		{"pending", "", model.OrderPending, false},
		{"deny", "", model.OrderFailed, true},
		{"cancel", "", model.OrderFailed, true},
		{"EXPIRE", "", model.OrderFailed, true},
		{"failure", "", model.OrderFailed, true},
		{"refund", "", model.OrderPending, false},
	}
	for _, tc := range cases {
		got, decided := MapTransactionStatus(tc.status, tc.fraud)
		assert.Equal(t, tc.want, got, tc.status+"/"+tc.fraud)
		assert.Equal(t, tc.decided, decided, tc.status+"/"+tc.fraud)
	}
}

func TestVerifySignature(t *testing.T) {
	n := Notification{OrderID: "ACME-1", StatusCode: "200", GrossAmount: "7000.00"}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "server-key")
	assert.True(t, VerifySignature(n, "server-key"))
	assert.False(t, VerifySignature(n, "other-key"))
	assert.False(t, VerifySignature(n, ""))

	n.GrossAmount = "7001.00"
	assert.False(t, VerifySignature(n, "server-key"))
}

func TestNewOrderID(t *testing.T) {
	id := NewOrderID("a-very-long-tenant-code-that-goes-on", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.LessOrEqual(t, len(id), 50)
	assert.Contains(t, id, "-20250102030405-")
	assert.NotEqual(t, id, NewOrderID("a-very-long-tenant-code-that-goes-on", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestTruncate_RuneSafe(t *testing.T) {
	name := strings.Repeat("é", 30) + " Bus Fee"
	got := truncate(name, 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 10), got)

	assert.Equal(t, "Transport", truncate("Transport", 50))
	assert.Equal(t, "Trans", truncate("Transport", 5))
	assert.Equal(t, "शुल्क", truncate("शुल्क भुगतान", 5))
}
