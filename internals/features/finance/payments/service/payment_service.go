// file: internals/features/finance/payments/service/payment_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	feeCalc "edudesk_backend/internals/features/finance/fee_snapshot/service"
	model "edudesk_backend/internals/features/finance/payments/model"
	instModel "edudesk_backend/internals/features/institutions/model"
	instService "edudesk_backend/internals/features/institutions/service"
	studentModel "edudesk_backend/internals/features/students/model"
	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

var (
	ErrGatewayDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "Payment gateway belum dikonfigurasi")
	ErrOrderNotFound   = errors.New("payment order not found")
)

type PaymentService struct {
	Students *store.Collection[studentModel.Student]
	Orders   *store.Collection[model.PaymentOrder]
	Counters *instService.Counters
	Gateway  SnapGateway // nil = pembayaran online nonaktif
	Log      *zap.Logger
	Now      func() time.Time
}

func NewPaymentService(b store.Backend, gw SnapGateway, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		Students: studentModel.NewStudentCollection(b),
		Orders:   model.NewPaymentOrderCollection(b),
		Counters: instService.NewCounters(instModel.NewInstitutionCollection(b)),
		Gateway:  gw,
		Log:      log,
		Now:      time.Now,
	}
}

// checkAmount: amount > 0 dan tidak melebihi outstanding jenis biaya tsb.
// reservePending: transaksi online yang belum settle ikut mengurangi batas.
func checkAmount(st *studentModel.Student, rawType string, amount decimal.Decimal, reservePending bool) (studentModel.FeeType, error) {
	ft, ok := studentModel.ParseFeeType(rawType)
	if !ok {
		return "", helper.NewFieldError("feeType", "jenis biaya tidak dikenal")
	}
	if !amount.IsPositive() {
		return ft, helper.NewFieldError("amount", "harus lebih dari 0")
	}
	limit := feeCalc.OutstandingFor(st, ft)
	if reservePending {
		limit = feeCalc.Payable(st, ft)
	}
	if amount.GreaterThan(limit) {
		return ft, helper.NewFieldError("amount", fmt.Sprintf("melebihi tunggakan %s (%s)", ft, limit.String()))
	}
	return ft, nil
}

// deductCarried: pembayaran saldo bawaan langsung mengurangi allFee, tidak pernah di bawah 0.
// Sisa yang tidak terserap dikembalikan sebagai kelebihan bayar.
func deductCarried(f *studentModel.AllFee, ft studentModel.FeeType, amount decimal.Decimal) decimal.Decimal {
	var bal *decimal.Decimal
	switch ft {
	case studentModel.FeeTypeLastYearBalance:
		bal = &f.LastYearBalanceFee
	case studentModel.FeeTypeLastYearTransport:
		bal = &f.LastYearTransportFee
	default:
		return decimal.Zero
	}
	next := bal.Sub(amount)
	if next.IsNegative() {
		*bal = decimal.Zero
		return next.Neg()
	}
	*bal = next
	return decimal.Zero
}

/* =======================================================================
   Cash
======================================================================= */

type CashPayment struct {
	FeeType string
	Amount  decimal.Decimal
	Note    string
}

// RecordCash: transaksi completed + nomor kwitansi dari counter institution.
func (s *PaymentService) RecordCash(ctx context.Context, tenant, studentID string, in CashPayment) (studentModel.Student, studentModel.Transaction, error) {
	var tx studentModel.Transaction
	st, err := s.Students.Get(ctx, tenant, studentID)
	if err != nil {
		return st, tx, err
	}
	ft, err := checkAmount(&st, in.FeeType, in.Amount, false)
	if err != nil {
		return st, tx, err
	}

	n, err := s.Counters.Next(ctx, tenant, instService.CounterReceipt)
	if err != nil {
		return st, tx, err
	}

	now := s.Now()
	snapshot := st.AllFee
	tx = studentModel.Transaction{
		ID:           uuid.NewString(),
		AcademicYear: st.AcademicYear,
		FeeType:      string(ft),
		Amount:       in.Amount,
		Status:       studentModel.TransactionCompleted,
		PaymentMode:  studentModel.PaymentModeCash,
		ReceiptNo:    instService.FormatReceiptNo(tenant, n),
		Note:         strings.TrimSpace(in.Note),
		FeeSnapshot:  &snapshot,
		CreatedAt:    now,
		CompletedAt:  &now,
	}
	if ft.IsCarried() {
		deductCarried(&st.AllFee, ft, in.Amount)
	}
	st.Transactions = append(st.Transactions, tx)
	st.UpdatedAt = now
	if err := s.Students.Put(ctx, tenant, st.ID, &st); err != nil {
		return st, tx, err
	}
	s.Log.Info("cash payment recorded",
		zap.String("tenant", tenant),
		zap.String("student", st.ID),
		zap.String("feeType", string(ft)),
		zap.String("amount", in.Amount.String()),
		zap.String("receipt", tx.ReceiptNo),
	)
	return st, tx, nil
}

/* =======================================================================
   Online (Snap)
======================================================================= */

type OnlinePayment struct {
	FeeType  string
	Amount   decimal.Decimal
	Email    string
	Phone    string
	Finish   string // redirect setelah bayar (opsional)
	Customer string // nama pembayar; default nama siswa
}

// StartOnline: token snap dulu, baru transaksi pending + payment order.
// Gagal di gateway = tidak ada yang ditulis.
func (s *PaymentService) StartOnline(ctx context.Context, tenant, studentID string, in OnlinePayment) (model.PaymentOrder, error) {
	var order model.PaymentOrder
	if s.Gateway == nil {
		return order, ErrGatewayDisabled
	}
	st, err := s.Students.Get(ctx, tenant, studentID)
	if err != nil {
		return order, err
	}
	ft, err := checkAmount(&st, in.FeeType, in.Amount, true)
	if err != nil {
		return order, err
	}
	if !in.Amount.Equal(in.Amount.Truncate(0)) {
		return order, helper.NewFieldError("amount", "pembayaran online harus bilangan bulat")
	}

	now := s.Now()
	orderID := NewOrderID(tenant, now)
	name := strings.TrimSpace(in.Customer)
	if name == "" {
		name = st.FullName()
	}
	token, redirect, err := s.Gateway.CreateSnap(ctx, SnapRequest{
		OrderID:  orderID,
		Amount:   in.Amount.IntPart(),
		ItemID:   string(ft),
		ItemName: fmt.Sprintf("%s %s %s", st.FeeID, ft, st.AcademicYear),
		Name:     name,
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Finish:   in.Finish,
	})
	if err != nil {
		s.Log.Error("snap create failed", zap.String("tenant", tenant), zap.String("order", orderID), zap.Error(err))
		return order, fiber.NewError(fiber.StatusBadGateway, "Gagal membuat transaksi di payment gateway")
	}

	snapshot := st.AllFee
	tx := studentModel.Transaction{
		ID:           uuid.NewString(),
		AcademicYear: st.AcademicYear,
		FeeType:      string(ft),
		Amount:       in.Amount,
		Status:       studentModel.TransactionPending,
		PaymentMode:  studentModel.PaymentModeOnline,
		OrderID:      orderID,
		FeeSnapshot:  &snapshot,
		CreatedAt:    now,
	}
	st.Transactions = append(st.Transactions, tx)
	st.UpdatedAt = now
	if err := s.Students.Put(ctx, tenant, st.ID, &st); err != nil {
		return order, err
	}

	order = model.PaymentOrder{
		ID:            orderID,
		TenantCode:    tenant,
		StudentID:     st.ID,
		TransactionID: tx.ID,
		FeeType:       string(ft),
		AcademicYear:  st.AcademicYear,
		Amount:        in.Amount,
		Gateway:       model.GatewayMidtrans,
		Status:        model.OrderPending,
		SnapToken:     token,
		RedirectURL:   redirect,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Orders.Insert(ctx, store.GlobalTenant, order.ID, &order); err != nil {
		// transaksi pending tanpa order tidak akan pernah diproses webhook
		s.failTransaction(ctx, tenant, st.ID, tx.ID)
		return order, err
	}
	return order, nil
}

func (s *PaymentService) failTransaction(ctx context.Context, tenant, studentID, txID string) {
	_, err := s.applyToStudent(context.WithoutCancel(ctx), tenant, studentID, txID, model.OrderFailed)
	if err != nil {
		s.Log.Error("mark transaction failed", zap.String("student", studentID), zap.String("tx", txID), zap.Error(err))
	}
}

// NewOrderID: "<TENANT>-<yyyymmddhhmmss>-<8 hex>", ≤ 50 karakter (batas order_id gateway).
func NewOrderID(tenant string, now time.Time) string {
	t := strings.ToUpper(helper.CompactKey(tenant))
	if len(t) > 20 {
		t = t[:20]
	}
	return fmt.Sprintf("%s-%s-%s", t, now.UTC().Format("20060102150405"), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *PaymentService) GetOrder(ctx context.Context, tenant, orderID string) (model.PaymentOrder, error) {
	o, err := s.Orders.Get(ctx, store.GlobalTenant, orderID)
	if err != nil {
		return o, err
	}
	if o.TenantCode != tenant {
		return model.PaymentOrder{}, store.ErrNotFound
	}
	return o, nil
}

// ListOrders: order milik satu siswa, terbaru dulu.
func (s *PaymentService) ListOrders(ctx context.Context, tenant, studentID string) ([]model.PaymentOrder, error) {
	list, _, err := s.Orders.Find(ctx, store.GlobalTenant, store.Query{
		Filters: []store.Filter{
			{Field: "tenantCode", Value: tenant},
			{Field: "studentId", Value: studentID},
		},
		SortBy: "createdAt",
		Desc:   true,
	})
	return list, err
}

/* =======================================================================
   Notification
======================================================================= */

// HandleNotification: tanda tangan sudah diverifikasi pemanggil (VerifySignature).
// Order final tidak berubah lagi; event tetap dicatat.
func (s *PaymentService) HandleNotification(ctx context.Context, n Notification) (model.PaymentOrder, error) {
	order, err := s.Orders.Get(ctx, store.GlobalTenant, n.OrderID)
	if errors.Is(err, store.ErrNotFound) {
		return order, ErrOrderNotFound
	}
	if err != nil {
		return order, err
	}

	now := s.Now()
	target, decided := MapTransactionStatus(n.TransactionStatus, n.FraudStatus)
	ev := model.GatewayEvent{
		TransactionStatus: n.TransactionStatus,
		FraudStatus:       n.FraudStatus,
		StatusCode:        n.StatusCode,
		GatewayRef:        n.TransactionID,
		ReceivedAt:        now,
	}

	if decided && !order.Status.Final() {
		if gross, perr := decimal.NewFromString(n.GrossAmount); perr == nil && !gross.Equal(order.Amount) {
			s.Log.Warn("gross amount mismatch",
				zap.String("order", order.ID),
				zap.String("expected", order.Amount.String()),
				zap.String("got", n.GrossAmount),
			)
			target = model.OrderFailed
		}
		if _, err := s.applyToStudent(ctx, order.TenantCode, order.StudentID, order.TransactionID, target); err != nil {
			return order, err
		}
		order.Status = target
		if target == model.OrderCompleted {
			order.CompletedAt = &now
		}
		ev.Applied = true
	}

	if n.TransactionID != "" {
		order.GatewayRef = n.TransactionID
	}
	order.Events = append(order.Events, ev)
	order.UpdatedAt = now
	if err := s.Orders.Put(ctx, store.GlobalTenant, order.ID, &order); err != nil {
		return order, err
	}
	s.Log.Info("payment notification",
		zap.String("order", order.ID),
		zap.String("transactionStatus", n.TransactionStatus),
		zap.String("status", string(order.Status)),
		zap.Bool("applied", ev.Applied),
	)
	return order, nil
}

// applyToStudent: pending -> completed|failed pada transaksi siswa.
func (s *PaymentService) applyToStudent(ctx context.Context, tenant, studentID, txID string, target model.OrderStatus) (studentModel.Student, error) {
	st, err := s.Students.Get(ctx, tenant, studentID)
	if err != nil {
		return st, err
	}
	idx := -1
	for i := range st.Transactions {
		if st.Transactions[i].ID == txID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return st, fmt.Errorf("transaction %s on student %s: %w", txID, studentID, store.ErrNotFound)
	}
	tx := &st.Transactions[idx]
	if tx.Status != studentModel.TransactionPending {
		return st, nil
	}

	now := s.Now()
	switch target {
	case model.OrderCompleted:
		// dihitung sebelum status berubah: transaksi ini belum masuk outstanding
		ft := studentModel.FeeType(tx.FeeType)
		excess := decimal.Zero
		if ft.IsCarried() {
			excess = deductCarried(&st.AllFee, ft, tx.Amount)
		} else if out := feeCalc.Outstanding(&st, ft, tx.AcademicYear); tx.Amount.GreaterThan(out) {
			excess = tx.Amount.Sub(out)
		}
		if excess.IsPositive() {
			tx.Overpaid = &excess
			s.Log.Warn("payment overpaid",
				zap.String("tenant", tenant),
				zap.String("student", studentID),
				zap.String("tx", txID),
				zap.String("feeType", tx.FeeType),
				zap.String("overpaid", excess.String()),
			)
		}
		tx.Status = studentModel.TransactionCompleted
		tx.CompletedAt = &now
		if n, err := s.Counters.Next(ctx, tenant, instService.CounterReceipt); err == nil {
			tx.ReceiptNo = instService.FormatReceiptNo(tenant, n)
		} else {
			s.Log.Warn("receipt counter", zap.String("tenant", tenant), zap.Error(err))
		}
	case model.OrderFailed:
		tx.Status = studentModel.TransactionFailed
	default:
		return st, nil
	}
	st.UpdatedAt = now
	if err := s.Students.Put(ctx, tenant, st.ID, &st); err != nil {
		return st, err
	}
	return st, nil
}
