// file: internals/features/finance/promotions/service/promotion_service.go
//
// Kenaikan kelas + tahun ajaran dengan carry-forward tunggakan.
// Best-effort per siswa: error dicatat lalu lanjut, tidak ada rollback.
// Tidak idempoten: menjalankan dua kali untuk siswa yang sama menaikkan dua tingkat.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	feeSnapshot "edudesk_backend/internals/features/finance/fee_snapshot/service"
	feeService "edudesk_backend/internals/features/finance/fee_schedules/service"
	instModel "edudesk_backend/internals/features/institutions/model"
	studentModel "edudesk_backend/internals/features/students/model"
	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

// FeeProvider: tarif kelas/tahun target untuk siswa tertentu.
type FeeProvider interface {
	Lookup(ctx context.Context, tenant, className, academicYear string, s *studentModel.Student) (feeService.FeeQuote, error)
}

type SkipReason string

const (
	SkipInactive  SkipReason = "inactive"
	SkipLastClass SkipReason = "no next class"
)

type ItemError struct {
	Student string `json:"student"`
	Error   string `json:"error"`
}

type SkippedItem struct {
	Student string     `json:"student"`
	Reason  SkipReason `json:"reason"`
}

type Result struct {
	ProcessedCount int           `json:"processedCount"`
	FailedCount    int           `json:"failedCount"`
	Processed      []string      `json:"processed"`
	Skipped        []SkippedItem `json:"skipped"`
	Errors         []ItemError   `json:"errors"`
}

// Plan: hasil hitung untuk satu siswa (dipakai Promote dan Preview).
type Plan struct {
	StudentID  string                     `json:"studentId"`
	Name       string                     `json:"name"`
	FromClass  string                     `json:"fromClass"`
	ToClass    string                     `json:"toClass"`
	FromYear   string                     `json:"fromYear"`
	ToYear     string                     `json:"toYear"`
	FromStatus studentModel.StudentStatus `json:"fromStatus"`
	ToStatus   studentModel.StudentStatus `json:"toStatus"`
	AllFee     studentModel.AllFee        `json:"allFee"`
}

type PreviewResult struct {
	Plans   []Plan        `json:"plans"`
	Skipped []SkippedItem `json:"skipped"`
	Errors  []ItemError   `json:"errors"`
}

type Promoter struct {
	Students     *store.Collection[studentModel.Student]
	Institutions *store.Collection[instModel.Institution]
	Fees         FeeProvider
	Limiter      *rate.Limiter
	Log          *zap.Logger
	Now          func() time.Time
}

// NewPromoter: writesPerSec <= 0 berarti tanpa jeda.
func NewPromoter(
	students *store.Collection[studentModel.Student],
	institutions *store.Collection[instModel.Institution],
	fees FeeProvider,
	writesPerSec float64,
	log *zap.Logger,
) *Promoter {
	limit := rate.Inf
	if writesPerSec > 0 {
		limit = rate.Limit(writesPerSec)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Promoter{
		Students:     students,
		Institutions: institutions,
		Fees:         fees,
		Limiter:      rate.NewLimiter(limit, 1),
		Log:          log,
		Now:          time.Now,
	}
}

// skipError: siswa dikecualikan (bukan kegagalan).
type skipError struct{ reason SkipReason }

func (e skipError) Error() string { return string(e.reason) }

/* =======================================================================
   Promote
======================================================================= */

// Promote memproses ids berurutan. Error yang dikembalikan hanya kegagalan
// sebelum loop (mis. institution tidak ada); error per siswa ada di Result.
func (p *Promoter) Promote(ctx context.Context, tenant string, ids []string) (Result, error) {
	res := Result{Processed: []string{}, Skipped: []SkippedItem{}, Errors: []ItemError{}}

	inst, err := p.Institutions.Get(ctx, tenant, tenant)
	if err != nil {
		return res, fmt.Errorf("load institution: %w", err)
	}

	log := p.Log.With(zap.String("tenant", tenant), zap.Int("selected", len(ids)))
	started := p.now()

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			// sisa siswa tidak disentuh; tulis yang sudah jalan tetap
			for _, rest := range ids[i:] {
				res.Errors = append(res.Errors, ItemError{Student: rest, Error: err.Error()})
			}
			break
		}

		student, plan, err := p.planOne(ctx, tenant, inst, id)
		if err != nil {
			var se skipError
			if errors.As(err, &se) {
				res.Skipped = append(res.Skipped, SkippedItem{Student: id, Reason: se.reason})
				continue
			}
			log.Warn("promotion failed", zap.String("student", id), zap.Error(err))
			res.Errors = append(res.Errors, ItemError{Student: id, Error: err.Error()})
			continue
		}

		if err := p.Limiter.Wait(ctx); err != nil {
			res.Errors = append(res.Errors, ItemError{Student: id, Error: err.Error()})
			continue
		}

		apply(&student, plan, p.now())
		if err := p.Students.Put(ctx, tenant, student.ID, &student); err != nil {
			log.Warn("promotion write failed", zap.String("student", id), zap.Error(err))
			res.Errors = append(res.Errors, ItemError{Student: id, Error: err.Error()})
			continue
		}
		res.Processed = append(res.Processed, id)
	}

	res.ProcessedCount = len(res.Processed)
	res.FailedCount = len(res.Errors)
	log.Info("promotion finished",
		zap.Int("processed", res.ProcessedCount),
		zap.Int("failed", res.FailedCount),
		zap.Int("skipped", len(res.Skipped)),
		zap.Duration("took", p.now().Sub(started)),
	)
	return res, nil
}

// Preview: hitungan yang sama dengan Promote tanpa menulis apa pun.
func (p *Promoter) Preview(ctx context.Context, tenant string, ids []string) (PreviewResult, error) {
	out := PreviewResult{Plans: []Plan{}, Skipped: []SkippedItem{}, Errors: []ItemError{}}

	inst, err := p.Institutions.Get(ctx, tenant, tenant)
	if err != nil {
		return out, fmt.Errorf("load institution: %w", err)
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		_, plan, err := p.planOne(ctx, tenant, inst, id)
		if err != nil {
			var se skipError
			if errors.As(err, &se) {
				out.Skipped = append(out.Skipped, SkippedItem{Student: id, Reason: se.reason})
				continue
			}
			out.Errors = append(out.Errors, ItemError{Student: id, Error: err.Error()})
			continue
		}
		out.Plans = append(out.Plans, plan)
	}
	return out, nil
}

/* =======================================================================
   Per-student plan
======================================================================= */

func (p *Promoter) planOne(ctx context.Context, tenant string, inst instModel.Institution, id string) (studentModel.Student, Plan, error) {
	s, err := p.Students.Get(ctx, tenant, id)
	if err != nil {
		return s, Plan{}, fmt.Errorf("load student: %w", err)
	}
	plan, err := p.PlanFor(ctx, tenant, inst, &s)
	return s, plan, err
}

// PlanFor: validasi + hitung kelas/tahun/biaya baru untuk satu siswa.
func (p *Promoter) PlanFor(ctx context.Context, tenant string, inst instModel.Institution, s *studentModel.Student) (Plan, error) {
	if s.Status == studentModel.StudentStatusInactive {
		return Plan{}, skipError{reason: SkipInactive}
	}
	nextClass, ok := inst.NextClass(s.Class)
	if !ok {
		return Plan{}, skipError{reason: SkipLastClass}
	}

	fromYear := strings.TrimSpace(s.AcademicYear)
	if fromYear == "" {
		fromYear = inst.AcademicYear
	}
	nextYear, err := helper.NextAcademicYear(fromYear)
	if err != nil {
		return Plan{}, err
	}

	quote, err := p.Fees.Lookup(ctx, tenant, nextClass, nextYear, s)
	if err != nil {
		return Plan{}, fmt.Errorf("fee lookup %s %s: %w", nextClass, nextYear, err)
	}

	toStatus := s.Status
	if toStatus == studentModel.StudentStatusNew {
		toStatus = studentModel.StudentStatusCurrent
	}

	return Plan{
		StudentID:  s.ID,
		Name:       s.FullName(),
		FromClass:  s.Class,
		ToClass:    nextClass,
		FromYear:   fromYear,
		ToYear:     nextYear,
		FromStatus: s.Status,
		ToStatus:   toStatus,
		AllFee:     CarryForward(s, fromYear, quote),
	}, nil
}

// CarryForward: struktur biaya tahun baru.
//
//	lastYearBalanceFee   += outstanding(hostel + mess + school)
//	lastYearTransportFee += outstanding(transport)
//	transport tetap, hostel & mess nol, school dari tarif baru.
func CarryForward(s *studentModel.Student, year string, quote feeService.FeeQuote) studentModel.AllFee {
	old := s.AllFee

	// saldo bawaan lama dibaca lewat kalkulator (tidak pernah negatif)
	balance := feeSnapshot.OutstandingFor(s, studentModel.FeeTypeLastYearBalance).
		Add(feeSnapshot.Outstanding(s, studentModel.FeeTypeHostel, year)).
		Add(feeSnapshot.Outstanding(s, studentModel.FeeTypeMess, year)).
		Add(feeSnapshot.Outstanding(s, studentModel.FeeTypeSchool, year))
	transport := feeSnapshot.OutstandingFor(s, studentModel.FeeTypeLastYearTransport).
		Add(feeSnapshot.Outstanding(s, studentModel.FeeTypeTransport, year))

	return studentModel.AllFee{
		LastYearBalanceFee:   balance,
		LastYearTransportFee: transport,
		SchoolFees: studentModel.SchoolFees{
			AdmissionFee: quote.StudentFees.AdmissionFee,
			TutionFee:    quote.StudentFees.TutionFee,
			Total:        quote.StudentFees.Total(),
		},
		TuitionFeesDiscount:  quote.Discount(),
		TransportFee:         old.TransportFee,
		TransportFeeDiscount: old.TransportFeeDiscount,
		HostelFee:            decimal.Zero,
		HostelFeeDiscount:    decimal.Zero,
		MessFee:              decimal.Zero,
		MessFeeDiscount:      decimal.Zero,
	}
}

func apply(s *studentModel.Student, plan Plan, now time.Time) {
	s.Promotions = append(s.Promotions, studentModel.PromotionRecord{
		FromClass: plan.FromClass,
		ToClass:   plan.ToClass,
		FromYear:  plan.FromYear,
		ToYear:    plan.ToYear,
		At:        now,
	})
	s.Class = plan.ToClass
	s.AcademicYear = plan.ToYear
	s.Status = plan.ToStatus
	s.AllFee = plan.AllFee
	s.UpdatedAt = now
}

func (p *Promoter) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
