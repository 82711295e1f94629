// file: internals/features/institutions/service/institution_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	model "edudesk_backend/internals/features/institutions/model"
	"edudesk_backend/internals/store"
)

type CounterKind string

const (
	CounterFeeID     CounterKind = "feeId"
	CounterReceipt   CounterKind = "receipt"
	CounterAdmission CounterKind = "admission"
)

// Counters: penomoran per tenant di dokumen institution.
// Read-modify-write tanpa transaksi; pemakaian paralel bisa menghasilkan nomor ganda.
type Counters struct {
	Institutions *store.Collection[model.Institution]
	Now          func() time.Time
}

func NewCounters(institutions *store.Collection[model.Institution]) *Counters {
	return &Counters{Institutions: institutions, Now: time.Now}
}

// Next menaikkan counter lalu mengembalikan nilai barunya.
func (s *Counters) Next(ctx context.Context, tenant string, kind CounterKind) (int64, error) {
	inst, err := s.Institutions.Get(ctx, tenant, tenant)
	if err != nil {
		return 0, fmt.Errorf("load institution %s: %w", tenant, err)
	}
	var n int64
	switch kind {
	case CounterFeeID:
		inst.Counters.FeeIDCount++
		n = inst.Counters.FeeIDCount
	case CounterReceipt:
		inst.Counters.ReceiptCount++
		n = inst.Counters.ReceiptCount
	case CounterAdmission:
		inst.Counters.AdmissionCount++
		n = inst.Counters.AdmissionCount
	default:
		return 0, fmt.Errorf("unknown counter %q", kind)
	}
	inst.UpdatedAt = s.Now()
	if err := s.Institutions.Put(ctx, tenant, inst.ID, &inst); err != nil {
		return 0, fmt.Errorf("save counter %s: %w", kind, err)
	}
	return n, nil
}

// FeeID: "<TENANT>-F0001"
func FormatFeeID(tenant string, n int64) string {
	return fmt.Sprintf("%s-F%04d", strings.ToUpper(tenant), n)
}

// ReceiptNo: "<TENANT>/R/000123"
func FormatReceiptNo(tenant string, n int64) string {
	return fmt.Sprintf("%s/R/%06d", strings.ToUpper(tenant), n)
}

func FormatAdmissionNo(tenant, academicYear string, n int64) string {
	return fmt.Sprintf("%s/%s/%04d", strings.ToUpper(tenant), academicYear, n)
}
