// file: internals/features/uploads/model/stored_file_model.go
package model

import (
	"time"

	"edudesk_backend/internals/store"
)

// StoredFile: referensi objek di object storage yang ditempel ke dokumen lain.
type StoredFile struct {
	Key         string    `json:"key" validate:"required"`
	URL         string    `json:"url"`
	Name        string    `json:"name,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

/* =======================================================================
   Orphan candidates (hasil cleanup yang gagal)
======================================================================= */

type OrphanStatus string

const (
	OrphanPending   OrphanStatus = "pending"
	OrphanResolved  OrphanStatus = "resolved"
	// batas percobaan habis; tidak diambil sweeper lagi
	OrphanAbandoned OrphanStatus = "abandoned"
)

// OrphanCandidate disimpan di koleksi storage_orphans (tenant store.GlobalTenant)
// supaya sweeper bisa mengulang delete di luar request.
type OrphanCandidate struct {
	ID         string       `json:"id" validate:"required"`
	TenantCode string       `json:"tenantCode"`
	Key        string       `json:"key" validate:"required"`
	Reason     string       `json:"reason"`
	LastError  string       `json:"lastError,omitempty"`
	Attempts   int          `json:"attempts"`
	Status     OrphanStatus `json:"status" validate:"oneof=pending resolved abandoned"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	ResolvedAt *time.Time   `json:"resolvedAt,omitempty"`
}

const OrphanCollection = "storage_orphans"

func NewOrphanCollection(b store.Backend) *store.Collection[OrphanCandidate] {
	return store.NewCollection[OrphanCandidate](b, OrphanCollection)
}
