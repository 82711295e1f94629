// file: internals/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
	ErrInvalid   = errors.New("invalid document")
)

// Tenant dipakai untuk dokumen lintas-tenant (mis. storage_orphans).
const GlobalTenant = "_global"

/* =======================================================================
   Query
======================================================================= */

// Filter adalah kesetaraan field (dot-path, mis. "allFee.transportFee").
type Filter struct {
	Field string
	Value any
}

type Query struct {
	Filters []Filter
	SortBy  string // dot-path, kosong = urutan backend
	Desc    bool
	Offset  int
	Limit   int // 0 = tanpa batas
}

func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

var reFieldPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidField menolak path yang bisa dipakai untuk injeksi (backend SQL/Mongo).
func ValidField(path string) bool {
	return reFieldPath.MatchString(path) && !strings.HasPrefix(path, "_")
}

func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !ValidField(f.Field) {
			return fmt.Errorf("%w: filter field %q", ErrInvalid, f.Field)
		}
	}
	if q.SortBy != "" && !ValidField(q.SortBy) {
		return fmt.Errorf("%w: sort field %q", ErrInvalid, q.SortBy)
	}
	if q.Offset < 0 || q.Limit < 0 {
		return fmt.Errorf("%w: negative offset/limit", ErrInvalid)
	}
	return nil
}

/* =======================================================================
   Backend: schemaless document store (raw JSON in, raw JSON out)
======================================================================= */

// Backend menyimpan dokumen per (collection, tenant, id) sebagai JSON utuh.
// Implementasi: gormstore (Postgres JSONB), mongostore, memstore (tes).
type Backend interface {
	Get(ctx context.Context, collection, tenant, id string) ([]byte, error)
	Insert(ctx context.Context, collection, tenant, id string, body []byte) error
	Put(ctx context.Context, collection, tenant, id string, body []byte) error
	Find(ctx context.Context, collection, tenant string, q Query) ([][]byte, int64, error)
	Delete(ctx context.Context, collection, tenant, id string) error
	Close(ctx context.Context) error
}

// SplitPath: "a.b.c" -> ["a","b","c"]
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}
