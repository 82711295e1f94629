// file: internals/store/gormstore/gormstore.go
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"edudesk_backend/internals/store"
)

// DocumentRow: satu dokumen JSON per (collection, tenant, id) di tabel "documents".
type DocumentRow struct {
	DocumentCollection string         `gorm:"column:document_collection;type:varchar(64);primaryKey"`
	DocumentTenantCode string         `gorm:"column:document_tenant_code;type:varchar(64);primaryKey;index:idx_documents_tenant"`
	DocumentID         string         `gorm:"column:document_id;type:varchar(64);primaryKey"`
	DocumentBody       datatypes.JSON `gorm:"column:document_body;type:jsonb;not null"`
	DocumentCreatedAt  time.Time      `gorm:"column:document_created_at;type:timestamptz;not null;autoCreateTime"`
	DocumentUpdatedAt  time.Time      `gorm:"column:document_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (DocumentRow) TableName() string { return "documents" }

type Store struct {
	db *gorm.DB
}

var _ store.Backend = (*Store)(nil)

// New memastikan tabel documents ada (AutoMigrate) lalu mengembalikan backend.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&DocumentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) scoped(ctx context.Context, collection, tenant string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&DocumentRow{}).
		Where("document_collection = ? AND document_tenant_code = ?", collection, tenant)
}

func (s *Store) Get(ctx context.Context, collection, tenant, id string) ([]byte, error) {
	var row DocumentRow
	err := s.scoped(ctx, collection, tenant).
		Where("document_id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrNotFound)
		}
		return nil, err
	}
	return []byte(row.DocumentBody), nil
}

func (s *Store) Insert(ctx context.Context, collection, tenant, id string, body []byte) error {
	row := DocumentRow{
		DocumentCollection: collection,
		DocumentTenantCode: tenant,
		DocumentID:         id,
		DocumentBody:       datatypes.JSON(body),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrDuplicate)
		}
		return err
	}
	return nil
}

func (s *Store) Put(ctx context.Context, collection, tenant, id string, body []byte) error {
	row := DocumentRow{
		DocumentCollection: collection,
		DocumentTenantCode: tenant,
		DocumentID:         id,
		DocumentBody:       datatypes.JSON(body),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "document_collection"},
				{Name: "document_tenant_code"},
				{Name: "document_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"document_body", "document_updated_at"}),
		}).
		Create(&row).Error
}

func (s *Store) Find(ctx context.Context, collection, tenant string, q store.Query) ([][]byte, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	tx := s.scoped(ctx, collection, tenant)
	for _, f := range q.Filters {
		tx = tx.Where(datatypes.JSONQuery("document_body").Equals(f.Value, store.SplitPath(f.Field)...))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Order(orderClause(q))
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []DocumentRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([][]byte, 0, len(rows))
	for _, r := range rows {
		out = append(out, []byte(r.DocumentBody))
	}
	return out, total, nil
}

func (s *Store) Delete(ctx context.Context, collection, tenant, id string) error {
	res := s.db.WithContext(ctx).
		Where("document_collection = ? AND document_tenant_code = ? AND document_id = ?", collection, tenant, id).
		Delete(&DocumentRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

/* =======================================================================
   Helpers
======================================================================= */

// orderClause: sort pakai jsonb (#>) supaya angka tetap terurut numerik.
// Path sudah lolos store.ValidField, tetap di-quote sebagai literal.
func orderClause(q store.Query) string {
	if q.SortBy == "" {
		return "document_created_at ASC, document_id ASC"
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	path := "{" + strings.Join(store.SplitPath(q.SortBy), ",") + "}"
	return fmt.Sprintf("document_body #> %s::text[] %s NULLS LAST, document_id ASC", pq.QuoteLiteral(path), dir)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}
