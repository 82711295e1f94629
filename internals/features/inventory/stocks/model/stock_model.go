// file: internals/features/inventory/stocks/model/stock_model.go
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

const (
	StockCollection    = "stocks"
	StockSchemaVersion = 1

	// riwayat mutasi yang disimpan di dokumen
	MaxMovements = 100
)

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

type StockMovement struct {
	Direction Direction `json:"direction" validate:"oneof=in out"`
	Quantity  int       `json:"quantity" validate:"min=1"`
	Balance   int       `json:"balance"`
	Note      string    `json:"note,omitempty"`
	By        string    `json:"by,omitempty"`
	At        time.Time `json:"at"`
}

type Stock struct {
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id" validate:"required"`
	TenantCode    string `json:"tenantCode" validate:"required"`

	ItemName     string          `json:"itemName" validate:"required,max=150"`
	ClassName    string          `json:"className,omitempty" validate:"max=50"`
	Category     string          `json:"category,omitempty" validate:"max=50"`
	Unit         string          `json:"unit,omitempty" validate:"max=20"`
	Quantity     int             `json:"quantity" validate:"min=0"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	ReorderLevel int             `json:"reorderLevel" validate:"min=0"`
	Note         string          `json:"note,omitempty" validate:"max=500"`

	Movements []StockMovement `json:"movements" validate:"dive"`

	// itemName|className ternormalisasi, unik per tenant
	ItemKey string `json:"itemKey"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s Stock) LowStock() bool { return s.Quantity <= s.ReorderLevel }

func ItemKey(itemName, className string) string {
	return helper.NormalizeKey(itemName) + "|" + helper.NormalizeKey(className)
}

func NormalizeStock(s *Stock) {
	s.SchemaVersion = StockSchemaVersion
	s.ItemName = strings.TrimSpace(s.ItemName)
	s.ClassName = strings.TrimSpace(s.ClassName)
	s.Category = strings.TrimSpace(s.Category)
	s.ItemKey = ItemKey(s.ItemName, s.ClassName)
	if s.Movements == nil {
		s.Movements = []StockMovement{}
	}
	if n := len(s.Movements); n > MaxMovements {
		s.Movements = append([]StockMovement(nil), s.Movements[n-MaxMovements:]...)
	}
}

func NewStockCollection(b store.Backend) *store.Collection[Stock] {
	return store.NewCollection(b, StockCollection, store.WithNormalizer(NormalizeStock))
}
