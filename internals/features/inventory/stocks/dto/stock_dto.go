// file: internals/features/inventory/stocks/dto/stock_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	model "edudesk_backend/internals/features/inventory/stocks/model"
)

type StockCreateRequest struct {
	ItemName     string          `json:"itemName" validate:"required,max=150"`
	ClassName    string          `json:"className" validate:"omitempty,max=50"`
	Category     string          `json:"category" validate:"omitempty,max=50"`
	Unit         string          `json:"unit" validate:"omitempty,max=20"`
	Quantity     int             `json:"quantity" validate:"min=0"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	ReorderLevel int             `json:"reorderLevel" validate:"min=0"`
	Note         string          `json:"note" validate:"omitempty,max=500"`
}

func (r StockCreateRequest) ToModel(id, tenant string, now time.Time) model.Stock {
	return model.Stock{
		ID:           id,
		TenantCode:   tenant,
		ItemName:     r.ItemName,
		ClassName:    r.ClassName,
		Category:     r.Category,
		Unit:         strings.TrimSpace(r.Unit),
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		ReorderLevel: r.ReorderLevel,
		Note:         strings.TrimSpace(r.Note),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PATCH: quantity tidak diubah di sini, pakai /adjust.
type StockUpdateRequest struct {
	ItemName     *string          `json:"itemName" validate:"omitempty,min=1,max=150"`
	ClassName    *string          `json:"className" validate:"omitempty,max=50"`
	Category     *string          `json:"category" validate:"omitempty,max=50"`
	Unit         *string          `json:"unit" validate:"omitempty,max=20"`
	UnitPrice    *decimal.Decimal `json:"unitPrice"`
	ReorderLevel *int             `json:"reorderLevel" validate:"omitempty,min=0"`
	Note         *string          `json:"note" validate:"omitempty,max=500"`
}

func (r StockUpdateRequest) KeyChanged() bool { return r.ItemName != nil || r.ClassName != nil }

func (r StockUpdateRequest) Apply(m *model.Stock, now time.Time) {
	if r.ItemName != nil {
		m.ItemName = *r.ItemName
	}
	if r.ClassName != nil {
		m.ClassName = *r.ClassName
	}
	if r.Category != nil {
		m.Category = *r.Category
	}
	if r.Unit != nil {
		m.Unit = strings.TrimSpace(*r.Unit)
	}
	if r.UnitPrice != nil {
		m.UnitPrice = *r.UnitPrice
	}
	if r.ReorderLevel != nil {
		m.ReorderLevel = *r.ReorderLevel
	}
	if r.Note != nil {
		m.Note = strings.TrimSpace(*r.Note)
	}
	m.UpdatedAt = now
}

type StockAdjustRequest struct {
	Direction string `json:"direction" validate:"required,oneof=in out"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Note      string `json:"note" validate:"omitempty,max=300"`
}

type StockResponse struct {
	ID           string                `json:"id"`
	ItemName     string                `json:"itemName"`
	ClassName    string                `json:"className,omitempty"`
	Category     string                `json:"category,omitempty"`
	Unit         string                `json:"unit,omitempty"`
	Quantity     int                   `json:"quantity"`
	UnitPrice    decimal.Decimal       `json:"unitPrice"`
	TotalValue   decimal.Decimal       `json:"totalValue"`
	ReorderLevel int                   `json:"reorderLevel"`
	LowStock     bool                  `json:"lowStock"`
	Note         string                `json:"note,omitempty"`
	Movements    []model.StockMovement `json:"movements,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

func FromModel(m model.Stock, withMovements bool) StockResponse {
	out := StockResponse{
		ID:           m.ID,
		ItemName:     m.ItemName,
		ClassName:    m.ClassName,
		Category:     m.Category,
		Unit:         m.Unit,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		TotalValue:   m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity))),
		ReorderLevel: m.ReorderLevel,
		LowStock:     m.LowStock(),
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if withMovements {
		out.Movements = m.Movements
	}
	return out
}

func FromModels(list []model.Stock) []StockResponse {
	out := make([]StockResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromModel(m, false))
	}
	return out
}
