// file: internals/features/inventory/stocks/service/stock_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	model "edudesk_backend/internals/features/inventory/stocks/model"
	"edudesk_backend/internals/store"
)

var ErrInsufficientStock = errors.New("stok tidak mencukupi")

type StockService struct {
	Stocks *store.Collection[model.Stock]
	Now    func() time.Time
}

func NewStockService(b store.Backend) *StockService {
	return &StockService{Stocks: model.NewStockCollection(b), Now: time.Now}
}

// CheckUnique: pasangan (itemName, className) unik per tenant (ternormalisasi).
func (s *StockService) CheckUnique(ctx context.Context, tenant, itemName, className, excludeID string) error {
	list, err := s.Stocks.FindAll(ctx, tenant, store.Filter{Field: "itemKey", Value: model.ItemKey(itemName, className)})
	if err != nil {
		return err
	}
	for _, other := range list {
		if other.ID != excludeID {
			return fiber.NewError(fiber.StatusConflict, "Item sudah ada untuk kelas ini")
		}
	}
	return nil
}

// Adjust: mutasi masuk/keluar. Stok tidak boleh di bawah nol.
func (s *StockService) Adjust(ctx context.Context, tenant, id string, dir model.Direction, qty int, note, by string) (model.Stock, error) {
	if qty <= 0 {
		return model.Stock{}, fiber.NewError(fiber.StatusUnprocessableEntity, "quantity harus > 0")
	}
	st, err := s.Stocks.Get(ctx, tenant, id)
	if err != nil {
		return st, err
	}
	switch dir {
	case model.DirectionIn:
		st.Quantity += qty
	case model.DirectionOut:
		if st.Quantity-qty < 0 {
			return st, ErrInsufficientStock
		}
		st.Quantity -= qty
	default:
		return st, fiber.NewError(fiber.StatusUnprocessableEntity, "direction harus in/out")
	}

	now := s.Now()
	st.Movements = append(st.Movements, model.StockMovement{
		Direction: dir,
		Quantity:  qty,
		Balance:   st.Quantity,
		Note:      strings.TrimSpace(note),
		By:        by,
		At:        now,
	})
	st.UpdatedAt = now
	if err := s.Stocks.Put(ctx, tenant, st.ID, &st); err != nil {
		return st, err
	}
	return st, nil
}
