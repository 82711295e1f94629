// file: internals/features/transport/buses/service/bus_service.go
package service

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	model "edudesk_backend/internals/features/transport/buses/model"
	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

var ErrStopNotFound = errors.New("bus stop not found")

type BusService struct {
	Buses *store.Collection[model.Bus]
}

func NewBusService(b store.Backend) *BusService {
	return &BusService{Buses: model.NewBusCollection(b)}
}

// CheckUnique: busNo dan numberPlate masing-masing unik per tenant.
// excludeID diisi saat update (dokumen sendiri tidak dihitung).
func (s *BusService) CheckUnique(ctx context.Context, tenant string, b model.Bus, excludeID string) error {
	checks := []struct {
		field, value, msg string
	}{
		{"busNoKey", helper.CompactKey(b.BusNo), "Nomor bus sudah dipakai"},
		{"plateKey", helper.CompactKey(b.NumberPlate), "Plat nomor sudah terdaftar"},
	}
	for _, ck := range checks {
		if ck.value == "" {
			continue
		}
		list, err := s.Buses.FindAll(ctx, tenant, store.Filter{Field: ck.field, Value: ck.value})
		if err != nil {
			return err
		}
		for _, other := range list {
			if other.ID != excludeID {
				return fiber.NewError(fiber.StatusConflict, ck.msg)
			}
		}
	}
	return nil
}

// FindByPlate: bus aktif/non-aktif berdasarkan plat (format bebas).
func (s *BusService) FindByPlate(ctx context.Context, tenant, plate string) (model.Bus, error) {
	key := helper.CompactKey(plate)
	if key == "" {
		return model.Bus{}, store.ErrNotFound
	}
	list, err := s.Buses.FindAll(ctx, tenant, store.Filter{Field: "plateKey", Value: key})
	if err != nil {
		return model.Bus{}, err
	}
	if len(list) == 0 {
		return model.Bus{}, store.ErrNotFound
	}
	return list[0], nil
}

// ResolveStop: validasi penugasan transport (plat + halte) dan kembalikan data halte.
func (s *BusService) ResolveStop(ctx context.Context, tenant, plate, stop string) (model.Bus, model.BusStop, error) {
	bus, err := s.FindByPlate(ctx, tenant, plate)
	if err != nil {
		return model.Bus{}, model.BusStop{}, err
	}
	st, ok := bus.Stop(stop)
	if !ok {
		return bus, model.BusStop{}, ErrStopNotFound
	}
	return bus, st, nil
}
