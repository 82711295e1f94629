// file: internals/features/transport/buses/model/bus_model.go
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

const (
	BusCollection    = "buses"
	BusSchemaVersion = 1
)

type BusStop struct {
	Name       string          `json:"name" validate:"required,max=100"`
	Fee        decimal.Decimal `json:"fee"`
	PickupTime string          `json:"pickupTime,omitempty" validate:"omitempty,max=20"`
}

type Bus struct {
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id" validate:"required"`
	TenantCode    string `json:"tenantCode" validate:"required"`

	BusNo       string `json:"busNo" validate:"required,max=30"`
	NumberPlate string `json:"numberPlate" validate:"required,max=30"`
	DriverName  string `json:"driverName,omitempty" validate:"max=100"`
	DriverPhone string `json:"driverPhone,omitempty" validate:"max=30"`
	Capacity    int    `json:"capacity" validate:"min=0,max=500"`
	Route       string `json:"route,omitempty" validate:"max=200"`
	Active      bool   `json:"active"`

	Stops []BusStop `json:"stops" validate:"dive"`

	// key ternormalisasi untuk cek unik per tenant
	BusNoKey string `json:"busNoKey"`
	PlateKey string `json:"plateKey"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stop mencari halte (case/spasi-insensitive).
func (b Bus) Stop(name string) (BusStop, bool) {
	key := helper.NormalizeKey(name)
	for _, s := range b.Stops {
		if helper.NormalizeKey(s.Name) == key {
			return s, true
		}
	}
	return BusStop{}, false
}

func NormalizeBus(b *Bus) {
	b.SchemaVersion = BusSchemaVersion
	b.BusNo = strings.TrimSpace(b.BusNo)
	b.NumberPlate = strings.ToUpper(strings.TrimSpace(b.NumberPlate))
	b.DriverName = strings.TrimSpace(b.DriverName)
	b.BusNoKey = helper.CompactKey(b.BusNo)
	b.PlateKey = helper.CompactKey(b.NumberPlate)
	if b.Stops == nil {
		b.Stops = []BusStop{}
	}
	for i := range b.Stops {
		b.Stops[i].Name = strings.TrimSpace(b.Stops[i].Name)
	}
}

func NewBusCollection(b store.Backend) *store.Collection[Bus] {
	return store.NewCollection(b, BusCollection, store.WithNormalizer(NormalizeBus))
}
