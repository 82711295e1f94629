// file: internals/features/transport/buses/dto/bus_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	model "edudesk_backend/internals/features/transport/buses/model"
)

type BusStopRequest struct {
	Name       string          `json:"name" validate:"required,max=100"`
	Fee        decimal.Decimal `json:"fee"`
	PickupTime string          `json:"pickupTime" validate:"omitempty,max=20"`
}

type BusCreateRequest struct {
	BusNo       string           `json:"busNo" validate:"required,max=30"`
	NumberPlate string           `json:"numberPlate" validate:"required,max=30"`
	DriverName  string           `json:"driverName" validate:"omitempty,max=100"`
	DriverPhone string           `json:"driverPhone" validate:"omitempty,max=30"`
	Capacity    int              `json:"capacity" validate:"min=0,max=500"`
	Route       string           `json:"route" validate:"omitempty,max=200"`
	Active      *bool            `json:"active"`
	Stops       []BusStopRequest `json:"stops" validate:"omitempty,dive"`
}

func toStops(in []BusStopRequest) []model.BusStop {
	out := make([]model.BusStop, 0, len(in))
	for _, s := range in {
		out = append(out, model.BusStop{Name: strings.TrimSpace(s.Name), Fee: s.Fee, PickupTime: strings.TrimSpace(s.PickupTime)})
	}
	return out
}

// InvalidStop: "" bila aman; selain itu nama field yang salah (fee negatif / halte dobel).
func invalidStop(in []BusStopRequest) string {
	seen := map[string]bool{}
	for _, s := range in {
		if s.Fee.IsNegative() {
			return "stops.fee"
		}
		k := strings.ToLower(strings.TrimSpace(s.Name))
		if seen[k] {
			return "stops.name"
		}
		seen[k] = true
	}
	return ""
}

func (r BusCreateRequest) InvalidStop() string { return invalidStop(r.Stops) }

func (r BusCreateRequest) ToModel(id, tenant string, now time.Time) model.Bus {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return model.Bus{
		ID:          id,
		TenantCode:  tenant,
		BusNo:       r.BusNo,
		NumberPlate: r.NumberPlate,
		DriverName:  r.DriverName,
		DriverPhone: strings.TrimSpace(r.DriverPhone),
		Capacity:    r.Capacity,
		Route:       strings.TrimSpace(r.Route),
		Active:      active,
		Stops:       toStops(r.Stops),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type BusUpdateRequest struct {
	BusNo       *string           `json:"busNo" validate:"omitempty,min=1,max=30"`
	NumberPlate *string           `json:"numberPlate" validate:"omitempty,min=1,max=30"`
	DriverName  *string           `json:"driverName" validate:"omitempty,max=100"`
	DriverPhone *string           `json:"driverPhone" validate:"omitempty,max=30"`
	Capacity    *int              `json:"capacity" validate:"omitempty,min=0,max=500"`
	Route       *string           `json:"route" validate:"omitempty,max=200"`
	Active      *bool             `json:"active"`
	Stops       *[]BusStopRequest `json:"stops" validate:"omitempty,dive"`
}

func (r BusUpdateRequest) InvalidStop() string {
	if r.Stops == nil {
		return ""
	}
	return invalidStop(*r.Stops)
}

func (r BusUpdateRequest) Apply(m *model.Bus, now time.Time) {
	if r.BusNo != nil {
		m.BusNo = *r.BusNo
	}
	if r.NumberPlate != nil {
		m.NumberPlate = *r.NumberPlate
	}
	if r.DriverName != nil {
		m.DriverName = *r.DriverName
	}
	if r.DriverPhone != nil {
		m.DriverPhone = strings.TrimSpace(*r.DriverPhone)
	}
	if r.Capacity != nil {
		m.Capacity = *r.Capacity
	}
	if r.Route != nil {
		m.Route = strings.TrimSpace(*r.Route)
	}
	if r.Active != nil {
		m.Active = *r.Active
	}
	if r.Stops != nil {
		m.Stops = toStops(*r.Stops)
	}
	m.UpdatedAt = now
}

type BusResponse struct {
	ID          string          `json:"id"`
	BusNo       string          `json:"busNo"`
	NumberPlate string          `json:"numberPlate"`
	DriverName  string          `json:"driverName,omitempty"`
	DriverPhone string          `json:"driverPhone,omitempty"`
	Capacity    int             `json:"capacity"`
	Route       string          `json:"route,omitempty"`
	Active      bool            `json:"active"`
	Stops       []model.BusStop `json:"stops"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func FromModel(m model.Bus) BusResponse {
	return BusResponse{
		ID:          m.ID,
		BusNo:       m.BusNo,
		NumberPlate: m.NumberPlate,
		DriverName:  m.DriverName,
		DriverPhone: m.DriverPhone,
		Capacity:    m.Capacity,
		Route:       m.Route,
		Active:      m.Active,
		Stops:       m.Stops,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func FromModels(list []model.Bus) []BusResponse {
	out := make([]BusResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromModel(m))
	}
	return out
}
