// file: internals/features/transport/buses/controller/bus_controller.go
package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dto "edudesk_backend/internals/features/transport/buses/dto"
	model "edudesk_backend/internals/features/transport/buses/model"
	"edudesk_backend/internals/features/transport/buses/service"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
	"edudesk_backend/internals/store"
)

var validate = validator.New()

type BusHandler struct {
	Svc *service.BusService
	Now func() time.Time
}

func NewBusHandler(b store.Backend) *BusHandler {
	return &BusHandler{Svc: service.NewBusService(b), Now: time.Now}
}

var busSort = map[string]string{
	"created_at":   "createdAt",
	"bus_no":       "busNo",
	"number_plate": "numberPlate",
	"capacity":     "capacity",
}

// POST /api/a/buses
func (h *BusHandler) Create(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.BusCreateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if f := in.InvalidStop(); f != "" {
		return helper.FieldError(c, f, "invalid bus stop")
	}

	m := in.ToModel(uuid.NewString(), tenant, h.Now())
	if err := h.Svc.CheckUnique(c.UserContext(), tenant, m, ""); err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Svc.Buses.Insert(c.UserContext(), tenant, m.ID, &m); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "bus created", dto.FromModel(m))
}

// filter list & export: ?active=true&route=&q=
func (h *BusHandler) collect(c *fiber.Ctx, tenant string, p helper.Params) ([]model.Bus, int64, error) {
	var filters []store.Filter
	if v := strings.TrimSpace(c.Query("active")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "active harus boolean")
		}
		filters = append(filters, store.Filter{Field: "active", Value: b})
	}
	if v := strings.TrimSpace(c.Query("route")); v != "" {
		filters = append(filters, store.Filter{Field: "route", Value: v})
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return h.Svc.Buses.Find(c.UserContext(), tenant, p.StoreQuery(busSort, "bus_no", filters...))
	}
	all, _, err := h.Svc.Buses.Find(c.UserContext(), tenant, p.FullQuery(busSort, "bus_no", filters...))
	if err != nil {
		return nil, 0, err
	}
	hit := make([]model.Bus, 0, len(all))
	for _, b := range all {
		if helper.MatchQ(q, b.BusNo, b.NumberPlate, b.DriverName, b.Route) {
			hit = append(hit, b)
		}
	}
	return helper.PageSlice(hit, p), int64(len(hit)), nil
}

// GET /api/a/buses
func (h *BusHandler) List(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "bus_no", "asc", helper.AdminOpts)
	rows, total, err := h.collect(c, tenant, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildMeta(total, p))
}

var busExportColumns = []helper.ExcelColumn[model.Bus]{
	{Header: "Bus No", Value: func(b model.Bus) any { return b.BusNo }},
	{Header: "Number Plate", Value: func(b model.Bus) any { return b.NumberPlate }},
	{Header: "Driver", Value: func(b model.Bus) any { return b.DriverName }},
	{Header: "Driver Phone", Value: func(b model.Bus) any { return b.DriverPhone }},
	{Header: "Capacity", Value: func(b model.Bus) any { return b.Capacity }},
	{Header: "Route", Value: func(b model.Bus) any { return b.Route }},
	{Header: "Stops", Value: func(b model.Bus) any {
		names := make([]string, 0, len(b.Stops))
		for _, s := range b.Stops {
			names = append(names, s.Name)
		}
		return strings.Join(names, ", ")
	}},
	{Header: "Active", Value: func(b model.Bus) any { return b.Active }},
}

// GET /api/a/buses/export (filter sama dengan list, per_page=all default)
func (h *BusHandler) Export(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "bus_no", "asc", helper.ExportOpts)
	if c.Query("per_page") == "" {
		p.PerPage, p.Page, p.All = helper.ExportOpts.AllHardCap, 1, true
	}
	rows, _, err := h.collect(c, tenant, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	buf, err := helper.BuildExcel("Buses", busExportColumns, rows)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SendExcel(c, helper.ExportFilename("buses", tenant, h.Now()), buf)
}

// GET /api/a/buses/:id
func (h *BusHandler) Get(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Svc.Buses.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(m))
}

// PATCH /api/a/buses/:id
func (h *BusHandler) Update(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.BusUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if f := in.InvalidStop(); f != "" {
		return helper.FieldError(c, f, "invalid bus stop")
	}

	m, err := h.Svc.Buses.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	in.Apply(&m, h.Now())
	if in.BusNo != nil || in.NumberPlate != nil {
		if err := h.Svc.CheckUnique(c.UserContext(), tenant, m, m.ID); err != nil {
			return helper.FromError(c, err)
		}
	}
	if err := h.Svc.Buses.Put(c.UserContext(), tenant, m.ID, &m); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "bus updated", dto.FromModel(m))
}

// DELETE /api/a/buses/:id
func (h *BusHandler) Delete(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id := c.Params("id")
	if err := h.Svc.Buses.Delete(c.UserContext(), tenant, id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "bus deleted", fiber.Map{"id": id})
}
