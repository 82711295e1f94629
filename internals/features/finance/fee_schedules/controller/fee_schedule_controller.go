// file: internals/features/finance/fee_schedules/controller/fee_schedule_controller.go
package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dto "edudesk_backend/internals/features/finance/fee_schedules/dto"
	model "edudesk_backend/internals/features/finance/fee_schedules/model"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
	"edudesk_backend/internals/store"
)

var validate = validator.New()

type FeeScheduleHandler struct {
	Schedules *store.Collection[model.FeeSchedule]
}

func NewFeeScheduleHandler(b store.Backend) *FeeScheduleHandler {
	return &FeeScheduleHandler{Schedules: model.NewFeeScheduleCollection(b)}
}

var feeScheduleSort = map[string]string{
	"created_at":    "createdAt",
	"academic_year": "academicYear",
	"class_name":    "className",
	"tier":          "tier",
}

// POST /api/a/fee-schedules
func (h *FeeScheduleHandler) Create(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var in dto.FeeScheduleCreateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if f := in.NegativeField(); f != "" {
		return helper.FieldError(c, f, "must not be negative")
	}

	m := in.ToModel(uuid.NewString(), tenant, time.Now())
	model.NormalizeFeeSchedule(&m)

	// unik per (tahun, kelas, tipe, tier)
	existing, err := h.Schedules.FindAll(c.UserContext(), tenant,
		store.Filter{Field: "academicYear", Value: m.AcademicYear},
		store.Filter{Field: "className", Value: m.ClassName},
	)
	if err != nil {
		return helper.FromError(c, err)
	}
	for _, e := range existing {
		if e.Key() == m.Key() {
			return helper.JsonError(c, fiber.StatusConflict, "fee schedule sudah ada untuk kelas/tier ini")
		}
	}

	if err := h.Schedules.Insert(c.UserContext(), tenant, m.ID, &m); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "fee schedule created", dto.FromModel(m))
}

// GET /api/a/fee-schedules?academic_year=&class_name=&tier=
func (h *FeeScheduleHandler) List(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "class_name", "asc", helper.AdminOpts)

	var filters []store.Filter
	if v := strings.TrimSpace(c.Query("academic_year")); v != "" {
		filters = append(filters, store.Filter{Field: "academicYear", Value: v})
	}
	if v := strings.TrimSpace(c.Query("class_name")); v != "" {
		filters = append(filters, store.Filter{Field: "className", Value: v})
	}
	if v := strings.TrimSpace(c.Query("tier")); v != "" {
		filters = append(filters, store.Filter{Field: "tier", Value: strings.ToLower(v)})
	}

	rows, total, err := h.Schedules.Find(c.UserContext(), tenant, p.StoreQuery(feeScheduleSort, "class_name", filters...))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildMeta(total, p))
}

// GET /api/a/fee-schedules/:id
func (h *FeeScheduleHandler) Get(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Schedules.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(m))
}

// PATCH /api/a/fee-schedules/:id
func (h *FeeScheduleHandler) Update(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var in dto.FeeScheduleUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if f := in.NegativeField(); f != "" {
		return helper.FieldError(c, f, "must not be negative")
	}

	m, err := h.Schedules.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	in.Apply(&m, time.Now())
	if err := h.Schedules.Put(c.UserContext(), tenant, m.ID, &m); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "fee schedule updated", dto.FromModel(m))
}

// DELETE /api/a/fee-schedules/:id
func (h *FeeScheduleHandler) Delete(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id := c.Params("id")
	if err := h.Schedules.Delete(c.UserContext(), tenant, id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "fee schedule deleted", fiber.Map{"id": id})
}
