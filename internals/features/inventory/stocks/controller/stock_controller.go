// file: internals/features/inventory/stocks/controller/stock_controller.go
package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dto "edudesk_backend/internals/features/inventory/stocks/dto"
	model "edudesk_backend/internals/features/inventory/stocks/model"
	"edudesk_backend/internals/features/inventory/stocks/service"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
	"edudesk_backend/internals/store"
)

var validate = validator.New()

type StockHandler struct {
	Svc *service.StockService
}

func NewStockHandler(b store.Backend) *StockHandler {
	return &StockHandler{Svc: service.NewStockService(b)}
}

var stockSort = map[string]string{
	"created_at": "createdAt",
	"item_name":  "itemName",
	"class_name": "className",
	"quantity":   "quantity",
}

// POST /api/a/stocks
func (h *StockHandler) Create(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.StockCreateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if in.UnitPrice.IsNegative() {
		return helper.FieldError(c, "unitPrice", "must not be negative")
	}
	if err := h.Svc.CheckUnique(c.UserContext(), tenant, in.ItemName, in.ClassName, ""); err != nil {
		return helper.FromError(c, err)
	}

	m := in.ToModel(uuid.NewString(), tenant, h.Svc.Now())
	if err := h.Svc.Stocks.Insert(c.UserContext(), tenant, m.ID, &m); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "stock created", dto.FromModel(m, false))
}

// filter: ?class_name=&category=&low_stock=true&q=
func (h *StockHandler) collect(c *fiber.Ctx, tenant string, p helper.Params) ([]model.Stock, int64, error) {
	var filters []store.Filter
	if v := strings.TrimSpace(c.Query("class_name")); v != "" {
		filters = append(filters, store.Filter{Field: "className", Value: v})
	}
	if v := strings.TrimSpace(c.Query("category")); v != "" {
		filters = append(filters, store.Filter{Field: "category", Value: v})
	}
	low := false
	if v := strings.TrimSpace(c.Query("low_stock")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "low_stock harus boolean")
		}
		low = b
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" && !low {
		return h.Svc.Stocks.Find(c.UserContext(), tenant, p.StoreQuery(stockSort, "item_name", filters...))
	}
	all, _, err := h.Svc.Stocks.Find(c.UserContext(), tenant, p.FullQuery(stockSort, "item_name", filters...))
	if err != nil {
		return nil, 0, err
	}
	hit := make([]model.Stock, 0, len(all))
	for _, s := range all {
		if low && !s.LowStock() {
			continue
		}
		if helper.MatchQ(q, s.ItemName, s.Category, s.ClassName) {
			hit = append(hit, s)
		}
	}
	return helper.PageSlice(hit, p), int64(len(hit)), nil
}

// GET /api/a/stocks
func (h *StockHandler) List(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "item_name", "asc", helper.AdminOpts)
	rows, total, err := h.collect(c, tenant, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildMeta(total, p))
}

var stockExportColumns = []helper.ExcelColumn[model.Stock]{
	{Header: "Item", Value: func(s model.Stock) any { return s.ItemName }},
	{Header: "Class", Value: func(s model.Stock) any { return s.ClassName }},
	{Header: "Category", Value: func(s model.Stock) any { return s.Category }},
	{Header: "Unit", Value: func(s model.Stock) any { return s.Unit }},
	{Header: "Quantity", Value: func(s model.Stock) any { return s.Quantity }},
	{Header: "Unit Price", Value: func(s model.Stock) any { return s.UnitPrice }},
	{Header: "Reorder Level", Value: func(s model.Stock) any { return s.ReorderLevel }},
}

// GET /api/a/stocks/export
func (h *StockHandler) Export(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "item_name", "asc", helper.ExportOpts)
	if c.Query("per_page") == "" {
		p.PerPage, p.Page, p.All = helper.ExportOpts.AllHardCap, 1, true
	}
	rows, _, err := h.collect(c, tenant, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	buf, err := helper.BuildExcel("Stocks", stockExportColumns, rows)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SendExcel(c, helper.ExportFilename("stocks", tenant, h.Svc.Now()), buf)
}

// GET /api/a/stocks/:id
func (h *StockHandler) Get(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Svc.Stocks.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(m, true))
}

// PATCH /api/a/stocks/:id
func (h *StockHandler) Update(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.StockUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return helper.FieldError(c, "unitPrice", "must not be negative")
	}

	m, err := h.Svc.Stocks.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	in.Apply(&m, h.Svc.Now())
	if in.KeyChanged() {
		if err := h.Svc.CheckUnique(c.UserContext(), tenant, m.ItemName, m.ClassName, m.ID); err != nil {
			return helper.FromError(c, err)
		}
	}
	if err := h.Svc.Stocks.Put(c.UserContext(), tenant, m.ID, &m); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "stock updated", dto.FromModel(m, false))
}

// POST /api/a/stocks/:id/adjust
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}

	m, err := h.Svc.Adjust(c.UserContext(), tenant, c.Params("id"),
		model.Direction(in.Direction), in.Quantity, in.Note, helperAuth.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrInsufficientStock) {
			return helper.FieldError(c, "quantity", err.Error())
		}
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "stock adjusted", dto.FromModel(m, true))
}

// DELETE /api/a/stocks/:id
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id := c.Params("id")
	if err := h.Svc.Stocks.Delete(c.UserContext(), tenant, id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "stock deleted", fiber.Map{"id": id})
}
