// file: internals/features/finance/promotions/controller/promotion_controller.go
package controller

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	dto "edudesk_backend/internals/features/finance/promotions/dto"
	"edudesk_backend/internals/features/finance/promotions/service"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
	"edudesk_backend/internals/store"
)

var validate = validator.New()

type PromotionHandler struct {
	Promoter *service.Promoter
	// Timeout batch (lebih panjang dari timeout request biasa)
	Timeout time.Duration
}

func (h *PromotionHandler) parse(c *fiber.Ctx) (string, dto.PromoteRequest, error) {
	var in dto.PromoteRequest
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return "", in, err
	}
	if err := c.BodyParser(&in); err != nil {
		return "", in, fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Normalize()
	if err := validate.Struct(in); err != nil {
		return "", in, err
	}
	return tenant, in, nil
}

func (h *PromotionHandler) ctx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), h.Timeout)
}

// POST /api/a/promotions
func (h *PromotionHandler) Promote(c *fiber.Ctx) error {
	tenant, in, err := h.parse(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Promoter.Promote(ctx, tenant, in.StudentIDs)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "institution belum dikonfigurasi")
		}
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "promotion finished", res)
}

// POST /api/a/promotions/preview
func (h *PromotionHandler) Preview(c *fiber.Ctx) error {
	tenant, in, err := h.parse(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.Promoter.Preview(ctx, tenant, in.StudentIDs)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "institution belum dikonfigurasi")
		}
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
