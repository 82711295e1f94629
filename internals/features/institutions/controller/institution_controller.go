// file: internals/features/institutions/controller/institution_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	dto "edudesk_backend/internals/features/institutions/dto"
	"edudesk_backend/internals/features/institutions/service"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
	"edudesk_backend/internals/store"
)

var validate = validator.New()

type InstitutionHandler struct {
	Svc *service.Settings
}

func NewInstitutionHandler(svc *service.Settings) *InstitutionHandler {
	return &InstitutionHandler{Svc: svc}
}

// POST /api/a/institution (owner)
func (h *InstitutionHandler) Create(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.InstitutionCreateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	inst, err := h.Svc.Create(c.UserContext(), tenant, in.ToModel())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "institution created", dto.FromModel(inst))
}

// GET /api/a/institution
func (h *InstitutionHandler) Get(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	inst, err := h.Svc.Get(c.UserContext(), tenant)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(inst))
}

// PATCH /api/a/institution
func (h *InstitutionHandler) Update(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.InstitutionUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	inst, err := h.Svc.Update(c.UserContext(), tenant, in.Apply)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "institution updated", dto.FromModel(inst))
}

// POST /api/a/institution/logo (multipart: file)
func (h *InstitutionHandler) UploadLogo(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.FieldError(c, "file", "required")
	}
	blob, err := h.Svc.Assets.PrepareImage(fh, service.LogoMaxSide)
	if err != nil {
		return helper.FromError(c, err)
	}
	inst, err := h.Svc.SetLogo(c.UserContext(), tenant, blob)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "logo updated", inst.Logo)
}

// DELETE /api/a/institution/logo
func (h *InstitutionHandler) DeleteLogo(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if _, err := h.Svc.RemoveLogo(c.UserContext(), tenant); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "logo removed", nil)
}

// GET /api/public/:tenant_code/branding
func (h *InstitutionHandler) Branding(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCodeFromPath(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	inst, err := h.Svc.Get(c.UserContext(), tenant)
	if errors.Is(err, store.ErrNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "institution tidak ditemukan")
	}
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToBranding(inst))
}
