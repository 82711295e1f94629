package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/constants"
	"edudesk_backend/internals/features/institutions/controller"
	authMw "edudesk_backend/internals/middlewares/features"
)

// InstitutionAdminRoutes: /api/a/institution (create hanya owner)
func InstitutionAdminRoutes(admin fiber.Router, h *controller.InstitutionHandler) {
	g := admin.Group("/institution")
	g.Post("/", authMw.RequireRoles("institution", constants.OwnerOnly...), h.Create)
	g.Get("/", h.Get)
	g.Patch("/", h.Update)
	g.Post("/logo", h.UploadLogo)
	g.Delete("/logo", h.DeleteLogo)
}

// InstitutionPublicRoutes: /api/public/:tenant_code/branding
func InstitutionPublicRoutes(pub fiber.Router, h *controller.InstitutionHandler) {
	pub.Get("/:tenant_code/branding", h.Branding)
}
