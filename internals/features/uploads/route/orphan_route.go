package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/constants"
	"edudesk_backend/internals/features/uploads/controller"
	authMw "edudesk_backend/internals/middlewares/features"
)

// StorageOrphanAdminRoutes: /api/a/storage-orphans
func StorageOrphanAdminRoutes(admin fiber.Router, h *controller.OrphanHandler) {
	g := admin.Group("/storage-orphans")
	g.Get("/", h.List)
	g.Post("/sweep", authMw.RequireRoles("storage-orphans", constants.OwnerOnly...), h.Sweep)
}
