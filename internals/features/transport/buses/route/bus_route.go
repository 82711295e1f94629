package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/features/transport/buses/controller"
)

// BusAdminRoutes: /api/a/buses
func BusAdminRoutes(admin fiber.Router, h *controller.BusHandler) {
	g := admin.Group("/buses")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/export", h.Export)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}

// BusStaffRoutes: /api/s/buses (read-only)
func BusStaffRoutes(staff fiber.Router, h *controller.BusHandler) {
	g := staff.Group("/buses")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
}
