package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/features/inventory/stocks/controller"
)

// StockAdminRoutes: /api/a/stocks
func StockAdminRoutes(admin fiber.Router, h *controller.StockHandler) {
	g := admin.Group("/stocks")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/export", h.Export)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Post("/:id/adjust", h.Adjust)
	g.Delete("/:id", h.Delete)
}

// StockStaffRoutes: /api/s/stocks (lihat & mutasi stok, tanpa hapus)
func StockStaffRoutes(staff fiber.Router, h *controller.StockHandler) {
	g := staff.Group("/stocks")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Post("/:id/adjust", h.Adjust)
}
