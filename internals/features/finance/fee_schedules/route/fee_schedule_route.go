package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/features/finance/fee_schedules/controller"
	"edudesk_backend/internals/store"
)

// FeeScheduleAdminRoutes: /api/a/fee-schedules (sudah di belakang AuthJWT + guard admin).
func FeeScheduleAdminRoutes(admin fiber.Router, b store.Backend) {
	h := controller.NewFeeScheduleHandler(b)

	g := admin.Group("/fee-schedules")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}
