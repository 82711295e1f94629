package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/features/finance/promotions/controller"
)

// PromotionAdminRoutes: /api/a/promotions
func PromotionAdminRoutes(admin fiber.Router, h *controller.PromotionHandler) {
	g := admin.Group("/promotions")
	g.Post("/", h.Promote)
	g.Post("/preview", h.Preview)
}
