package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/features/finance/payments/controller"
)

// PaymentFinanceRoutes: /api/f
func PaymentFinanceRoutes(fin fiber.Router, h *controller.PaymentHandler) {
	fin.Post("/students/:id/payments/cash", h.RecordCash)
	fin.Post("/students/:id/payments/online", h.StartOnline)
	fin.Get("/students/:id/payment-orders", h.ListOrders)
	fin.Get("/payment-orders/:orderId", h.GetOrder)
}

// PaymentPublicRoutes: webhook gateway (tanpa JWT, diverifikasi signature).
func PaymentPublicRoutes(pub fiber.Router, h *controller.PaymentHandler) {
	pub.Post("/payments/midtrans/notification", h.MidtransNotification)
}
