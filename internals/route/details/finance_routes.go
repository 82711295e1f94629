// file: internals/route/details/finance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"

	FeeScheduleRoute "edudesk_backend/internals/features/finance/fee_schedules/route"
	paymentController "edudesk_backend/internals/features/finance/payments/controller"
	PaymentRoute "edudesk_backend/internals/features/finance/payments/route"
	promotionController "edudesk_backend/internals/features/finance/promotions/controller"
	PromotionRoute "edudesk_backend/internals/features/finance/promotions/route"
)

// FinancePublicRoutes: webhook gateway (tanpa JWT, diverifikasi signature).
func FinancePublicRoutes(r fiber.Router, s *Services) {
	PaymentRoute.PaymentPublicRoutes(r, paymentController.NewPaymentHandler(s.Payments, s.Opts.MidtransServerKey))
}

// FinanceAdminRoutes: fee schedule & promosi (owner/admin).
func FinanceAdminRoutes(r fiber.Router, s *Services) {
	FeeScheduleRoute.FeeScheduleAdminRoutes(r, s.Backend)
	PromotionRoute.PromotionAdminRoutes(r, &promotionController.PromotionHandler{
		Promoter: s.Promoter,
		Timeout:  s.Opts.PromotionTimeout,
	})
}

// FinanceCashierRoutes: pembayaran (owner/admin/accountant).
func FinanceCashierRoutes(r fiber.Router, s *Services) {
	PaymentRoute.PaymentFinanceRoutes(r, paymentController.NewPaymentHandler(s.Payments, s.Opts.MidtransServerKey))
}
