// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	dto "edudesk_backend/internals/features/finance/payments/dto"
	"edudesk_backend/internals/features/finance/payments/service"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
)

var validate = validator.New()

type PaymentHandler struct {
	Svc       *service.PaymentService
	ServerKey string
}

func NewPaymentHandler(svc *service.PaymentService, serverKey string) *PaymentHandler {
	return &PaymentHandler{Svc: svc, ServerKey: serverKey}
}

// POST /api/f/students/:id/payments/cash
func (h *PaymentHandler) RecordCash(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.CashPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}

	st, tx, err := h.Svc.RecordCash(c.UserContext(), tenant, c.Params("id"), service.CashPayment{
		FeeType: in.FeeType,
		Amount:  in.Amount,
		Note:    in.Note,
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "payment recorded", dto.ToPaymentResult(st, tx))
}

// POST /api/f/students/:id/payments/online
func (h *PaymentHandler) StartOnline(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.OnlinePaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}

	order, err := h.Svc.StartOnline(c.UserContext(), tenant, c.Params("id"), service.OnlinePayment{
		FeeType:  in.FeeType,
		Amount:   in.Amount,
		Email:    in.Email,
		Phone:    in.Phone,
		Customer: in.Payer,
		Finish:   in.FinishURL,
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "payment order created", dto.FromOrder(order))
}

// GET /api/f/students/:id/payment-orders
func (h *PaymentHandler) ListOrders(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	list, err := h.Svc.ListOrders(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromOrders(list))
}

// GET /api/f/payment-orders/:orderId
func (h *PaymentHandler) GetOrder(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	o, err := h.Svc.GetOrder(c.UserContext(), tenant, c.Params("orderId"))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromOrder(o))
}

/* =======================================================================
   Webhook Midtrans
======================================================================= */

// POST /api/payments/midtrans/notification
func (h *PaymentHandler) MidtransNotification(c *fiber.Ctx) error {
	var n service.Notification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if !service.VerifySignature(n, h.ServerKey) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "invalid signature")
	}

	order, err := h.Svc.HandleNotification(c.UserContext(), n)
	if errors.Is(err, service.ErrOrderNotFound) {
		// balas 200 supaya gateway tidak retry terus
		h.Svc.Log.Warn("notification for unknown order", zap.String("order", n.OrderID))
		return c.JSON(fiber.Map{"status": "ignored", "reason": "order not found"})
	}
	if err != nil {
		return helper.FromError(c, err)
	}
	return c.JSON(fiber.Map{
		"status":             "ok",
		"order_id":           order.ID,
		"order_status":       order.Status,
		"transaction_status": n.TransactionStatus,
	})
}
