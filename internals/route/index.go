// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	authMiddleware "edudesk_backend/internals/middlewares/auth"
	featuresMiddleware "edudesk_backend/internals/middlewares/features"
	"edudesk_backend/internals/route/details"
)

var startTime time.Time

type Opts struct {
	JWTSecret    string
	ApplyLimiter fiber.Handler // nil = tanpa limiter khusus
}

func SetupRoutes(app *fiber.App, s *details.Services, o Opts) {
	startTime = time.Now()
	log := s.Log.Named("routes")

	BaseRoutes(app, s)

	// ===================== PUBLIC =====================
	log.Info("Setting up PUBLIC group...")
	public := app.Group("/api/public")

	var applyMw []fiber.Handler
	if o.ApplyLimiter != nil {
		applyMw = append(applyMw, o.ApplyLimiter)
	}
	details.SchoolPublicRoutes(public, s, applyMw...)
	details.FinancePublicRoutes(public, s)

	jwt := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              o.JWTSecret,
		AllowCookieFallback: true,
	})

	// ===================== ADMIN (per tenant) =====================
	log.Info("Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a", jwt, featuresMiddleware.IsSchoolAdmin())
	details.SchoolAdminRoutes(admin, s)
	details.FinanceAdminRoutes(admin, s)
	details.OperationsAdminRoutes(admin, s)

	// ===================== FINANCE (kasir) =====================
	log.Info("Setting up FINANCE group (Auth + finance roles)...")
	finance := app.Group("/api/f", jwt, featuresMiddleware.IsFinance())
	details.FinanceCashierRoutes(finance, s)

	// ===================== STAFF =====================
	log.Info("Setting up STAFF group (Auth + staff roles)...")
	staff := app.Group("/api/s", jwt, featuresMiddleware.IsStaff())
	details.OperationsStaffRoutes(staff, s)

	log.Info("routes mounted", zap.Int("handlers", int(app.HandlersCount())))
}
