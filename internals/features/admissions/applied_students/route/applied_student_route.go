package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/features/admissions/applied_students/controller"
)

// AppliedStudentPublicRoutes: /api/public/:tenant_code/applications (mw: limiter form publik)
func AppliedStudentPublicRoutes(pub fiber.Router, h *controller.ApplicantHandler, mw ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, mw...), h.Apply)
	pub.Post("/:tenant_code/applications", handlers...)
}

// AppliedStudentAdminRoutes: /api/a/applied-students
func AppliedStudentAdminRoutes(admin fiber.Router, h *controller.ApplicantHandler) {
	g := admin.Group("/applied-students")
	g.Get("/", h.List)
	g.Get("/export", h.Export)
	g.Get("/:id", h.Get)
	g.Post("/:id/review", h.Review)
	g.Post("/:id/admit", h.Admit)
}
