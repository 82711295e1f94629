package route

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/features/students/controller"
)

// StudentAdminRoutes: /api/a/students
func StudentAdminRoutes(admin fiber.Router, h *controller.StudentHandler) {
	g := admin.Group("/students")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/export", h.Export)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Patch("/:id/status", h.SetStatus)
	g.Get("/:id/outstanding", h.Outstanding)
	g.Put("/:id/transport", h.AssignTransport)
	g.Post("/:id/avatar", h.UploadAvatar)
	g.Post("/:id/documents", h.UploadDocument)
	g.Delete("/:id/documents", h.DeleteDocument)
}
