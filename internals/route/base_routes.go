package routes

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/route/details"
	"edudesk_backend/internals/store"
)

func BaseRoutes(app *fiber.App, s *details.Services) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("EduDesk backend running 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		// probe ringan: baca dokumen yang (hampir pasti) tidak ada
		if _, err := s.Backend.Get(ctx, "health", store.GlobalTenant, "probe"); err != nil && !isNotFound(err) {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    os.Getenv("RAILWAY_ENVIRONMENT"),
		})
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
