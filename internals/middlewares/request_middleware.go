package middlewares

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"
	"go.uber.org/zap"
)

const LocRequestID = "reqid"

func RequestID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocRequestID).(string)
	return s
}

// LongRunningPaths: promosi batch + semua export xlsx admin.
var LongRunningPaths = []string{
	"/api/a/promotions",
	"/api/a/students/export",
	"/api/a/applied-students/export",
	"/api/a/buses/export",
	"/api/a/stocks/export",
}

type RequestOpts struct {
	Timeout time.Duration
	// path prefix yang memakai timeout sendiri (mis. promosi batch)
	LongRunning []string
}

// RequestContext: Request-ID + timeout di UserContext + satu baris log zap per request.
func RequestContext(log *zap.Logger, o RequestOpts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		if id == "" {
			id = utils.UUID()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals(LocRequestID, id)

		if o.Timeout > 0 && !hasPrefix(c.Path(), o.LongRunning) {
			ctx, cancel := context.WithTimeout(c.UserContext(), o.Timeout)
			defer cancel()
			c.SetUserContext(ctx)
		}

		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", status),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		switch {
		case status >= 500:
			log.Error("request", append(fields, zap.Error(err))...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
		return err
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
