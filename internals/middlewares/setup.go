package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"

	"edudesk_backend/internals/middlewares/logger"
)

type Options struct {
	Request     RequestOpts
	CorsOrigins []string
	AccessLog   bool
}

// SetupMiddlewares: urutan recover -> request ctx -> cors -> compress/etag -> limiter.
func SetupMiddlewares(app *fiber.App, log *zap.Logger, o Options) {
	app.Use(RecoveryMiddleware(log))
	app.Use(RequestContext(log, o.Request))
	if o.AccessLog {
		app.Use(logger.LoggerMiddleware())
	}
	app.Use(CorsMiddleware(o.CorsOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching
	app.Use(GlobalRateLimiter())
}
