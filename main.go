package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"edudesk_backend/internals/configs"
	database "edudesk_backend/internals/databases"
	uploadService "edudesk_backend/internals/features/uploads/service"
	helper "edudesk_backend/internals/helpers"
	middlewares "edudesk_backend/internals/middlewares"
	routes "edudesk_backend/internals/route"
	"edudesk_backend/internals/route/details"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Load()

	log, err := configs.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg configs.Config, log *zap.Logger) error {
	ctx := context.Background()

	// 🔌 document store + object storage
	backend, err := database.OpenDocumentStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	gw, err := database.OpenGateway(ctx, cfg, log)
	if err != nil {
		return err
	}

	svc := details.NewServices(backend, gw, log, details.Options{
		WebP: cfg.WebP,
		Sweeper: uploadService.SweeperConfig{
			CronSchedule: cfg.OrphanSweepCron,
			BatchSize:    cfg.OrphanSweepBatch,
			MaxAttempts:  cfg.OrphanMaxAttempts,
			DryRun:       cfg.OrphanSweepDryRun,
		},
		PromotionWritesSec: cfg.PromotionWritesSec,
		PromotionTimeout:   cfg.PromotionTimeout,
		MidtransServerKey:  cfg.MidtransServerKey,
		MidtransUseProd:    cfg.MidtransUseProd,
	})

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.ErrorHandler,
		BodyLimit:               8 * 1024 * 1024,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"}, // sesuaikan dengan CIDR Cloudflare jika perlu
	})

	middlewares.SetupMiddlewares(app, log, middlewares.Options{
		Request: middlewares.RequestOpts{
			Timeout:     cfg.RequestTimeout,
			LongRunning: middlewares.LongRunningPaths,
		},
		CorsOrigins: cfg.CorsOrigins,
		AccessLog:   !cfg.IsProduction(),
	})

	routes.SetupRoutes(app, svc, routes.Opts{
		JWTSecret:    cfg.JWTSecret,
		ApplyLimiter: middlewares.ApplicationRateLimiter(),
	})

	// ⏱ sweeper orphan storage
	sweeper, err := svc.Sweeper.Start()
	if err != nil {
		return err
	}
	defer func() { <-sweeper.Stop().Done() }()

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	// Start server non-blocking
	errCh := make(chan error, 1)
	go func() {
		log.Info("✅ Listening", zap.String("port", cfg.Port))
		errCh <- app.Listen("0.0.0.0:" + cfg.Port)
	}()

	// graceful shutdown: http -> cron -> store
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
