package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cicbolivia/portal/internal/api"
	"github.com/cicbolivia/portal/internal/apiclient"
	"github.com/cicbolivia/portal/internal/aranceles"
	"github.com/cicbolivia/portal/internal/config"
	"github.com/cicbolivia/portal/internal/logger"
	"github.com/cicbolivia/portal/internal/media"
	"github.com/cicbolivia/portal/internal/middleware"
	"github.com/cicbolivia/portal/internal/query"
	"github.com/cicbolivia/portal/internal/stats"
	"github.com/cicbolivia/portal/internal/tokenstore"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting portal...")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Token store backing the outgoing bearer header
	tokens, err := tokenstore.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.TokenStore).Msg("Failed to open token store")
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing token store")
		}
	}()

	// API clients: the web client for news, the mobile client for the calculator
	webClient := apiclient.New(apiclient.Config{
		BaseURL: cfg.WebAPIURL,
		Timeout: cfg.HTTPTimeout,
		Token:   tokens,
		Name:    "web",
	})
	mobileClient := apiclient.New(apiclient.Config{
		BaseURL: cfg.MobileAPIURL(),
		Timeout: cfg.HTTPTimeout,
		Name:    "mobile",
	})

	cache := query.NewClient(query.Options{
		StaleTime: cfg.QueryStaleTime,
		GCTime:    cfg.QueryGCTime,
	})
	go cache.Run(ctx, time.Minute)

	deps := api.Deps{
		News:  webClient,
		Fees:  aranceles.NewService(mobileClient, cache),
		Stats: stats.NewService(webClient, cache),
	}

	presigner, err := media.NewPresigner(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media presigner")
	}
	if presigner != nil {
		deps.Presigner = presigner
	}

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api.SetupRoutes(app, api.NewHandlers(cfg, deps))

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()

	// Create a deadline for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
