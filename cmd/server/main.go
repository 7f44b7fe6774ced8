package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/firebaseapp"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/inventory"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	port := flag.StringP("port", "p", "", "listen port (overrides PORT)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	vocabulary := catalog.Default()
	if cfg.CategoriesPath != "" {
		v, err := catalog.LoadFromFile(cfg.CategoriesPath)
		if err != nil {
			slog.Error("failed to load categories", "path", cfg.CategoriesPath, "error", err)
			os.Exit(1)
		}
		vocabulary = v
	}
	slog.Info("category vocabulary loaded", "categories", vocabulary.Len())

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB, stdoutHandler)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, dbLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	ctx := context.Background()

	var fbApp *firebaseapp.App
	if cfg.NeedsFirebase() {
		app, err := firebaseapp.New(ctx, cfg)
		if err != nil {
			slog.Error("firebase init failed", "error", err)
			os.Exit(1)
		}
		fbApp = app
	}

	items, closeStore, err := openStore(ctx, cfg, fbApp)
	if err != nil {
		slog.Error("document store init failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	slog.Info("document store ready", "backend", cfg.StoreBackend)

	protect, err := authMiddleware(ctx, cfg, fbApp)
	if err != nil {
		slog.Error("auth init failed", "mode", cfg.AuthMode, "error", err)
		os.Exit(1)
	}

	// Workspaces
	workspaces := inventory.NewWorkspaces(items, slog.Default())
	sweepDone := make(chan struct{})
	workspaces.StartSweeper(time.Minute, cfg.WorkspaceIdleTimeout, sweepDone)

	// Handlers
	var authService *services.AuthService
	if cfg.AuthMode == config.AuthJWT {
		authService = services.NewAuthService(database.DB, cfg)
	}
	authHandler := handlers.NewAuthHandler(authService, workspaces, items)
	healthHandler := handlers.NewHealthHandler(items, workspaces)
	pantryHandler := handlers.NewPantryHandler(vocabulary)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Prometheus metrics
	prometheus := fiberprometheus.New("pantry")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Routes
	routes.Setup(app, cfg, protect, workspaces, authHandler, healthHandler, pantryHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "auth_mode", cfg.AuthMode)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(sweepDone)
	workspaces.Close()
	if err := closeStore(); err != nil {
		slog.Error("document store close error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
