package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/ecommerce-order-system/internal/auth"
	"github.com/fairyhunter13/ecommerce-order-system/internal/config"
	"github.com/fairyhunter13/ecommerce-order-system/internal/handler"
	"github.com/fairyhunter13/ecommerce-order-system/internal/middleware"
	"github.com/fairyhunter13/ecommerce-order-system/internal/repository"
	"github.com/fairyhunter13/ecommerce-order-system/internal/service"
	"github.com/fairyhunter13/ecommerce-order-system/internal/validator"
	"github.com/fairyhunter13/ecommerce-order-system/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Apply schema with ensure-exists semantics
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "E-commerce Order System",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Validator with custom rules (notblank, phone)
	validate := validator.New()

	// Token issuer shared by login and the auth middleware
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Second)

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)
	walletRepo := repository.NewWalletRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	cartRepo := repository.NewCartRepository(pool)

	// Services (layered architecture)
	userService := service.NewUserService(userRepo, tokens)
	productService := service.NewProductService(productRepo)
	voucherService := service.NewVoucherService(pool, voucherRepo, walletRepo, userRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(pool, orderRepo, productRepo, voucherRepo, walletRepo, userRepo, cartRepo)

	// Ensure the admin account exists before serving traffic
	if err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to provision admin account")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(userService, validate)
	productHandler := handler.NewProductHandler(productService, validate)
	voucherHandler := handler.NewVoucherHandler(voucherService, validate)
	cartHandler := handler.NewCartHandler(cartService, validate)
	orderHandler := handler.NewOrderHandler(orderService, validate)

	// Health handler
	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)

	requireAuth := middleware.RequireAuth(tokens)
	requireAdmin := middleware.RequireAdmin()

	// Auth routes
	app.Post("/api/auth/register", authHandler.Register)
	app.Post("/api/auth/login", authHandler.Login)

	// Product routes (public reads, admin writes)
	app.Get("/api/products", productHandler.ListProducts)
	app.Get("/api/products/:id", productHandler.GetProduct)
	app.Post("/api/products", requireAuth, requireAdmin, productHandler.CreateProduct)
	app.Put("/api/products/:id", requireAuth, requireAdmin, productHandler.UpdateProduct)
	app.Delete("/api/products/:id", requireAuth, requireAdmin, productHandler.DeleteProduct)

	// Voucher routes. Literal segments are registered before the :id
	// parameter so "available", "code" and "user" are not captured by it.
	app.Get("/api/vouchers", requireAuth, requireAdmin, voucherHandler.ListVouchers)
	app.Get("/api/vouchers/available", voucherHandler.ListAvailable)
	app.Get("/api/vouchers/code/:code", voucherHandler.GetVoucherByCode)
	app.Get("/api/vouchers/user", requireAuth, voucherHandler.UserVouchers)
	app.Post("/api/vouchers", requireAuth, requireAdmin, voucherHandler.CreateVoucher)
	app.Post("/api/vouchers/:id/claim", requireAuth, voucherHandler.ClaimVoucher)
	app.Get("/api/vouchers/:id", voucherHandler.GetVoucher)
	app.Put("/api/vouchers/:id", requireAuth, requireAdmin, voucherHandler.UpdateVoucher)
	app.Delete("/api/vouchers/:id", requireAuth, requireAdmin, voucherHandler.DeleteVoucher)

	// Cart routes (all authenticated)
	app.Get("/api/cart", requireAuth, cartHandler.GetCart)
	app.Post("/api/cart/add", requireAuth, cartHandler.AddItem)
	app.Put("/api/cart/update", requireAuth, cartHandler.UpdateItem)
	app.Delete("/api/cart/remove", requireAuth, cartHandler.RemoveItem)
	app.Delete("/api/cart/clear", requireAuth, cartHandler.ClearCart)

	// Order routes
	app.Post("/api/orders", requireAuth, orderHandler.CreateOrder)
	app.Get("/api/orders", requireAuth, requireAdmin, orderHandler.ListOrders)
	app.Get("/api/orders/user/:userId", requireAuth, orderHandler.ListUserOrders)
	app.Get("/api/orders/:id", requireAuth, orderHandler.GetOrder)
	app.Put("/api/orders/:id", requireAuth, requireAdmin, orderHandler.UpdateOrder)
	app.Delete("/api/orders/:id", requireAuth, requireAdmin, orderHandler.DeleteOrder)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
