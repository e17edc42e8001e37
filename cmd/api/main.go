package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fixoo-backend/internal/api"
	"fixoo-backend/internal/config"
	"fixoo-backend/internal/modules/admin"
	"fixoo-backend/internal/modules/order"
	"fixoo-backend/internal/modules/user"
	"fixoo-backend/pkg/email"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	e := echo.New()

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 3. --- Storage ---
	// The order engine talks to a storage port; pick the adapter here.
	var (
		orderRepo order.RepositoryInterface
		userRepo  user.RepositoryInterface
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to parse database configuration: %v", err)
		}
		dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
		if err != nil {
			log.Fatalf("Unable to create connection pool: %v", err)
		}
		defer dbPool.Close()
		if err := dbPool.Ping(context.Background()); err != nil {
			log.Fatalf("Unable to ping database: %v", err)
		}
		orderRepo = order.NewRepository(dbPool)
		userRepo = user.NewRepository(dbPool)
	default:
		fileOrderRepo, err := order.NewFileRepository(filepath.Join(cfg.DataDir, "orders.json"))
		if err != nil {
			log.Fatalf("Unable to open order store: %v", err)
		}
		fileUserRepo, err := user.NewFileRepository(filepath.Join(cfg.DataDir, "users.json"))
		if err != nil {
			log.Fatalf("Unable to open user store: %v", err)
		}
		orderRepo = fileOrderRepo
		userRepo = fileUserRepo
	}

	// 4. --- Email (optional, best effort) ---
	var (
		emailer   email.ServiceInterface
		templates *email.TemplateManager
	)
	if cfg.EmailEnabled {
		emailer, err = email.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.EmailFrom)
		if err != nil {
			log.Fatalf("Unable to initialize email sender: %v", err)
		}
		templates, err = email.NewTemplateManager()
		if err != nil {
			log.Fatalf("Unable to parse email templates: %v", err)
		}
	}

	// 5. --- Dependency Injection ---
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	orderService := order.NewService(orderRepo, userService, emailer, templates)
	orderHandler := order.NewHandler(orderService)

	adminService := admin.NewService(orderRepo, userRepo)
	adminHandler := admin.NewHandler(adminService)

	// 6. --- Router ---
	api.SetupRoutes(e, cfg.JWTSecret, userHandler, orderHandler, adminHandler)

	// 7. --- Start server with graceful shutdown ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server, an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
