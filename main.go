package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/chatrelay/api"
	"github.com/xiaot623/chatrelay/config"
	"github.com/xiaot623/chatrelay/provider"
	"github.com/xiaot623/chatrelay/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting chatrelay...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Default provider: %s (%s)", cfg.DefaultProvider, cfg.DefaultModel)

	// Initialize store
	var db store.Store
	if cfg.DatabaseURL != "" {
		log.Printf("Database: %s", cfg.DatabaseURL)
		sqlite, err := store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize store: %v", err)
		}
		db = sqlite
	} else {
		log.Printf("Database: in-memory (state is lost on restart)")
		db = store.NewMemoryStore()
	}
	defer db.Close()

	// Initialize provider dispatcher
	dispatcher := provider.NewDispatcher(cfg)

	// Initialize handler
	h := api.NewHandler(db, dispatcher, cfg)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(e)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down chatrelay...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Chatrelay stopped")
}
