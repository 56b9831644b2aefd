package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	"parknest/internal/api"
	"parknest/internal/auth"
	"parknest/internal/config"
	"parknest/internal/db"
	"parknest/internal/service"
	"parknest/internal/storage"
	"parknest/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var (
		store storage.Store
		jobs  *service.JobService
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store = storage.NewMemoryStore()
		log.Println("Using in-memory store, data is lost on restart")
	default:
		var conn *sql.DB
		conn, err = db.Open(cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer conn.Close()

		cached, err := storage.NewCachedStore(storage.NewSQLStore(conn, cfg.StoreDriver), cfg.CacheSize)
		if err != nil {
			log.Fatalf("%v", err)
		}
		store = cached
		jobs = service.NewJobService(cached)
		if err := jobs.Start(cfg.CacheSweep); err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("Using %s store", cfg.StoreDriver)
	}

	notifier := service.NewNotifier(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName)
	provider := service.NewDataProvider(cfg.MockLatency)
	hub := websocket.NewHub()

	profiles := auth.NewProfiles(cfg.ProfileSecret)
	handler := api.NewHandler(store, notifier, provider, hub, cfg.MapTileURL)
	router := api.NewRouter(handler, profiles, cfg.CORSOrigins)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handlers.CombinedLoggingHandler(os.Stdout, router),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if jobs != nil {
		jobs.Stop()
	}
	// hijacked map connections are not tracked by Shutdown
	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
