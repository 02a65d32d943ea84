package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // godotenv loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/saeedpanahi1994/goldan-plant-care/internal/config"     // Internal config loader
	"github.com/saeedpanahi1994/goldan-plant-care/internal/database"   // Internal database opener
	"github.com/saeedpanahi1994/goldan-plant-care/internal/handler"    // HTTP handlers
	"github.com/saeedpanahi1994/goldan-plant-care/internal/middleware" // Response cache and rate limiting
	"github.com/saeedpanahi1994/goldan-plant-care/internal/queue"      // Care event consumer
	"github.com/saeedpanahi1994/goldan-plant-care/internal/repository" // Data access layer
	"github.com/saeedpanahi1994/goldan-plant-care/internal/router"     // Route registration
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg) // Connect to MySQL
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the single pooled DB handle.
	catalogRepo := repository.NewCatalogRepo(db)
	gardenRepo := repository.NewGardenRepo(db)
	userPlantRepo := repository.NewUserPlantRepo(db)
	careEventRepo := repository.NewCareEventRepo(db)

	plantHandler := handler.NewPlantHandler(gardenRepo, catalogRepo, userPlantRepo, careEventRepo)
	catalogHandler := handler.NewCatalogHandler(catalogRepo)

	e := echo.New()

	// Redis-backed response cache and rate limiting. A nil client disables
	// both and the API serves every request from MySQL. Both middlewares
	// key on the authenticated user, so they are registered per route
	// group (after JWTAuth on the plant routes) rather than globally.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	respCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)                                                     // Health check
	router.RegisterCatalog(e, catalogHandler, rateLimit, respCache)              // Public catalog browse
	router.RegisterPlants(e, plantHandler, cfg.JWTSecret, rateLimit, respCache)  // Authenticated garden/plant routes

	// Care event consumer feeds logs/care.log for the notification
	// subsystem. It reconnects on its own; run it for the process lifetime.
	go func() {
		if err := queue.StartCareConsumer(); err != nil {
			log.Printf("care consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
