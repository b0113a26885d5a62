package main

import (
	"log"

	"github.com/cartly/cartly-golang/internal/auth"
	"github.com/cartly/cartly-golang/internal/checkout"
	"github.com/cartly/cartly-golang/internal/config"
	"github.com/cartly/cartly-golang/internal/database"
	"github.com/cartly/cartly-golang/internal/handlers"
	"github.com/cartly/cartly-golang/internal/routes"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Refresh-token revocation lives in Redis when configured, so logouts
	// survive restarts. Without Redis a process-local blacklist is used.
	var blacklist auth.TokenBlacklist
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		blacklist = auth.NewRedisBlacklist(client)
		log.Printf("Token blacklist backed by Redis at %s", cfg.RedisAddr)
	} else {
		blacklist = auth.NewMemoryBlacklist()
		log.Println("REDIS_ADDR not set; using in-memory token blacklist")
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	app := &handlers.Handlers{
		DB:        db,
		Tokens:    tokens,
		Blacklist: blacklist,
		Checkout:  checkout.NewService(checkout.NewSQLStore(db)),
		UploadDir: cfg.UploadDir,
	}

	router := routes.SetupRouter(app, cfg.CORSOrigin)

	log.Printf("Starting Cartly API server on %s...", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
