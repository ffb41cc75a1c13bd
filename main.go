package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mymind/cache"
	"mymind/config"
	"mymind/database"
	"mymind/events"
	"mymind/handlers"
	"mymind/posts"
	"mymind/routes"
	"mymind/storage"
	"mymind/users"
)

func main() {
	log.Println("Starting mymind backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// ===== MONGODB (with retry) =====
	var db *database.Mongo
	var dbErr error
	for i := 1; i <= 3; i++ {
		if db, dbErr = database.Connect(cfg); dbErr == nil {
			break
		}
		log.Printf("MongoDB connection attempt %d failed: %v", i, dbErr)
		time.Sleep(2 * time.Second)
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}
	defer db.Disconnect()

	if err := db.EnsureIndexes(); err != nil {
		log.Fatal("Failed to ensure indexes: ", err)
	}

	// ===== ASSET STORE =====
	assets, err := storage.NewCloudinary(cfg)
	if err != nil {
		log.Fatal("Cloudinary configuration error: ", err)
	}

	// ===== OPTIONAL TRENDING CACHE =====
	var trendingCache posts.TrendingCache
	if cfg.RedisAddr != "" {
		trending := cache.NewTrending(cfg)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := trending.Ping(pingCtx); err != nil {
			log.Printf("Redis unavailable, trending cache disabled: %v", err)
		} else {
			trendingCache = trending
			defer trending.Close()
			log.Println("Redis connected successfully")
		}
		cancel()
	}

	// ===== OPTIONAL EVENT PUBLISHER =====
	var publisher posts.EventPublisher
	if cfg.NatsURL != "" {
		pub, err := events.Connect(cfg.NatsURL)
		if err != nil {
			log.Printf("NATS unavailable, engagement events disabled: %v", err)
		} else {
			publisher = pub
			defer pub.Close()
			log.Println("NATS connected successfully")
		}
	}

	// ===== WIRING =====
	userStore := users.NewStore(db.Users)
	postRepo := posts.NewMongoRepository(db.Posts)
	postSvc := posts.NewService(postRepo, assets, userStore, trendingCache, publisher)
	handler := handlers.New(postSvc, userStore, cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.Setup(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped gracefully")
}
