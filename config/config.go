package config

import (
	"os"
	"strings"
)

// Config is built once in main and passed by reference to every component
// that needs it. Nothing reads the environment after startup.
type Config struct {
	Port           string
	GinMode        string
	MongoURI       string
	DBName         string
	JWTSecret      string
	CloudinaryURL  string
	AllowedOrigins []string
	RedisAddr      string
	RedisPassword  string
	NatsURL        string
}

func Load() *Config {
	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		MongoURI:      getenv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		DBName:        getenv("MONGODB_DB", "mymind"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		NatsURL:       os.Getenv("NATS_URL"),
	}

	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
