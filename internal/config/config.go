package config

import (
	"os"
	"time"
)

// Config holds everything the server reads from the environment. main loads
// a .env file first (godotenv), so local development only needs that file.
type Config struct {
	HTTPAddr   string
	DSN        string
	RedisAddr  string
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	UploadDir  string
	CORSOrigin string
}

func Load() Config {
	return Config{
		HTTPAddr:   getenv("HTTP_ADDR", ":8080"),
		DSN:        getenv("DB_DSN", "root:secret@tcp(127.0.0.1:3306)/cartly?parseTime=true"),
		RedisAddr:  os.Getenv("REDIS_ADDR"), // empty means in-memory token blacklist
		JWTSecret:  getenv("JWT_SECRET", "dev-only-secret-change-me"),
		AccessTTL:  getduration("JWT_ACCESS_TTL", 30*time.Minute),
		RefreshTTL: getduration("JWT_REFRESH_TTL", 7*24*time.Hour),
		UploadDir:  getenv("UPLOAD_DIR", "./uploads"),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:5173"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
