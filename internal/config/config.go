package config

import (
	"os"
	"strconv"
	"time"

	"tap_duel/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string // optional, match history is disabled without it
	RedisAddr     string // optional, falls back to in-process storage
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	AllowedOrigin string

	AssetDir        string
	MatchConfigPath string
	RefreshHz       int

	LogLevel string
	LogJSON  bool

	APIRateLimit  int
	APIRateWindow time.Duration

	// websocket connects per device
	SessionRateLimit  int
	SessionRateWindow time.Duration
	SessionIdle       time.Duration
}

// Load reads the process configuration from env (and .env when present)
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	assetDir := os.Getenv("ASSET_DIR")
	if assetDir == "" {
		assetDir = "assets"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:         port,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envInt("REDIS_DB", 0),
		JWTSecret:       jwtSecret,
		AllowedOrigin:   os.Getenv("ALLOWED_ORIGIN"),
		AssetDir:        assetDir,
		MatchConfigPath: os.Getenv("MATCH_CONFIG"),
		RefreshHz:       envInt("REFRESH_HZ", 60),
		LogLevel:        logLevel,
		LogJSON:         os.Getenv("LOG_JSON") == "true",
		APIRateLimit:    envInt("API_RATE_LIMIT", 60),
		APIRateWindow:   time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,

		SessionRateLimit:  envInt("SESSION_RATE_LIMIT", 10),
		SessionRateWindow: time.Duration(envInt("SESSION_RATE_WINDOW_SECONDS", 60)) * time.Second,
		SessionIdle:       time.Duration(envInt("SESSION_IDLE_SECONDS", 300)) * time.Second,
	}
}

// envInt returns a positive integer from env or def
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warn("ignoring invalid integer env", "key", key, "value", v)
		return def
	}
	return n
}
