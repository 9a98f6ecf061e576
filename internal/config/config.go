package config

import (
	"os"
	"strconv"
	"time"

	"gala_server/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	RedisURL      string
	AdminPassword string
	JWTSecret     string

	LogLevel string
	LogJSON  bool

	TeamCount        int
	TickInterval     time.Duration
	SnapshotInterval time.Duration

	// Admin login rate limit (fixed window)
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		logger.Fatal("ADMIN_PASSWORD is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Redis необязателен: без него сервер работает только в памяти
	redisURL := os.Getenv("REDIS_URL")

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	teamCount := 3
	if v := os.Getenv("TEAM_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			teamCount = n
		}
	}

	tick := 200 * time.Millisecond
	if v := os.Getenv("TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			tick = time.Duration(n) * time.Millisecond
		}
	}

	snapshot := 10 * time.Second
	if v := os.Getenv("SNAPSHOT_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			snapshot = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			authRateWindow = time.Duration(n) * time.Second
		}
	}

	return &Config{
		AppPort:          port,
		RedisURL:         redisURL,
		AdminPassword:    adminPassword,
		JWTSecret:        jwtSecret,
		LogLevel:         logLevel,
		LogJSON:          os.Getenv("LOG_JSON") == "true",
		TeamCount:        teamCount,
		TickInterval:     tick,
		SnapshotInterval: snapshot,
		AuthRateLimit:    authRateLimit,
		AuthRateWindow:   authRateWindow,
	}
}
