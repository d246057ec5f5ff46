package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kerem-kaynak/kolektor/internal/appcontext"
	"github.com/kerem-kaynak/kolektor/internal/schema"
	"github.com/kerem-kaynak/kolektor/internal/services"
	"github.com/kerem-kaynak/kolektor/internal/wizard"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 512 << 20

func InitContext() (*appcontext.Context, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Warn("No .env file found, using environment variables")
	}

	logger, err := InitLogger()
	if err != nil {
		return nil, err
	}

	engine, err := InitEngineClient(logger)
	if err != nil {
		return nil, err
	}

	sessions := InitSessionManager(engine, logger)

	ctx := &appcontext.Context{
		Logger: logger,

		Engine:   engine,
		Sessions: sessions,

		Port:            envString("PORT", "8080"),
		MaxUploadBytes:  envInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		SchemaPeekBytes: int(envInt64("SCHEMA_PEEK_BYTES", schema.DefaultPeekBytes)),
		WatchInterval:   envDuration("WATCH_INTERVAL_SECONDS", services.DefaultWatchInterval),
	}

	return ctx, nil
}

func InitLogger() (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if os.Getenv("ENVIRONMENT") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func InitEngineClient(logger *zap.Logger) (*services.EngineClient, error) {
	baseURL := os.Getenv("ENGINE_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("ENGINE_API_URL environment variable is not set")
	}

	client, err := services.NewEngineClient(services.EngineConfig{
		BaseURL: baseURL,
		APIKey:  os.Getenv("ENGINE_API_KEY"),
		Timeout: envDuration("ENGINE_TIMEOUT_SECONDS", 0),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine client: %w", err)
	}
	return client, nil
}

func InitSessionManager(engine *services.EngineClient, logger *zap.Logger) *wizard.Manager {
	ttl := envDuration("SESSION_TTL_SECONDS", wizard.DefaultSessionTTL)
	return wizard.NewManager(engine, logger, ttl)
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		zap.L().Warn("Ignoring invalid environment value", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return value
}

// envDuration reads a whole number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	seconds := envInt64(key, 0)
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
