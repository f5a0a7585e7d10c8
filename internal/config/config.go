package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Поддерживаемые хранилища
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	Environment string
	ServiceName string
	LogLevel    string // пусто: debug в development, info в production
	HTTPAddr    string
	CORSOrigins string

	Store             string
	DBDSN             string
	SQLitePath        string
	MigrationsEnabled bool
	SeedDemoUsers     bool

	RedisAddr    string
	RoleCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	TelegramToken  string
	TelegramChatID int64

	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64

	BookingRejectPast      bool
	FeedbackRequireOwner   bool
	FeedbackRequireElapsed bool
}

// Load читает конфигурацию из .env (если есть) и переменных окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv собирает конфигурацию только из переменных окружения
func FromEnv() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Environment: str("ENV", "development"),
		ServiceName: str("SERVICE_NAME", "coach-scheduler"),
		LogLevel:    strings.ToLower(os.Getenv("LOG_LEVEL")),
		HTTPAddr:    str("HTTP_ADDR", ":3001"),
		CORSOrigins: str("CORS_ORIGINS", "*"),

		Store:             strings.ToLower(str("STORE", StorePostgres)),
		DBDSN:             os.Getenv("DB_DSN"),
		SQLitePath:        str("SQLITE_PATH", "slots.db"),
		MigrationsEnabled: p.boolean("MIGRATIONS_ENABLED", true),
		SeedDemoUsers:     p.boolean("SEED_DEMO_USERS", false),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RoleCacheTTL: p.duration("ROLE_CACHE_TTL", 5*time.Minute),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   str("KAFKA_TOPIC", "slots.events.v1"),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: p.integer("TELEGRAM_CHAT_ID", 0),

		OTelEnabled:     p.boolean("OTEL_ENABLED", false),
		OTelEndpoint:    str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: p.float("OTEL_SAMPLING_RATIO", 1),

		BookingRejectPast:      p.boolean("BOOKING_REJECT_PAST", false),
		FeedbackRequireOwner:   p.boolean("FEEDBACK_REQUIRE_OWNER", false),
		FeedbackRequireElapsed: p.boolean("FEEDBACK_REQUIRE_ELAPSED", false),
	}

	if p.err != nil {
		return nil, p.err
	}

	// Проверяем обязательные поля
	switch cfg.Store {
	case StorePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("STORE must be one of postgres, sqlite, memory (got %q)", cfg.Store)
	}

	if cfg.LogLevel != "" {
		if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL value %q: %w", cfg.LogLevel, err)
		}
	}

	if cfg.OTelSampleRatio < 0 || cfg.OTelSampleRatio > 1 {
		return nil, fmt.Errorf("OTEL_SAMPLING_RATIO must be within [0,1] (got %v)", cfg.OTelSampleRatio)
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

// IsProduction проверяет production окружение
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser запоминает первую ошибку разбора
type parser struct {
	err error
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
}

func (p *parser) boolean(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) integer(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}
