package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	Database DatabaseConfig

	RedisURL       string
	ReportCacheTTL time.Duration

	KafkaBrokers []string
	EventsTopic  string

	Casdoor CasdoorConfig
	Admin   AdminConfig
}

type DatabaseConfig struct {
	DSN             string
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// Enabled reports whether enough is configured to validate casdoor tokens
func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != "" && c.Cert != ""
}

type AdminConfig struct {
	Username string
	Email    string
	FullName string
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads .env when present, then the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Environment: GetEnv("ENVIRONMENT", "development"),
		Port:        GetEnv("PORT", "8080"),
		RedisURL:    GetEnv("REDIS_URL"),
		EventsTopic: GetEnv("EVENTS_TOPIC", "quiz.events"),
		Casdoor: CasdoorConfig{
			Endpoint:     GetEnv("CASDOOR_ENDPOINT"),
			ClientID:     GetEnv("CASDOOR_CLIENT_ID"),
			ClientSecret: GetEnv("CASDOOR_CLIENT_SECRET"),
			Cert:         GetEnv("CASDOOR_CERTIFICATE"),
			Organization: GetEnv("CASDOOR_ORGANIZATION"),
			Application:  GetEnv("CASDOOR_APPLICATION"),
		},
		Admin: AdminConfig{
			Username: GetEnv("ADMIN_USERNAME", "admin"),
			Email:    GetEnv("ADMIN_EMAIL", "admin@quiz.com"),
			FullName: GetEnv("ADMIN_FULLNAME", "Quiz Master Admin"),
		},
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(GetEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if brokers := GetEnv("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	if cfg.ReportCacheTTL, err = getDuration("REPORT_CACHE_TTL", 2*time.Minute); err != nil {
		return nil, err
	}

	cfg.Database.DSN = GetEnv("DATABASE_URL")
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			GetEnv("DB_HOST", "localhost"),
			GetEnv("DB_PORT", "5432"),
			GetEnv("DB_USER", "postgres"),
			GetEnv("DB_PASSWORD"),
			GetEnv("DB_NAME", "quiz"),
			GetEnv("DB_SSLMODE", "disable"),
		)
	}
	if cfg.Database.AutoMigrate, err = getBool("DB_AUTO_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	raw := GetEnv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := GetEnv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := GetEnv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}
