package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=zinc_management port=5432 sslmode=disable"

type Config struct {
	HTTPPort       string
	DatabaseDSN    string
	StaticDir      string // front-end files, login.html is the index
	CORSOrigins    string
	JWTSecret      string
	AuthRequired   bool
	ZincTypes      []string // fixed set reported by GET /api/stock
	RedisAddress   string   // optional, enables the cross-instance outbound lock
	MetricsEnabled bool
	LogLevel       string
	DBMaxOpenConns int
	DBMaxIdleConns int
}

// Load reads the configuration from the environment. A local .env file is
// loaded first when present; real environment variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		StaticDir:      getEnv("STATIC_DIR", "./web"),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "*"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AuthRequired:   getEnvBool("AUTH_REQUIRED", false),
		ZincTypes:      splitList(getEnv("STOCK_ZINC_TYPES", "A,B,C,D")),
		RedisAddress:   getEnv("REDIS_ADDRESS", ""),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 10),
	}
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	if len(c.ZincTypes) == 0 {
		return errors.New("STOCK_ZINC_TYPES must list at least one zinc type")
	}
	if c.AuthRequired && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters when AUTH_REQUIRED is set")
	}
	return nil
}

// Warnings lists non-fatal settings worth a log line at startup.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN is using the default local value")
	}
	if c.CORSOrigins == "*" {
		out = append(out, "CORS_ALLOWED_ORIGINS allows every origin")
	}
	if c.JWTSecret == "" {
		out = append(out, "JWT_SECRET is empty, an ephemeral secret is generated and tokens will not survive a restart")
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
