package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret signs tokens only when JANUS_ENV=dev.
const devJWTSecret = "dev-secret"

var ErrMissingJWTSecret = errors.New("JANUS_JWT_SECRET must be set when JANUS_ENV=prod")

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/janus.db"

	// Badge artifacts are written under BadgeDir/qr_codes/.
	BadgeDir string

	// Auth
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Password reset
	ResetTokenTTL time.Duration
	ResetLinkBase string

	// Optional: reset tokens live in memory when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string

	LogLevel string

	// Visit-code collisions are retried this many times before giving up.
	VisitCodeAttempts int

	// How often missing badge files are re-rendered from the visitor rows.
	BadgeSweepInterval time.Duration
}

// Load reads an optional .env file (missing files are ignored) and then
// builds the Config from the environment.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)
	return FromEnv()
}

func FromEnv() Config {
	env := strings.ToLower(getenvDefault("JANUS_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	secret := os.Getenv("JANUS_JWT_SECRET")
	if strings.TrimSpace(secret) == "" && env == "dev" {
		secret = devJWTSecret
	}

	return Config{
		HTTPAddr: getenvDefault("JANUS_HTTP_ADDR", ":8080"),

		Env:    env,
		DBPath: getenvDefault("JANUS_DB_PATH", "./data/janus.db"),

		BadgeDir: getenvDefault("JANUS_BADGE_DIR", "./data/media"),

		JWTSecret:       secret,
		JWTIssuer:       getenvDefault("JANUS_JWT_ISSUER", "janus"),
		AccessTokenTTL:  getenvDuration("JANUS_ACCESS_TOKEN_TTL", 5*time.Minute),
		RefreshTokenTTL: getenvDuration("JANUS_REFRESH_TOKEN_TTL", 24*time.Hour),

		ResetTokenTTL: getenvDuration("JANUS_RESET_TOKEN_TTL", time.Hour),
		ResetLinkBase: strings.TrimRight(getenvDefault("JANUS_RESET_LINK_BASE", "http://localhost:3000/api/reset"), "/"),

		RedisAddr:     os.Getenv("JANUS_REDIS_ADDR"),
		RedisPassword: os.Getenv("JANUS_REDIS_PASSWORD"),

		LogLevel: getenvDefault("JANUS_LOG_LEVEL", "info"),

		VisitCodeAttempts: getenvInt("JANUS_VISIT_CODE_ATTEMPTS", 5),

		BadgeSweepInterval: getenvDuration("JANUS_BADGE_SWEEP_INTERVAL", 6*time.Hour),
	}
}

// Validate rejects configurations that must not serve traffic.
func (c Config) Validate() error {
	if c.Env == "prod" && (strings.TrimSpace(c.JWTSecret) == "" || c.JWTSecret == devJWTSecret) {
		return ErrMissingJWTSecret
	}
	return nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// getenvDuration accepts Go duration strings ("90s", "1h") or, via the
// KEY_SECONDS variant, a plain number of seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	if v := strings.TrimSpace(os.Getenv(key + "_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
