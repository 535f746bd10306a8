package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends.
const (
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
)

// Upload storage backends.
const (
	UploadBackendDisk = "disk"
	UploadBackendS3   = "s3"
)

// Upload file-naming strategies.
const (
	NamingTimestamp = "timestamp"
	NamingRandom    = "random"
)

// Config aggregates runtime configuration for the orphan-database API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	Session  SessionConfig
	Auth     AuthConfig
	Upload   UploadConfig
	CORS     CORSConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// RedisConfig contains Redis connection details for the session store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinIOConfig carries MinIO connection and bucket information for the
// object-store upload backend.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	PresignTTL      time.Duration
}

// SessionConfig groups the cookie-session settings.
type SessionConfig struct {
	Backend      string
	CookieName   string
	Secret       string
	TTL          time.Duration
	CookieSecure bool
	CookieDomain string
}

// AuthConfig groups account-management settings.
type AuthConfig struct {
	BcryptCost int
}

// UploadConfig parameterizes the file-ingestion subsystem.
type UploadConfig struct {
	Backend string
	// PublicDir is the root under which the two bucket directories live.
	PublicDir string
	MaxSize   int64
	Naming    string
	// SilentAuthDenial keeps the historical behavior of answering
	// unauthenticated uploads exactly like uploads with no file attached.
	SilentAuthDenial bool
}

// CORSConfig lists the origins allowed to send credentialed requests.
type CORSConfig struct {
	AllowedOrigins []string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("ORPHANDB_API_HOST", "0.0.0.0"),
			Port:         getInt("ORPHANDB_API_PORT", 8080),
			ReadTimeout:  getDuration("ORPHANDB_API_READ_TIMEOUT", 5*time.Minute),
			WriteTimeout: getDuration("ORPHANDB_API_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("ORPHANDB_API_IDLE_TIMEOUT", 120*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "orphandb_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "orphandb"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		Redis: RedisConfig{
			Addr:     getString("REDIS_ADDR", "localhost:6379"),
			Password: getString("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "orphandb"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "orphandb-public"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
			PresignTTL:      getDuration("MINIO_PRESIGN_TTL", 15*time.Minute),
		},
		Session: SessionConfig{
			Backend:      strings.ToLower(getString("ORPHANDB_SESSION_BACKEND", SessionBackendPostgres)),
			CookieName:   getString("ORPHANDB_SESSION_COOKIE_NAME", "session_id"),
			Secret:       getString("ORPHANDB_SESSION_SECRET", "change-me-to-a-32-byte-secret"),
			TTL:          getDuration("ORPHANDB_SESSION_TTL", 24*time.Hour),
			CookieSecure: getBool("ORPHANDB_SESSION_COOKIE_SECURE", false),
			CookieDomain: getString("ORPHANDB_SESSION_COOKIE_DOMAIN", ""),
		},
		Auth: loadAuthConfig(),
		Upload: UploadConfig{
			Backend:          strings.ToLower(getString("ORPHANDB_UPLOAD_BACKEND", UploadBackendDisk)),
			PublicDir:        getString("ORPHANDB_UPLOAD_PUBLIC_DIR", "./public"),
			MaxSize:          getInt64("ORPHANDB_UPLOAD_MAX_SIZE", 100*1024*1024),
			Naming:           strings.ToLower(getString("ORPHANDB_UPLOAD_NAMING", NamingTimestamp)),
			SilentAuthDenial: getBool("ORPHANDB_UPLOAD_SILENT_AUTH_DENIAL", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStrings("ORPHANDB_CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("ORPHANDB_METRICS_PATH", "/metrics"),
		},
	}

	switch cfg.Session.Backend {
	case SessionBackendPostgres, SessionBackendRedis:
	default:
		return Config{}, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	switch cfg.Upload.Backend {
	case UploadBackendDisk, UploadBackendS3:
	default:
		return Config{}, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}

	switch cfg.Upload.Naming {
	case NamingTimestamp, NamingRandom:
	default:
		return Config{}, fmt.Errorf("unknown upload naming strategy %q", cfg.Upload.Naming)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getStrings(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func loadAuthConfig() AuthConfig {
	cost := getInt("ORPHANDB_AUTH_BCRYPT_COST", 12)
	if cost < 4 || cost > 31 {
		cost = 12
	}

	return AuthConfig{BcryptCost: cost}
}
