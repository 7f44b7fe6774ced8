package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"

	BackendGorm      = "gorm"
	BackendFirestore = "firestore"
	BackendRedis     = "redis"
	BackendMemory    = "memory"
)

var (
	ErrUnknownDriver   = errors.New("unknown DB_DRIVER")
	ErrUnknownAuthMode = errors.New("unknown AUTH_MODE")
	ErrUnknownBackend  = errors.New("unknown STORE_BACKEND")
	ErrMissingSetting  = errors.New("missing required setting")
)

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Auth
	AuthMode         string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Document store
	StoreBackend        string
	FirebaseProjectID   string
	FirebaseCredentials string
	FirestoreCollection string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	RedisPrefix         string

	// Pantry
	CategoriesPath       string
	WorkspaceIdleTimeout time.Duration

	// Observability
	LogLevel         string
	LogRetentionDays int
	SentryDSN        string
	AppEnv           string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "pantry_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "pantry.db"),

		AuthMode:         getEnv("AUTH_MODE", AuthJWT),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		StoreBackend:        getEnv("STORE_BACKEND", BackendGorm),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		FirestoreCollection: getEnv("FIRESTORE_COLLECTION", "pantryItems"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             parseInt(getEnv("REDIS_DB", "0"), 0),
		RedisPrefix:         getEnv("REDIS_PREFIX", "pantry"),

		CategoriesPath:       getEnv("CATEGORIES_PATH", ""),
		WorkspaceIdleTimeout: parseDuration(getEnv("WORKSPACE_IDLE_TIMEOUT", "30m"), 30*time.Minute),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		AppEnv:           getEnv("APP_ENV", "development"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

// Validate reports the first setting that would keep the server from starting.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
		if c.DBPassword == "" {
			return fmt.Errorf("%w: DB_PASSWORD for %s", ErrMissingSetting, c.DBDriver)
		}
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%w: DB_PATH", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.DBDriver)
	}

	switch c.AuthMode {
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("%w: JWT_SECRET", ErrMissingSetting)
		}
	case AuthFirebase:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAuthMode, c.AuthMode)
	}

	switch c.StoreBackend {
	case BackendGorm, BackendMemory, BackendFirestore:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: REDIS_ADDR", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StoreBackend)
	}

	if c.NeedsFirebase() && c.FirebaseProjectID == "" {
		return fmt.Errorf("%w: FIREBASE_PROJECT_ID", ErrMissingSetting)
	}
	return nil
}

// NeedsFirebase reports whether the Firebase app has to be initialized.
func (c *Config) NeedsFirebase() bool {
	return c.AuthMode == AuthFirebase || c.StoreBackend == BackendFirestore
}

// DSN returns the connection string for DBDriver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverMySQL:
		return c.DBUser + ":" + c.DBPassword +
			"@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
			"?charset=utf8mb4&parseTime=True&loc=UTC"
	case DriverSQLite:
		return c.DBPath
	default:
		return "host=" + c.DBHost +
			" user=" + c.DBUser +
			" password=" + c.DBPassword +
			" dbname=" + c.DBName +
			" port=" + c.DBPort +
			" sslmode=" + c.DBSSLMode +
			" TimeZone=UTC"
	}
}

// RedactedDSN is DSN with the password masked, for logs.
func (c *Config) RedactedDSN() string {
	if c.DBDriver == DriverSQLite {
		return c.DBPath
	}
	u := url.URL{
		Scheme: c.DBDriver,
		User:   url.UserPassword(c.DBUser, "xxxxx"),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + c.DBName,
	}
	return u.Redacted()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
