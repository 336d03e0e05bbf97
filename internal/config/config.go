package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

const (
	// DefaultQuotaBytes is the per-user storage cap (10 MiB).
	DefaultQuotaBytes int64 = 10 << 20

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	BackendLocal = "local"
	BackendR2    = "r2"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	PublicBaseURL   string
	Endpoint        string // overrides the account endpoint, e.g. for MinIO
}

type StorageConfig struct {
	Backend string
	Dir     string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FrontendURL  string
}

// Enabled reports whether Google sign-in should be exposed.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type Config struct {
	Port        string
	Environment string
	DBDriver    string
	DBURL       string
	JWTSecret   string
	SessionTTL  time.Duration
	QuotaBytes  int64
	Storage     StorageConfig
	R2          R2Config
	Google      GoogleConfig
	CorsConfig  cors.Options

	// AuthRatePerMinute limits signup and login attempts per client address; 0 disables it.
	AuthRatePerMinute int
	AuthRateBurst     int
}

// IsProduction reports whether cookies and logging should use production settings.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the optional dotenv file named by ENV_FILE (default .env) and
// builds a Config from the process environment.
func Load() (Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	// A missing dotenv file is normal outside development.
	_ = godotenv.Load(envFile)

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_TTL: %w", err)
	}

	quota, err := strconv.ParseInt(getEnv("STORAGE_QUOTA_BYTES", strconv.FormatInt(DefaultQuotaBytes, 10)), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_QUOTA_BYTES: %w", err)
	}

	ratePerMinute, err := strconv.Atoi(getEnv("AUTH_RATE_PER_MINUTE", "20"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_RATE_PER_MINUTE: %w", err)
	}
	rateBurst, err := strconv.Atoi(getEnv("AUTH_RATE_BURST", "5"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_RATE_BURST: %w", err)
	}

	port := getEnv("PORT", "8080")
	cfg := Config{
		Port:        port,
		Environment: getEnv("ENV", "development"),
		DBDriver:    getEnv("DB_DRIVER", DriverPostgres),
		DBURL:       getEnv("DB_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		SessionTTL:  ttl,
		QuotaBytes:  quota,
		Storage: StorageConfig{
			Backend: getEnv("BLOB_BACKEND", BackendLocal),
			Dir:     getEnv("UPLOAD_DIR", "uploads"),
		},
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", ""),
			Region:          getEnv("R2_REGION", "auto"),
			PublicBaseURL:   getEnv("R2_PUBLIC_BASE_URL", ""),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:"+port+"/auth/google/callback"),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:"+port),
		},
		CorsConfig:        CorsConfig(splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))),
		AuthRatePerMinute: ratePerMinute,
		AuthRateBurst:     rateBurst,
	}

	// Development keeps working without a secret; production must set one.
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "dev-only-secret"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the combination of settings can be served.
func (c Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.QuotaBytes <= 0 {
		errs = append(errs, errors.New("STORAGE_QUOTA_BYTES must be positive"))
	}
	if c.AuthRatePerMinute < 0 || (c.AuthRatePerMinute > 0 && c.AuthRateBurst <= 0) {
		errs = append(errs, errors.New("AUTH_RATE_PER_MINUTE must be non-negative and AUTH_RATE_BURST positive when limiting"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	switch c.Storage.Backend {
	case BackendLocal:
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for the local backend"))
		}
	case BackendR2:
		if c.R2.BucketName == "" || c.R2.AccessKeyID == "" || c.R2.SecretAccessKey == "" {
			errs = append(errs, errors.New("r2 backend requires R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME"))
		}
		if c.R2.AccountID == "" && c.R2.Endpoint == "" {
			errs = append(errs, errors.New("r2 backend requires R2_ACCOUNT_ID or R2_ENDPOINT"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BLOB_BACKEND %q", c.Storage.Backend))
	}

	return errors.Join(errs...)
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func CorsConfig(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
