// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	PhotoBackendDisk   = "disk"
	PhotoBackendGridFS = "gridfs"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Port       string `env:"PORT,default=8080"`
	GinMode    string `env:"GIN_MODE,default=release"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`
	LogFormat  string `env:"LOG_FORMAT,default=json"`
	ServiceTag string `env:"SERVICE_NAME,default=travel-review-service"`

	StoreDriver   string `env:"STORE_DRIVER,default=mongo"`
	MongoURI      string `env:"MONGODB_URI,default=mongodb://localhost:27017/"`
	MongoDatabase string `env:"MONGODB_DATABASE,default=travel_reviews"`
	DatabaseURL   string `env:"DATABASE_URL"`

	JWTSecret       string        `env:"JWT_SECRET,default=fallback_secret_key"`
	LegacyJWTSecret string        `env:"JWT_SECRET_KEY"`
	JWTTTL          time.Duration `env:"JWT_TTL,default=24h"`

	UploadDir    string `env:"UPLOAD_DIR,default=/tmp/uploads"`
	PhotoBackend string `env:"PHOTO_BACKEND,default=disk"`
	MaxUploadMB  int64  `env:"MAX_UPLOAD_MB,default=32"`

	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL,default=gemini-1.5-flash-002"`
	GeminiBaseURL   string        `env:"GEMINI_BASE_URL,default=https://generativelanguage.googleapis.com"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT,default=60s"`

	SMTPHost     string `env:"SMTP_HOST,default=smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM,default=travellers.verdict@gmail.com"`
	MailTo       string `env:"MAIL_TO,default=travellers.verdict@gmail.com"`

	CORSOrigins    string  `env:"CORS_ORIGINS,default=*"`
	TrustedProxies string  `env:"TRUSTED_PROXIES"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=5"`
}

// Load reads an optional .env file and decodes the environment into a Config.
func Load(dotenvPaths ...string) (Config, error) {
	for _, p := range dotenvPaths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return Config{}, fmt.Errorf("config: load %s: %w", p, err)
			}
			break
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode env: %w", err)
	}
	// Older deployments set JWT_SECRET_KEY; it applies when JWT_SECRET is unset.
	if _, ok := os.LookupEnv("JWT_SECRET"); !ok && cfg.LegacyJWTSecret != "" {
		cfg.JWTSecret = cfg.LegacyJWTSecret
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.PhotoBackend = strings.ToLower(strings.TrimSpace(cfg.PhotoBackend))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGODB_URI is required for the mongo driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.PhotoBackend {
	case PhotoBackendDisk:
		if c.UploadDir == "" {
			return errors.New("config: UPLOAD_DIR is required for the disk photo backend")
		}
	case PhotoBackendGridFS:
		if c.StoreDriver != DriverMongo {
			return errors.New("config: PHOTO_BACKEND=gridfs requires STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("config: unknown PHOTO_BACKEND %q", c.PhotoBackend)
	}

	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must not be empty")
	}
	if c.JWTTTL <= 0 {
		return errors.New("config: JWT_TTL must be positive")
	}
	return nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, p := range strings.Split(c.CORSOrigins, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Proxies lists the addresses or CIDRs whose X-Forwarded-For is believed.
// Empty means none: the client IP is the socket peer.
func (c Config) Proxies() []string {
	var proxies []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

// MaxUploadBytes caps the request body of a photo upload.
func (c Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 32 << 20
	}
	return c.MaxUploadMB << 20
}
