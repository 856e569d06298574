package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "travel_reviews", cfg.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, PhotoBackendDisk, cfg.PhotoBackend)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/reviews?sslmode=disable")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "http://a.test/, http://b.test")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
}

func TestLoadReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MONGODB_DATABASE=from_dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("MONGODB_DATABASE") })

	cfg, err := Load(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv", cfg.MongoDatabase)
}

func TestValidate(t *testing.T) {
	base := Config{
		StoreDriver:  DriverMemory,
		PhotoBackend: PhotoBackendDisk,
		UploadDir:    "/tmp/uploads",
		JWTSecret:    "s",
		JWTTTL:       time.Hour,
	}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"unknown driver":          func(c *Config) { c.StoreDriver = "sqlite" },
		"postgres without url":    func(c *Config) { c.StoreDriver = DriverPostgres },
		"gridfs without mongo":    func(c *Config) { c.PhotoBackend = PhotoBackendGridFS },
		"unknown photo backend":   func(c *Config) { c.PhotoBackend = "s3" },
		"empty secret":            func(c *Config) { c.JWTSecret = "" },
		"non-positive token life": func(c *Config) { c.JWTTTL = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestMaxUploadBytes(t *testing.T) {
	assert.Equal(t, int64(32<<20), Config{}.MaxUploadBytes())
	assert.Equal(t, int64(4<<20), Config{MaxUploadMB: 4}.MaxUploadBytes())
}

func TestLegacyJWTSecretKey(t *testing.T) {
	t.Run("used when JWT_SECRET is unset", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "legacy")
		t.Setenv("JWT_SECRET", "")
		require.NoError(t, os.Unsetenv("JWT_SECRET"))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "legacy", cfg.JWTSecret)
	})

	t.Run("JWT_SECRET wins", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "legacy")
		t.Setenv("JWT_SECRET", "current")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "current", cfg.JWTSecret)
	})
}

func TestProxies(t *testing.T) {
	assert.Nil(t, Config{}.Proxies())
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, Config{TrustedProxies: " 10.0.0.0/8, ,127.0.0.1"}.Proxies())
}
