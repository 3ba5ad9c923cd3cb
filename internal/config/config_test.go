package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"elearning-backend-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.MediaLocal, cfg.MediaBackend)
	assert.Equal(t, int64(14400), cfg.AccessTTLSeconds)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CorsOrigins)
	assert.Equal(t, 7, cfg.LogRetentionDays)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestOverlayFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_driver: sqlite
database_url: file:test.db
media_backend: cloudinary
cloudinary_cloud_name: demo
cors_origins:
  - http://ui.test
`), 0o644))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, config.DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, "demo", cfg.CloudinaryCloudName)
	assert.Equal(t, []string{"http://ui.test"}, cfg.CorsOrigins)
}

func TestValidate(t *testing.T) {
	base := config.Config{
		DatabaseDriver:      config.DriverMemory,
		JWTSecret:           "x",
		AccessTTLSeconds:    1,
		RefreshTTLSeconds:   1,
		MediaBackend:        config.MediaLocal,
		MediaMaxUploadBytes: 1,
		LogRetentionDays:    3,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.DatabaseDriver = "mysql" }},
		{"unknown media backend", func(c *config.Config) { c.MediaBackend = "s3" }},
		{"zero ttl", func(c *config.Config) { c.AccessTTLSeconds = 0 }},
		{"retention too long", func(c *config.Config) { c.LogRetentionDays = 30 }},
		{"no upload limit", func(c *config.Config) { c.MediaMaxUploadBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
