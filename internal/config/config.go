package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	MediaLocal      = "local"
	MediaCloudinary = "cloudinary"
	MediaSupabase   = "supabase"
)

// Config holds runtime configuration loaded from environment variables and an
// optional YAML file named by CONFIG_FILE. File values win over the environment.
type Config struct {
	Port              string   `yaml:"port"`
	DatabaseDriver    string   `yaml:"database_driver"`
	DatabaseURL       string   `yaml:"database_url"`
	JWTSecret         string   `yaml:"jwt_secret"`
	JWTIssuer         string   `yaml:"jwt_issuer"`
	AccessTTLSeconds  int64    `yaml:"access_ttl_seconds"`
	RefreshTTLSeconds int64    `yaml:"refresh_ttl_seconds"`
	CorsOrigins       []string `yaml:"cors_origins"`

	MediaBackend        string `yaml:"media_backend"`
	MediaStoragePath    string `yaml:"media_storage_path"`
	MediaPublicBaseURL  string `yaml:"media_public_base_url"`
	MediaMaxUploadBytes int64  `yaml:"media_max_upload_bytes"`

	CloudinaryCloudName    string `yaml:"cloudinary_cloud_name"`
	CloudinaryUploadPreset string `yaml:"cloudinary_upload_preset"`
	CloudinaryAPIBase      string `yaml:"cloudinary_api_base"`

	SupabaseURL    string `yaml:"supabase_url"`
	SupabaseKey    string `yaml:"supabase_key"`
	SupabaseBucket string `yaml:"supabase_bucket"`

	LogDir           string `yaml:"log_dir"`
	LogRetentionDays int    `yaml:"log_retention_days"`
}

// Load reads the environment, applies the CONFIG_FILE overlay and validates.
func Load() (Config, error) {
	cfg := FromEnv()
	if path := envOr("CONFIG_FILE", ""); path != "" {
		if err := cfg.Overlay(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func FromEnv() Config {
	return Config{
		Port:                envOr("PORT", "8080"),
		DatabaseDriver:      envOr("DATABASE_DRIVER", DriverPostgres),
		DatabaseURL:         envOr("DATABASE_URL", ""),
		JWTSecret:           envOr("JWT_SECRET", ""),
		JWTIssuer:           envOr("JWT_ISSUER", "elearning"),
		AccessTTLSeconds:    int64(envOrInt("ACCESS_TTL_SECONDS", 14400)),
		RefreshTTLSeconds:   int64(envOrInt("REFRESH_TTL_SECONDS", 1209600)),
		CorsOrigins:         parseCSV(envOr("CORS_ORIGINS", "")),
		MediaBackend:        envOr("MEDIA_BACKEND", MediaLocal),
		MediaStoragePath:    envOr("MEDIA_STORAGE_PATH", "storage/media"),
		MediaPublicBaseURL:  envOr("MEDIA_PUBLIC_BASE_URL", "/api/media/files"),
		MediaMaxUploadBytes: int64(envOrInt("MEDIA_MAX_UPLOAD_BYTES", 10<<20)),

		CloudinaryCloudName:    envOr("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryUploadPreset: envOr("CLOUDINARY_UPLOAD_PRESET", ""),
		CloudinaryAPIBase:      envOr("CLOUDINARY_API_BASE", "https://api.cloudinary.com/v1_1"),

		SupabaseURL:    envOr("SUPABASE_URL", ""),
		SupabaseKey:    envOr("SUPABASE_KEY", ""),
		SupabaseBucket: envOr("SUPABASE_BUCKET", "media"),

		LogDir:           envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays: envOrInt("LOG_RETENTION_DAYS", 7),
	}
}

// Overlay decodes the YAML file at path on top of cfg. Keys missing from the
// file keep their current values.
func (c *Config) Overlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

// Validate reports every problem at once. Cloudinary and Supabase credentials
// are checked at upload time so the service can boot without them.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("missing env var: JWT_SECRET"))
	}
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("missing env var: DATABASE_URL"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	switch c.MediaBackend {
	case MediaLocal, MediaCloudinary, MediaSupabase:
	default:
		errs = append(errs, fmt.Errorf("unknown MEDIA_BACKEND %q", c.MediaBackend))
	}
	if c.AccessTTLSeconds <= 0 || c.RefreshTTLSeconds <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.MediaMaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MEDIA_MAX_UPLOAD_BYTES must be positive"))
	}
	if c.LogRetentionDays < 1 || c.LogRetentionDays > 7 {
		errs = append(errs, errors.New("LOG_RETENTION_DAYS must be between 1 and 7"))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
