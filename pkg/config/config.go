package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	PLM           PLMConfig
	Catalog       CatalogConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Observability ObservabilityConfig
	Demo          DemoConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

// PLMConfig describes the remote product-lifecycle tenant and its OAuth client.
type PLMConfig struct {
	TenantID         string
	IONAPIURL        string
	ProviderURL      string
	ClientID         string
	ClientSecret     string
	ServiceAccessKey string
	ServiceSecretKey string
	SeasonID         int
	ArchivedStatus   int
	RequestsPerSec   float64
	RequestBurst     int
	Timeout          time.Duration
	TokenMargin      time.Duration
	DefaultTokenTTL  time.Duration
}

// TokenURL is the OAuth2 token endpoint under the SSO provider.
func (c *PLMConfig) TokenURL() string {
	return strings.TrimRight(c.ProviderURL, "/") + "/token.oauth2"
}

// RevokeURL is the OAuth2 revocation endpoint under the SSO provider.
func (c *PLMConfig) RevokeURL() string {
	return strings.TrimRight(c.ProviderURL, "/") + "/revoke_token.oauth2"
}

type CatalogConfig struct {
	Source       string // excel, csv or postgres
	SegmentPath  string
	ThemePath    string
	DetailPath   string
	LegacyPath   string
	ReloadSpec   string
	SegmentSheet string
	ThemeSheet   string
	DetailSheet  string
	LegacySheet  string
	// Seed copies the workbooks into PostgreSQL on startup.
	Seed bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Migrate  bool
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TokenKey string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

type DemoConfig struct {
	Enabled bool
	Seed    int64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 3000),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
		},
		PLM: PLMConfig{
			TenantID:         getEnv("PLM_TENANT_ID", ""),
			IONAPIURL:        getEnv("PLM_ION_API_URL", "https://mingle-ionapi.eu1.inforcloudsuite.com"),
			ProviderURL:      getEnv("PLM_PROVIDER_URL", ""),
			ClientID:         getEnv("PLM_CLIENT_ID", ""),
			ClientSecret:     getEnv("PLM_CLIENT_SECRET", ""),
			ServiceAccessKey: getEnv("PLM_SERVICE_ACCESS_KEY", ""),
			ServiceSecretKey: getEnv("PLM_SERVICE_SECRET_KEY", ""),
			SeasonID:         getEnvAsInt("PLM_SEASON_ID", 1),
			ArchivedStatus:   getEnvAsInt("PLM_ARCHIVED_STATUS", 103),
			RequestsPerSec:   getEnvAsFloat("PLM_REQUESTS_PER_SECOND", 5),
			RequestBurst:     getEnvAsInt("PLM_REQUEST_BURST", 2),
			Timeout:          getEnvAsDuration("PLM_TIMEOUT", 60*time.Second),
			TokenMargin:      getEnvAsDuration("PLM_TOKEN_MARGIN", 5*time.Minute),
			DefaultTokenTTL:  getEnvAsDuration("PLM_DEFAULT_TOKEN_TTL", time.Hour),
		},
		Catalog: CatalogConfig{
			Source:       getEnv("CATALOG_SOURCE", "excel"),
			SegmentPath:  getEnv("CATALOG_SEGMENT_PATH", "data/RangeSayacv2.xlsx"),
			ThemePath:    getEnv("CATALOG_THEME_PATH", "data/RangeSayacv3.xlsx"),
			DetailPath:   getEnv("CATALOG_DETAIL_PATH", "data/RangeDetay.xlsx"),
			LegacyPath:   getEnv("CATALOG_LEGACY_PATH", "data/RangeSayac.xlsx"),
			ReloadSpec:   getEnv("CATALOG_RELOAD_CRON", ""),
			SegmentSheet: getEnv("CATALOG_SEGMENT_SHEET", ""),
			ThemeSheet:   getEnv("CATALOG_THEME_SHEET", ""),
			DetailSheet:  getEnv("CATALOG_DETAIL_SHEET", ""),
			LegacySheet:  getEnv("CATALOG_LEGACY_SHEET", ""),
			Seed:         getEnvAsBool("CATALOG_SEED", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "range-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			Migrate:  getEnvAsBool("POSTGRES_MIGRATE", true),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TokenKey: getEnv("REDIS_TOKEN_KEY", "range-tracker:plm-token"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		Demo: DemoConfig{
			Enabled: getEnvAsBool("DEMO_MODE", false),
			Seed:    int64(getEnvAsInt("DEMO_SEED", 0)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "excel", "csv", "postgres":
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	if c.Demo.Enabled {
		return nil
	}

	var missing []string
	if c.PLM.TenantID == "" {
		missing = append(missing, "PLM_TENANT_ID")
	}
	if c.PLM.ProviderURL == "" {
		missing = append(missing, "PLM_PROVIDER_URL")
	}
	if c.PLM.ClientID == "" {
		missing = append(missing, "PLM_CLIENT_ID")
	}
	if c.PLM.ClientSecret == "" {
		missing = append(missing, "PLM_CLIENT_SECRET")
	}
	if c.PLM.ServiceAccessKey == "" || c.PLM.ServiceSecretKey == "" {
		missing = append(missing, "PLM_SERVICE_ACCESS_KEY/PLM_SERVICE_SECRET_KEY")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
