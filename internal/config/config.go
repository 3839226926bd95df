package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level configuration for bookmetrics.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Warehouse   WarehouseConfig   `koanf:"warehouse"`
	Cache       CacheConfig       `koanf:"cache"`
	Staging     StagingConfig     `koanf:"staging"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // "debug" or "release"
}

// WarehouseConfig holds the data warehouse connection settings.
// Redshift speaks the postgres wire protocol, so the DSN is assembled
// for the lib/pq driver.
type WarehouseConfig struct {
	Host         string `koanf:"host"`
	Database     string `koanf:"database"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	Port         int    `koanf:"port"`
	SSLMode      string `koanf:"ssl_mode"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// Enabled reports whether the warehouse settings are complete enough to
// connect. An incomplete group disables warehouse-backed features at
// startup instead of being discovered per call.
func (c WarehouseConfig) Enabled() bool {
	return c.Host != "" && c.Database != "" && c.User != ""
}

// DSN builds a lib/pq connection string from the individual settings.
func (c WarehouseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// CacheConfig holds the Redis result-cache settings. An empty Addr
// disables caching; the service then recomputes every request.
type CacheConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool {
	return c.Addr != ""
}

// StagingConfig holds the S3 staging and bulk-load settings. Bucket,
// region and the COPY authorization role must all be present for the
// export pipeline to be enabled.
type StagingConfig struct {
	Bucket          string `koanf:"bucket"`
	Region          string `koanf:"region"`
	IAMRole         string `koanf:"iam_role"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	Endpoint        string `koanf:"endpoint"` // non-empty for S3-compatible stores
}

// Enabled reports whether the staging pipeline is fully configured.
func (c StagingConfig) Enabled() bool {
	return c.Bucket != "" && c.Region != "" && c.IAMRole != ""
}

// MaintenanceConfig holds the rollup maintenance schedule.
type MaintenanceConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule"` // cron expression
}

// Load loads the configuration from the given file path and environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"server.port":               8080,
		"server.host":               "0.0.0.0",
		"server.mode":               "release",
		"warehouse.host":            "",
		"warehouse.database":        "",
		"warehouse.user":            "",
		"warehouse.password":        "",
		"warehouse.port":            5439,
		"warehouse.ssl_mode":        "require",
		"warehouse.max_open_conns":  10,
		"warehouse.max_idle_conns":  5,
		"warehouse.auto_migrate":    false,
		"cache.addr":                "",
		"cache.password":            "",
		"cache.db":                  0,
		"staging.bucket":            "",
		"staging.region":            "",
		"staging.iam_role":          "",
		"staging.access_key_id":     "",
		"staging.secret_access_key": "",
		"staging.endpoint":          "",
		"maintenance.enabled":       true,
		"maintenance.schedule":      "0 3 * * *",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// 2. Load from file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// 3. Load from Environment Variables
	// BOOKMETRICS_WAREHOUSE__HOST=wh.example.com overrides warehouse.host
	if err := k.Load(env.Provider("BOOKMETRICS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "BOOKMETRICS_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
