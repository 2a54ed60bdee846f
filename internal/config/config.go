package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Env         string            `mapstructure:"env"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Academic    AcademicConfig    `mapstructure:"academic"`
	Audit       AuditConfig       `mapstructure:"audit"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

type AcademicConfig struct {
	MaxCredits    int    `mapstructure:"max_credits"`
	MinCourses    int    `mapstructure:"min_courses"`
	DefaultTerm   string `mapstructure:"default_term"`
	DefaultPolicy string `mapstructure:"default_policy"`
}

// AuditConfig configures the NATS audit sink; an empty URL disables it.
type AuditConfig struct {
	NATSURL     string `mapstructure:"nats_url"`
	NATSSubject string `mapstructure:"nats_subject"`
}

// PersistenceConfig switches between postgres write-through and a purely
// in-memory run with seed data.
type PersistenceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TelemetryConfig points the OTLP metric exporter at a collector. Metrics
// stay on the no-op provider when the endpoint is empty.
type TelemetryConfig struct {
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ExportInterval int    `mapstructure:"export_interval_seconds"`
}

// Load reads config.<ENV>.yaml from the standard locations.
func Load() (*Config, error) {
	return LoadFrom("/etc/siak", "./configs", "../configs")
}

// LoadFrom reads config.<ENV>.yaml from the given directories. A missing
// file is not an error; defaults and environment variables still apply.
func LoadFrom(paths ...string) (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v, env)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.AutomaticEnv()

	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.port", "DB_PORT")
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("database.name", "DB_NAME")
	_ = v.BindEnv("audit.nats_url", "NATS_URL")
	_ = v.BindEnv("persistence.enabled", "PERSISTENCE_ENABLED")
	_ = v.BindEnv("telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("env", env)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "siak")
	v.SetDefault("database.name", "siak")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("academic.max_credits", 24)
	v.SetDefault("academic.min_courses", 1)
	v.SetDefault("academic.default_term", "2024/2025 Ganjil")
	v.SetDefault("academic.default_policy", "standard")

	v.SetDefault("audit.nats_subject", "siak.audit")

	v.SetDefault("persistence.enabled", false)

	v.SetDefault("telemetry.export_interval_seconds", 10)
}
