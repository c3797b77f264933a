// Package config loads the service's configuration from a YAML file and
// WSD_-prefixed environment variables, in that ascending order of
// precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the service's full runtime configuration, covering both the
// ambient concerns (logging) and the workspace-domain options the
// original configuration file format recognizes.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" validate:"required"`

	// AdminList is the ";"-separated set of usernames granted admin-mode
	// elevation when they request it.
	AdminList []string `mapstructure:"-"`
	AdminListRaw string `mapstructure:"adminlist"`

	// DBPath roots the filesystem-backed object body store.
	DBPath string `mapstructure:"db-path" validate:"required"`

	// DownloadLifetime is how long an issued download ticket stays valid.
	DownloadLifetime time.Duration `mapstructure:"download-lifetime" validate:"required,gt=0"`

	// DownloadURLBase prefixes every issued download URL.
	DownloadURLBase string `mapstructure:"download-url-base" validate:"required"`

	Mongo MongoConfig `mapstructure:"mongo" validate:"required"`

	// APIRoot is the JSON-RPC endpoint path.
	APIRoot string `mapstructure:"api-root" validate:"required"`

	// TypesFile is a newline-delimited object-type whitelist.
	TypesFile string `mapstructure:"types-file" validate:"required"`

	// ShockServer is the blob store's base URL.
	ShockServer string `mapstructure:"shock_server" validate:"required,url"`

	// WSUser/WSPassword are decoded from the configuration but nothing
	// reads them: the service does not obtain a bearer token of its own,
	// and the blob client is built with an empty token.
	WSUser     string `mapstructure:"wsuser"`
	WSPassword string `mapstructure:"wspassword"`

	// HTTPAddr is the listen address for the HTTP front end.
	HTTPAddr string `mapstructure:"http-addr" validate:"required"`

	// ShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight HTTP requests; stopping the reconciler is not bounded by it.
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout" validate:"required,gt=0"`

	// DBLaneWorkers sizes the general DB lane's worker pool.
	DBLaneWorkers int `mapstructure:"db-lane-workers" validate:"required,gt=0"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
	Output string `mapstructure:"output" validate:"required"`
}

// MongoConfig configures the metadata repository's backing database.
type MongoConfig struct {
	Host          string `mapstructure:"host" validate:"required"`
	Database      string `mapstructure:"database" validate:"required"`
	ClientThreads uint64 `mapstructure:"client-threads" validate:"required,gt=0"`
}

// MetricsConfig configures the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

var validate = validator.New()

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}

// ApplyDefaults fills in the documented defaults for any field left at
// its zero value.
func ApplyDefaults(cfg *Config) {
	if cfg.DownloadLifetime == 0 {
		cfg.DownloadLifetime = 3600 * time.Second
	}
	if cfg.APIRoot == "" {
		cfg.APIRoot = "/api"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":7000"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.DBLaneWorkers == 0 {
		cfg.DBLaneWorkers = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	cfg.AdminList = splitAdminList(cfg.AdminListRaw)
}

func splitAdminList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads configuration from configPath (a YAML file; empty uses only
// environment variables and defaults), layers WSD_-prefixed environment
// variables on top, applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeHooks composes the viper decode hooks needed beyond the
// library's defaults: duration strings ("1h") and ";"-separated string
// lists.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(";"),
	)
}

// DefaultConfigPath returns the conventional config file location,
// honoring XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "wsd/config.yaml"
		}
		base = home + "/.config"
	}
	return base + "/wsd/config.yaml"
}
