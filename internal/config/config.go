package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration for clockd.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Clock    ClockConfig    `mapstructure:"clock"`
	Manifest ManifestConfig `mapstructure:"manifest"`
}

// HTTPConfig contains HTTP server settings.
// Respects Go stdlib net/http defaults where appropriate.
type HTTPConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // seconds, default 30
	WriteTimeout    int `mapstructure:"write_timeout"`    // seconds, default 30
	IdleTimeout     int `mapstructure:"idle_timeout"`     // seconds, default 120
	MaxHeaderBytes  int `mapstructure:"max_header_bytes"` // bytes, stdlib default 1MB
	MaxBodyBytes    int `mapstructure:"max_body_bytes"`   // bytes, NO stdlib default!
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds, default 10
}

// ClockConfig contains the default behavior of the Clock exposed over
// the HTTP API. Only Mode is read (by clockd's newClock); the other
// fields are loaded but not read by any package.
type ClockConfig struct {
	Mode                   string `mapstructure:"mode"`                      // "sim" or "live"
	AllowPast              bool   `mapstructure:"allow_past"`                // not read: handlers take allow_past from each request
	LiveQueueCapacityHint  int    `mapstructure:"live_queue_capacity_hint"`  // not read: LiveEventQueue takes no capacity
	SystemTimeRereadMillis int    `mapstructure:"system_time_reread_millis"` // not read: SystemTimeSource reads the OS clock on every call
}

// ManifestConfig points at an optional startup timer manifest loaded
// by internal/manifest before the HTTP API starts serving.
type ManifestConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"` // "yaml" (only supported format, kept explicit for future formats)
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override everything:
	// CLOCKD_HTTP_PORT, CLOCKD_CLOCK_MODE, CLOCKD_MANIFEST_PATH, etc.
	v.SetEnvPrefix("CLOCKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 12021)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)
	v.SetDefault("http.idle_timeout", 120)
	v.SetDefault("http.max_header_bytes", 32768)
	v.SetDefault("http.max_body_bytes", 1048576) // 1MB - manifest/timer payloads are small
	v.SetDefault("http.shutdown_timeout", 10)

	v.SetDefault("clock.mode", "sim")
	v.SetDefault("clock.allow_past", false)
	v.SetDefault("clock.live_queue_capacity_hint", 256)
	v.SetDefault("clock.system_time_reread_millis", 0)

	v.SetDefault("manifest.path", "")
	v.SetDefault("manifest.format", "yaml")
}
