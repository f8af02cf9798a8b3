package config

import (
	"os"
	"regexp"
	"time"

	"github.com/amoylab/huddle/internal/common/cnst"
	"github.com/amoylab/huddle/pkg/helper"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type (
	// HuddleConfig represents the huddle server configuration
	HuddleConfig struct {
		Port      int             `yaml:"port" validate:"gt=0,lt=65536"`
		PID       string          `yaml:"pid"`
		Chat      ChatConfig      `yaml:"chat"`
		Transport TransportConfig `yaml:"transport"`
		Logger    LoggerConfig    `yaml:"logger"`
		Registry  RegistryConfig  `yaml:"registry"`
		Bus       BusConfig       `yaml:"bus"`
		Metrics   MetricsConfig   `yaml:"metrics"`
		Tracing   TracingConfig   `yaml:"tracing"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone"`   // time zone for log timestamps, e.g., "UTC", default is local
		TimeFormat string `yaml:"time_format"` // time format for log timestamps, default is "2006-01-02 15:04:05"
	}
)

const (
	DefaultPort             = 8080
	DefaultPIDFile          = "/var/run/huddle.pid"
	DefaultMaxMessageLength = 5
	DefaultIdleTimeout      = 10 * time.Second
	DefaultSystemName       = "System"
)

var envPlaceholder = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// LoadConfig loads configuration from a YAML file with environment variable support.
// The returned path is the resolved location of the file that was read.
func LoadConfig(filename string) (*HuddleConfig, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, cfgPath, err
	}
	return cfg, cfgPath, nil
}

// Parse decodes raw YAML content, applies defaults and validates the result
func Parse(data []byte) (*HuddleConfig, error) {
	data = resolveEnv(data)

	var cfg HuddleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	SetDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields with the values the service runs with out of the box
func SetDefaults(cfg *HuddleConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.PID == "" {
		cfg.PID = DefaultPIDFile
	}

	if cfg.Chat.MaxMessageLength == 0 {
		cfg.Chat.MaxMessageLength = DefaultMaxMessageLength
	}
	if cfg.Chat.IdleTimeout == 0 {
		cfg.Chat.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Chat.SystemName == "" {
		cfg.Chat.SystemName = DefaultSystemName
	}
	cfg.Chat.Announcements.setDefaults()
	cfg.Transport.setDefaults()

	if cfg.Registry.Type == "" {
		cfg.Registry.Type = cnst.BackendMemory
	}
	cfg.Registry.Redis.setDefaults("huddle:presence")
	if cfg.Bus.Type == "" {
		cfg.Bus.Type = cnst.BackendMemory
	}
	cfg.Bus.Redis.setDefaults("huddle:broadcast")

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = cnst.AppName
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = cnst.AppName
	}
}

// resolveEnv replaces environment variable placeholders in YAML content
func resolveEnv(content []byte) []byte {
	return envPlaceholder.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := envPlaceholder.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
