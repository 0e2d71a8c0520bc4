package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration consumed by the vesper binary. The
// server section wraps the core Options with the listen host and port;
// the remaining sections configure the ambient services that the library
// API wires up explicitly.
type File struct {
	// Server contains the listen address and the core server options.
	Server ServerFile `yaml:"server"`

	// Telemetry contains logging, metrics and stats reporting settings.
	Telemetry TelemetryOptions `yaml:"telemetry"`

	// Audit contains the lifecycle/admission audit store settings.
	Audit AuditOptions `yaml:"audit"`
}

// ServerFile is the server section of the configuration file.
type ServerFile struct {
	// Host is the listen hostname, unix socket path (contains "/") or
	// windows pipe name.
	Host string `yaml:"host"`

	// Port is the listen port. Zero picks the protocol default
	// (443 with TLS, 80 without); with a socket or pipe host it must
	// stay unset.
	Port int `yaml:"port"`

	// Options are the core server options, inlined.
	Options `yaml:",inline"`
}

// TelemetryOptions contains observability settings for the binary.
type TelemetryOptions struct {
	// Logging configures the process-wide structured logger.
	Logging LoggingOptions `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsOptions `yaml:"metrics"`

	// Stats configures the scheduled runtime stats report.
	Stats StatsOptions `yaml:"stats"`
}

// LoggingOptions configures the structured logger.
type LoggingOptions struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsOptions configures the Prometheus metrics endpoint.
type MetricsOptions struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Address is the listen address for the metrics endpoint.
	// Default: "127.0.0.1:9100"
	Address string `yaml:"address"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// StatsOptions configures the scheduled runtime stats report.
type StatsOptions struct {
	// Schedule is a cron expression ("0 * * * *" for hourly). Empty
	// disables the report.
	Schedule string `yaml:"schedule"`
}

// AuditOptions configures the SQLite lifecycle/admission audit store.
type AuditOptions struct {
	// Enabled controls whether lifecycle and rejection events are
	// persisted.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`
}

// Default values for file-only sections.
const (
	DefaultLoggingLevel   = "info"
	DefaultLoggingFormat  = "json"
	DefaultMetricsAddress = "127.0.0.1:9100"
	DefaultMetricsPath    = "/metrics"
	DefaultAuditPath      = "data/audit.db"
)

// LoadFile loads configuration from a YAML file at the specified path.
// It applies default values but does not resolve the server options;
// callers pass File.Server.Options to Resolve (usually via server.New).
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyFileDefaults(&f)

	return &f, nil
}

// LoadFileWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention VESPER_SECTION_FIELD (e.g., VESPER_SERVER_PORT) and always
// take precedence over file-based configuration.
func LoadFileWithEnvOverrides(path string) (*File, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(f)

	return f, nil
}

// applyFileDefaults applies defaults to the file-only sections.
func applyFileDefaults(f *File) {
	if f.Telemetry.Logging.Level == "" {
		f.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if f.Telemetry.Logging.Format == "" {
		f.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if f.Telemetry.Metrics.Enabled == nil {
		enabled := true
		f.Telemetry.Metrics.Enabled = &enabled
	}
	if f.Telemetry.Metrics.Address == "" {
		f.Telemetry.Metrics.Address = DefaultMetricsAddress
	}
	if f.Telemetry.Metrics.Path == "" {
		f.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if f.Audit.Path == "" {
		f.Audit.Path = DefaultAuditPath
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format VESPER_SECTION_FIELD.
func applyEnvOverrides(f *File) {
	// Server overrides
	if val := os.Getenv("VESPER_SERVER_HOST"); val != "" {
		f.Server.Host = val
	}
	if val := os.Getenv("VESPER_SERVER_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			f.Server.Port = i
		}
	}
	if val := os.Getenv("VESPER_SERVER_LOCATION"); val != "" {
		f.Server.Location = val
	}
	if val := os.Getenv("VESPER_TIMEOUT_SOCKET"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			f.Server.Timeout.Socket = d
		}
	}
	if val := os.Getenv("VESPER_TIMEOUT_CLIENT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			f.Server.Timeout.Client = d
		}
	}
	if val := os.Getenv("VESPER_TIMEOUT_SERVER"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			f.Server.Timeout.Server = d
		}
	}

	// TLS overrides
	if val := os.Getenv("VESPER_TLS_CERT_FILE"); val != "" {
		if f.Server.TLS == nil {
			f.Server.TLS = &TLSOptions{}
		}
		f.Server.TLS.CertFile = val
	}
	if val := os.Getenv("VESPER_TLS_KEY_FILE"); val != "" {
		if f.Server.TLS == nil {
			f.Server.TLS = &TLSOptions{}
		}
		f.Server.TLS.KeyFile = val
	}

	// Telemetry overrides
	if val := os.Getenv("VESPER_TELEMETRY_LOGGING_LEVEL"); val != "" {
		f.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("VESPER_TELEMETRY_LOGGING_FORMAT"); val != "" {
		f.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("VESPER_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			f.Telemetry.Metrics.Enabled = &b
		}
	}
	if val := os.Getenv("VESPER_TELEMETRY_METRICS_ADDRESS"); val != "" {
		f.Telemetry.Metrics.Address = val
	}
	if val := os.Getenv("VESPER_TELEMETRY_STATS_SCHEDULE"); val != "" {
		f.Telemetry.Stats.Schedule = val
	}

	// Audit overrides
	if val := os.Getenv("VESPER_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			f.Audit.Enabled = b
		}
	}
	if val := os.Getenv("VESPER_AUDIT_PATH"); val != "" {
		f.Audit.Path = val
	}
}
