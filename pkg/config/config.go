// Package config loads tracksort configuration from defaults, an optional
// YAML file and TRACKSORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
	"github.com/Sumatoshi-tech/tracksort/pkg/visualize"
)

// Sentinel validation errors.
var (
	ErrInvalidPort            = errors.New("invalid server port")
	ErrInvalidConnectionLimit = errors.New("database connection limit must be positive")
	ErrInvalidDelay           = errors.New("visualizer delays must not be negative")
	ErrInvalidArraySize       = errors.New("visualizer array size out of range")
	ErrInvalidAlgorithm       = errors.New("invalid default algorithm")
	ErrInvalidField           = errors.New("invalid default field")
	ErrInvalidQuerySize       = errors.New("invalid default query size")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrInvalidLogFormat       = errors.New("invalid log format")
	ErrInvalidSampleRatio     = errors.New("sample ratio must be within [0, 1]")
)

// Default configuration values.
const (
	defaultHost            = "localhost"
	defaultPort            = 3000
	defaultConnectionLimit = 10
	defaultDatabasePath    = "tracksort.db"
	defaultArraySize       = 10
	defaultMaxArraySize    = 500
	defaultClientURL       = "http://localhost:3000"
	maxPort                = 65535

	envPrefix  = "TRACKSORT"
	configName = "tracksort"

	logFormatText = "text"
	logFormatJSON = "json"
)

// Config holds all tracksort configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"`
	Client    ClientConfig    `mapstructure:"client"    yaml:"client"`
	Query     QueryConfig     `mapstructure:"query"     yaml:"query"`
	Visualize VisualizeConfig `mapstructure:"visualize" yaml:"visualize"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"             yaml:"host"`
	Port            int           `mapstructure:"port"             yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowOrigin     string        `mapstructure:"allow_origin"     yaml:"allow_origin"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds the SQLite catalog configuration.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"             yaml:"path"`
	ConnectionLimit int           `mapstructure:"connection_limit" yaml:"connection_limit"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"     yaml:"busy_timeout"`
}

// ClientConfig holds settings for reading the catalog from a running server.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// QueryConfig holds defaults for sort and search commands.
type QueryConfig struct {
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm"`
	Field     string `mapstructure:"field"     yaml:"field"`
	Size      string `mapstructure:"size"      yaml:"size"`
	Presort   string `mapstructure:"presort"   yaml:"presort"`
}

// VisualizeConfig holds visualizer pacing and dataset limits.
type VisualizeConfig struct {
	CompareDelay time.Duration `mapstructure:"compare_delay"  yaml:"compare_delay"`
	SwapDelay    time.Duration `mapstructure:"swap_delay"     yaml:"swap_delay"`
	WriteDelay   time.Duration `mapstructure:"write_delay"    yaml:"write_delay"`
	BisectDelay  time.Duration `mapstructure:"bisect_delay"   yaml:"bisect_delay"`
	ArraySize    int           `mapstructure:"array_size"     yaml:"array_size"`
	MaxArraySize int           `mapstructure:"max_array_size" yaml:"max_array_size"`
}

// Delays converts the pacing into visualizer delays.
func (v VisualizeConfig) Delays() visualize.Delays {
	return visualize.Delays{
		Compare: v.CompareDelay,
		Swap:    v.SwapDelay,
		Write:   v.WriteDelay,
		Bisect:  v.BisectDelay,
	}
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Environment  string  `mapstructure:"environment"   yaml:"environment"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"  yaml:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure" yaml:"otlp_insecure"`
	Prometheus   bool    `mapstructure:"prometheus"    yaml:"prometheus"`
	SampleRatio  float64 `mapstructure:"sample_ratio"  yaml:"sample_ratio"`
	DebugTrace   bool    `mapstructure:"debug_trace"   yaml:"debug_trace"`
	TraceVerbose bool    `mapstructure:"trace_verbose" yaml:"trace_verbose"`
}

// LoadConfig loads configuration. An empty path searches tracksort.yaml in
// the working directory, ./config and /etc/tracksort; a missing file there
// is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/tracksort")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("server.host", defaultHost)
	viperCfg.SetDefault("server.port", defaultPort)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")
	viperCfg.SetDefault("server.shutdown_timeout", "10s")
	viperCfg.SetDefault("server.allow_origin", "*")

	viperCfg.SetDefault("database.path", defaultDatabasePath)
	viperCfg.SetDefault("database.connection_limit", defaultConnectionLimit)
	viperCfg.SetDefault("database.busy_timeout", "5s")

	viperCfg.SetDefault("client.base_url", defaultClientURL)
	viperCfg.SetDefault("client.timeout", "10s")

	viperCfg.SetDefault("query.algorithm", string(alg.QuickSort))
	viperCfg.SetDefault("query.field", string(track.FieldID))
	viperCfg.SetDefault("query.size", query.SizeAll.String())
	viperCfg.SetDefault("query.presort", string(alg.MergeSort))

	viperCfg.SetDefault("visualize.compare_delay", visualize.DefaultCompareDelay)
	viperCfg.SetDefault("visualize.swap_delay", visualize.DefaultSwapDelay)
	viperCfg.SetDefault("visualize.write_delay", visualize.DefaultWriteDelay)
	viperCfg.SetDefault("visualize.bisect_delay", visualize.DefaultBisectDelay)
	viperCfg.SetDefault("visualize.array_size", defaultArraySize)
	viperCfg.SetDefault("visualize.max_array_size", defaultMaxArraySize)

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", logFormatText)

	viperCfg.SetDefault("telemetry.prometheus", true)
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.debug_trace", false)
	viperCfg.SetDefault("telemetry.trace_verbose", false)
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Database.ConnectionLimit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidConnectionLimit, config.Database.ConnectionLimit)
	}

	v := config.Visualize
	if v.CompareDelay < 0 || v.SwapDelay < 0 || v.WriteDelay < 0 || v.BisectDelay < 0 {
		return ErrInvalidDelay
	}

	if v.MaxArraySize <= 0 || v.ArraySize <= 0 || v.ArraySize > v.MaxArraySize {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidArraySize, v.ArraySize, v.MaxArraySize)
	}

	a, err := alg.Parse(config.Query.Algorithm)
	if err != nil || !a.IsSort() {
		return fmt.Errorf("%w: %q", ErrInvalidAlgorithm, config.Query.Algorithm)
	}

	p, err := alg.Parse(config.Query.Presort)
	if err != nil || !p.IsSort() {
		return fmt.Errorf("%w: presort %q", ErrInvalidAlgorithm, config.Query.Presort)
	}

	_, err = track.ParseField(config.Query.Field)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidField, config.Query.Field)
	}

	_, err = query.ParseSize(config.Query.Size)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidQuerySize, config.Query.Size)
	}

	_, err = ParseLogLevel(config.Logging.Level)
	if err != nil {
		return err
	}

	if config.Logging.Format != logFormatText && config.Logging.Format != logFormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}

// ParseLogLevel maps debug, info, warn and error onto slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(s))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}

	return level, nil
}

// Observability builds the observability configuration for a launch mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Mode = mode
	cfg.Environment = c.Telemetry.Environment
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	cfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	cfg.Prometheus = c.Telemetry.Prometheus && mode == observability.ModeServe
	cfg.SampleRatio = c.Telemetry.SampleRatio
	cfg.DebugTrace = c.Telemetry.DebugTrace
	cfg.TraceVerbose = c.Telemetry.TraceVerbose
	cfg.LogJSON = c.Logging.Format == logFormatJSON
	cfg.LogLevel, _ = ParseLogLevel(c.Logging.Level)
	cfg.ShutdownTimeoutSec = int(c.Server.ShutdownTimeout / time.Second)

	return cfg
}
