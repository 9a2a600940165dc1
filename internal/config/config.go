// Package config loads process settings from CHOCAN_* environment variables
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"chocan/internal/blob"
	"chocan/internal/core"
	"chocan/internal/report"
	"chocan/internal/sink"
)

// Metrics and trace backends selectable with CHOCAN_METRICS_BACKEND and
// CHOCAN_TRACE_BACKEND.
const (
	MetricsPrometheus = "prometheus"
	MetricsExpvar     = "expvar"
	TraceOTel         = "otel"
	TraceJSON         = "json"
)

// Config is the flattened process configuration.
type Config struct {
	Env      string `mapstructure:"CHOCAN_ENV"`
	LogLevel string `mapstructure:"CHOCAN_LOG_LEVEL"`

	MetricsBackend string `mapstructure:"CHOCAN_METRICS_BACKEND"`
	TraceBackend   string `mapstructure:"CHOCAN_TRACE_BACKEND"`
	// TraceFile receives JSON spans; empty means the log stream.
	TraceFile string `mapstructure:"CHOCAN_TRACE_FILE"`

	StorageDriver string `mapstructure:"CHOCAN_STORAGE_DRIVER"`
	SQLitePath    string `mapstructure:"CHOCAN_SQLITE_PATH"`
	PostgresDSN   string `mapstructure:"CHOCAN_POSTGRES_DSN"`

	SinkDriver      string `mapstructure:"CHOCAN_SINK_DRIVER"`
	SinkFSRoot      string `mapstructure:"CHOCAN_SINK_FS_ROOT"`
	SinkS3Bucket    string `mapstructure:"CHOCAN_SINK_S3_BUCKET"`
	SinkS3Region    string `mapstructure:"CHOCAN_SINK_S3_REGION"`
	SinkS3Endpoint  string `mapstructure:"CHOCAN_SINK_S3_ENDPOINT"`
	SinkS3PathStyle bool   `mapstructure:"CHOCAN_SINK_S3_PATH_STYLE"`
	KafkaBrokers    string `mapstructure:"CHOCAN_SINK_KAFKA_BROKERS"`
	KafkaTopic      string `mapstructure:"CHOCAN_SINK_KAFKA_TOPIC"`
	SQSQueueURL     string `mapstructure:"CHOCAN_SINK_SQS_QUEUE_URL"`
	SQSRegion       string `mapstructure:"CHOCAN_SINK_SQS_REGION"`

	SenderAddress          string `mapstructure:"CHOCAN_SENDER_ADDRESS"`
	ManagerAddress         string `mapstructure:"CHOCAN_MANAGER_ADDRESS"`
	ManagerName            string `mapstructure:"CHOCAN_MANAGER_NAME"`
	RecencyDays            int    `mapstructure:"CHOCAN_RECENCY_DAYS"`
	MissingReferencePolicy string `mapstructure:"CHOCAN_MISSING_REFERENCE_POLICY"`
	ProviderTotals         bool   `mapstructure:"CHOCAN_PROVIDER_TOTALS"`
}

var defaults = map[string]any{
	"CHOCAN_ENV":                      "production",
	"CHOCAN_LOG_LEVEL":                "info",
	"CHOCAN_METRICS_BACKEND":          MetricsPrometheus,
	"CHOCAN_TRACE_BACKEND":            TraceOTel,
	"CHOCAN_TRACE_FILE":               "",
	"CHOCAN_STORAGE_DRIVER":           string(core.StorageSQLite),
	"CHOCAN_SQLITE_PATH":              "./chocan.db",
	"CHOCAN_POSTGRES_DSN":             "",
	"CHOCAN_SINK_DRIVER":              sink.DriverFS,
	"CHOCAN_SINK_FS_ROOT":             "./emails",
	"CHOCAN_SINK_S3_BUCKET":           "",
	"CHOCAN_SINK_S3_REGION":           "",
	"CHOCAN_SINK_S3_ENDPOINT":         "",
	"CHOCAN_SINK_S3_PATH_STYLE":       false,
	"CHOCAN_SINK_KAFKA_BROKERS":       "",
	"CHOCAN_SINK_KAFKA_TOPIC":         "",
	"CHOCAN_SINK_SQS_QUEUE_URL":       "",
	"CHOCAN_SINK_SQS_REGION":          "",
	"CHOCAN_SENDER_ADDRESS":           report.DefaultSender,
	"CHOCAN_MANAGER_ADDRESS":          report.DefaultManagerAddress,
	"CHOCAN_MANAGER_NAME":             report.DefaultManagerName,
	"CHOCAN_RECENCY_DAYS":             report.DefaultRecencyDays,
	"CHOCAN_MISSING_REFERENCE_POLICY": report.FailFast.String(),
	"CHOCAN_PROVIDER_TOTALS":          true,
}

// Load reads the environment, overlaid on file when it exists. An empty
// file means ".env" in the working directory.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file == "" {
		file = ".env"
	}
	v.SetConfigFile(file)
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
		// Unmarshal only sees environment values for bound keys.
		_ = v.BindEnv(key)
	}
	// A missing file is fine; a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether CHOCAN_ENV selects development output.
func (c *Config) IsDev() bool { return c.Env == "development" }

// Validate rejects unknown drivers and policies and missing driver settings.
func (c *Config) Validate() error {
	var errs []error
	switch core.StorageDriver(c.StorageDriver) {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres:
	default:
		errs = append(errs, fmt.Errorf("CHOCAN_STORAGE_DRIVER must be memory, sqlite or postgres, got %q", c.StorageDriver))
	}
	for _, d := range c.SinkDrivers() {
		switch d {
		case sink.DriverFS, sink.DriverMemory:
		case sink.DriverS3:
			if c.SinkS3Bucket == "" {
				errs = append(errs, errors.New("CHOCAN_SINK_S3_BUCKET is required for the s3 sink"))
			}
		case sink.DriverKafka:
			if len(splitList(c.KafkaBrokers)) == 0 || c.KafkaTopic == "" {
				errs = append(errs, errors.New("CHOCAN_SINK_KAFKA_BROKERS and CHOCAN_SINK_KAFKA_TOPIC are required for the kafka sink"))
			}
		case sink.DriverSQS:
			if c.SQSQueueURL == "" {
				errs = append(errs, errors.New("CHOCAN_SINK_SQS_QUEUE_URL is required for the sqs sink"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown CHOCAN_SINK_DRIVER %q", d))
		}
	}
	if _, err := report.ParsePolicy(c.MissingReferencePolicy); err != nil {
		errs = append(errs, fmt.Errorf("CHOCAN_MISSING_REFERENCE_POLICY: %w", err))
	}
	if c.RecencyDays < 0 {
		errs = append(errs, fmt.Errorf("CHOCAN_RECENCY_DAYS must not be negative, got %d", c.RecencyDays))
	}
	switch c.MetricsBackend {
	case MetricsPrometheus, MetricsExpvar:
	default:
		errs = append(errs, fmt.Errorf("CHOCAN_METRICS_BACKEND must be prometheus or expvar, got %q", c.MetricsBackend))
	}
	switch c.TraceBackend {
	case TraceOTel, TraceJSON:
	default:
		errs = append(errs, fmt.Errorf("CHOCAN_TRACE_BACKEND must be otel or json, got %q", c.TraceBackend))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("CHOCAN_LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// SinkDrivers splits CHOCAN_SINK_DRIVER on commas.
func (c *Config) SinkDrivers() []string {
	return splitList(strings.ToLower(c.SinkDriver))
}

// Storage returns the record store settings.
func (c *Config) Storage() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.StorageDriver),
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
	}
}

// Sink returns the report sink settings.
func (c *Config) Sink() sink.Config {
	return sink.Config{
		Drivers: c.SinkDrivers(),
		FSRoot:  c.SinkFSRoot,
		S3: blob.S3Config{
			Bucket:    c.SinkS3Bucket,
			Region:    c.SinkS3Region,
			Endpoint:  c.SinkS3Endpoint,
			PathStyle: c.SinkS3PathStyle,
		},
		KafkaBrokers: splitList(c.KafkaBrokers),
		KafkaTopic:   c.KafkaTopic,
		SQS:          sink.SQSConfig{QueueURL: c.SQSQueueURL, Region: c.SQSRegion},
	}
}

// ReportOptions returns the engine options the settings imply. Call
// Validate first; an unparseable policy falls back to FailFast.
func (c *Config) ReportOptions() []report.Option {
	policy, _ := report.ParsePolicy(c.MissingReferencePolicy)
	return []report.Option{
		report.WithSender(c.SenderAddress),
		report.WithManager(c.ManagerAddress, c.ManagerName),
		report.WithRecencyWindow(c.RecencyDays),
		report.WithProviderTotals(c.ProviderTotals),
		report.WithPolicy(policy),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
