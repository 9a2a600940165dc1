package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chocan/internal/core"
	"chocan/internal/report"
)

func loadIn(t *testing.T, file string) *Config {
	t.Helper()
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadIn(t, filepath.Join(t.TempDir(), "missing.env"))
	if cfg.StorageDriver != "sqlite" || cfg.SQLitePath != "./chocan.db" || cfg.SinkFSRoot != "./emails" {
		t.Fatalf("unexpected storage defaults %+v", cfg)
	}
	if cfg.SenderAddress != "testing@chocan.com" || cfg.ManagerAddress != "manager@pdx.edu" || cfg.RecencyDays != 7 || !cfg.ProviderTotals {
		t.Fatalf("unexpected report defaults %+v", cfg)
	}
	if cfg.MetricsBackend != MetricsPrometheus || cfg.TraceBackend != TraceOTel || cfg.TraceFile != "" {
		t.Fatalf("unexpected observability defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.IsDev() {
		t.Fatalf("default env should not be development")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHOCAN_ENV", "development")
	t.Setenv("CHOCAN_STORAGE_DRIVER", "postgres")
	t.Setenv("CHOCAN_POSTGRES_DSN", "postgres://db/chocan")
	t.Setenv("CHOCAN_SINK_DRIVER", "fs, Kafka")
	t.Setenv("CHOCAN_SINK_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CHOCAN_SINK_KAFKA_TOPIC", "reports")
	t.Setenv("CHOCAN_RECENCY_DAYS", "14")
	t.Setenv("CHOCAN_PROVIDER_TOTALS", "false")
	t.Setenv("CHOCAN_MISSING_REFERENCE_POLICY", "skip-and-log")
	t.Setenv("CHOCAN_METRICS_BACKEND", "expvar")
	t.Setenv("CHOCAN_TRACE_BACKEND", "json")
	t.Setenv("CHOCAN_TRACE_FILE", "/tmp/chocan-trace.jsonl")

	cfg := loadIn(t, filepath.Join(t.TempDir(), "missing.env"))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.MetricsBackend != MetricsExpvar || cfg.TraceBackend != TraceJSON || cfg.TraceFile != "/tmp/chocan-trace.jsonl" {
		t.Fatalf("observability overrides not applied %+v", cfg)
	}
	if !cfg.IsDev() || cfg.RecencyDays != 14 || cfg.ProviderTotals {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	st := cfg.Storage()
	if st.Driver != core.StoragePostgres || st.PostgresDSN != "postgres://db/chocan" {
		t.Fatalf("unexpected storage %+v", st)
	}
	sc := cfg.Sink()
	if len(sc.Drivers) != 2 || sc.Drivers[1] != "kafka" || len(sc.KafkaBrokers) != 2 || sc.KafkaTopic != "reports" {
		t.Fatalf("unexpected sink %+v", sc)
	}
	if len(cfg.ReportOptions()) != 5 {
		t.Fatalf("expected five report options")
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "chocan.env")
	if err := os.WriteFile(file, []byte("CHOCAN_STORAGE_DRIVER=memory\nCHOCAN_MANAGER_NAME=Boss\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := loadIn(t, file)
	if cfg.StorageDriver != "memory" || cfg.ManagerName != "Boss" {
		t.Fatalf("env file ignored %+v", cfg)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	base := loadIn(t, filepath.Join(t.TempDir(), "missing.env"))
	cases := map[string]func(c *Config){
		"storage": func(c *Config) { c.StorageDriver = "mysql" },
		"sink":    func(c *Config) { c.SinkDriver = "carrier-pigeon" },
		"s3":      func(c *Config) { c.SinkDriver = "s3" },
		"kafka":   func(c *Config) { c.SinkDriver = "kafka"; c.KafkaTopic = "reports" },
		"sqs":     func(c *Config) { c.SinkDriver = "sqs" },
		"policy":  func(c *Config) { c.MissingReferencePolicy = "retry" },
		"recency": func(c *Config) { c.RecencyDays = -1 },
		"level":   func(c *Config) { c.LogLevel = "loud" },
		"metrics": func(c *Config) { c.MetricsBackend = "statsd" },
		"trace":   func(c *Config) { c.TraceBackend = "zipkin" },
	}
	for name, mutate := range cases {
		c := *base
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	c := *base
	c.StorageDriver = "mysql"
	c.RecencyDays = -3
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "CHOCAN_STORAGE_DRIVER") || !strings.Contains(err.Error(), "CHOCAN_RECENCY_DAYS") {
		t.Fatalf("expected every problem reported, got %v", err)
	}
	if _, err := report.ParsePolicy(base.MissingReferencePolicy); err != nil {
		t.Fatalf("default policy should parse: %v", err)
	}
}
