package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileYAML(t *testing.T) {
	content := `
run:
  name: test-run
  description: Test run
  target:
    host: 10.0.0.5
    port: 6380
  connect:
    retries: 3
    timeout: 2s
    delay: 100ms
  command_timeout: 3s
  benchmark:
    single_ops: 10000
    clients: 4
    ops_per_client: 2500
    value_size: 64
output:
  csv: results.csv
monitor:
  enabled: true
  addr: :8080
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	cfg, err := LoadFile(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Run.Name != "test-run" {
		t.Errorf("expected name 'test-run', got '%s'", cfg.Run.Name)
	}
	if cfg.Run.Target.Port != 6380 {
		t.Errorf("expected port 6380, got %d", cfg.Run.Target.Port)
	}
	if cfg.Run.Benchmark.Clients != 4 {
		t.Errorf("expected 4 clients, got %d", cfg.Run.Benchmark.Clients)
	}
	if cfg.Output.CSV != "results.csv" {
		t.Errorf("expected csv output 'results.csv', got '%s'", cfg.Output.CSV)
	}
	if !cfg.Monitor.Enabled {
		t.Error("expected monitor to be enabled")
	}
}

func TestLoadFileJSON(t *testing.T) {
	content := `{
  "run": {
    "name": "json-test",
    "target": {"host": "localhost", "port": 6379},
    "skip_checks": true,
    "benchmark": {"single_ops": 500}
  }
}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	cfg, err := LoadFile(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Run.Name != "json-test" {
		t.Errorf("expected name 'json-test', got '%s'", cfg.Run.Name)
	}
	if !cfg.Run.SkipChecks {
		t.Error("expected skip_checks to be true")
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	_, err := LoadFile(tmpFile)
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestToHarnessConfig(t *testing.T) {
	cfg := &FileConfig{
		Run: RunConfig{
			Name:        "test",
			Description: "Test",
			Target:      TargetConfig{Host: "10.0.0.5", Port: 6380},
			Connect: ConnectConfig{
				Retries: 3,
				Timeout: "2s",
				Delay:   "100ms",
			},
			CommandTimeout: "3s",
			Benchmark: BenchmarkConfig{
				SingleOps:    10_000,
				Clients:      4,
				OpsPerClient: 2_500,
				ValueSize:    64,
				RateLimit:    500,
			},
		},
	}

	hc, err := cfg.ToHarnessConfig()
	if err != nil {
		t.Fatalf("failed to convert config: %v", err)
	}

	if hc.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", hc.Name)
	}
	if hc.Addr != "10.0.0.5:6380" {
		t.Errorf("expected addr '10.0.0.5:6380', got '%s'", hc.Addr)
	}
	if hc.ConnectRetry.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", hc.ConnectRetry.Attempts)
	}
	if hc.ConnectRetry.AttemptTimeout != 2*time.Second {
		t.Errorf("expected 2s attempt timeout, got %v", hc.ConnectRetry.AttemptTimeout)
	}
	if hc.ConnectRetry.Delay != 100*time.Millisecond {
		t.Errorf("expected 100ms delay, got %v", hc.ConnectRetry.Delay)
	}
	if hc.CommandTimeout != 3*time.Second {
		t.Errorf("expected 3s command timeout, got %v", hc.CommandTimeout)
	}
	if hc.Bench.SingleOps != 10_000 {
		t.Errorf("expected 10000 single ops, got %d", hc.Bench.SingleOps)
	}
	if hc.Bench.RateLimit != 500 {
		t.Errorf("expected rate limit 500, got %f", hc.Bench.RateLimit)
	}
}

func TestToHarnessConfigDefaults(t *testing.T) {
	cfg := &FileConfig{}

	hc, err := cfg.ToHarnessConfig()
	if err != nil {
		t.Fatalf("failed to convert config: %v", err)
	}

	if hc.Addr != "127.0.0.1:6379" {
		t.Errorf("expected default addr, got '%s'", hc.Addr)
	}
	if hc.Bench.SingleOps != 50_000 {
		t.Errorf("expected default single ops 50000, got %d", hc.Bench.SingleOps)
	}
	if hc.ConnectRetry.Attempts != 10 {
		t.Errorf("expected default 10 attempts, got %d", hc.ConnectRetry.Attempts)
	}
}

func TestToHarnessConfigPartialTarget(t *testing.T) {
	cfg := &FileConfig{
		Run: RunConfig{
			Target: TargetConfig{Port: 7000},
		},
	}

	hc, err := cfg.ToHarnessConfig()
	if err != nil {
		t.Fatalf("failed to convert config: %v", err)
	}
	if hc.Addr != "127.0.0.1:7000" {
		t.Errorf("expected host to default, got '%s'", hc.Addr)
	}
}

func TestToHarnessConfigInvalidDuration(t *testing.T) {
	cfg := &FileConfig{
		Run: RunConfig{CommandTimeout: "invalid"},
	}

	if _, err := cfg.ToHarnessConfig(); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		config   FileConfig
		hasError bool
	}{
		{
			name:     "valid config",
			config:   FileConfig{},
			hasError: false,
		},
		{
			name: "port out of range",
			config: FileConfig{
				Run: RunConfig{Target: TargetConfig{Port: 70000}},
			},
			hasError: true,
		},
		{
			name: "negative retries",
			config: FileConfig{
				Run: RunConfig{Connect: ConnectConfig{Retries: -1}},
			},
			hasError: true,
		},
		{
			name: "negative single ops",
			config: FileConfig{
				Run: RunConfig{Benchmark: BenchmarkConfig{SingleOps: -1}},
			},
			hasError: true,
		},
		{
			name: "negative clients",
			config: FileConfig{
				Run: RunConfig{Benchmark: BenchmarkConfig{Clients: -1}},
			},
			hasError: true,
		},
		{
			name: "negative rate limit",
			config: FileConfig{
				Run: RunConfig{Benchmark: BenchmarkConfig{RateLimit: -1}},
			},
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.hasError && err == nil {
				t.Error("expected validation error")
			}
			if !tt.hasError && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
