package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"resp-bench/internal/harness"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Run     RunConfig     `yaml:"run" json:"run"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`
}

// RunConfig はラン設定
type RunConfig struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	Target         TargetConfig  `yaml:"target" json:"target"`
	Connect        ConnectConfig `yaml:"connect" json:"connect"`
	CommandTimeout string        `yaml:"command_timeout" json:"command_timeout"`
	SkipChecks     bool          `yaml:"skip_checks" json:"skip_checks"`

	Benchmark BenchmarkConfig `yaml:"benchmark" json:"benchmark"`
}

// TargetConfig は対象サーバー設定
type TargetConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// ConnectConfig は接続確立のリトライ設定
type ConnectConfig struct {
	Retries int    `yaml:"retries" json:"retries"`
	Timeout string `yaml:"timeout" json:"timeout"`
	Delay   string `yaml:"delay" json:"delay"`
}

// BenchmarkConfig はベンチマーク設定
type BenchmarkConfig struct {
	SingleOps    int     `yaml:"single_ops" json:"single_ops"`
	Clients      int     `yaml:"clients" json:"clients"`
	OpsPerClient int     `yaml:"ops_per_client" json:"ops_per_client"`
	KeyLength    int     `yaml:"key_length" json:"key_length"`
	ValueSize    int     `yaml:"value_size" json:"value_size"`
	RateLimit    float64 `yaml:"rate_limit" json:"rate_limit"`
}

// OutputConfig は結果出力設定
type OutputConfig struct {
	CSV string `yaml:"csv" json:"csv"`
}

// MonitorConfig はモニタリングサーバー設定
type MonitorConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// ToHarnessConfig はFileConfigをharness.Configに変換する
func (f *FileConfig) ToHarnessConfig() (harness.Config, error) {
	rc := f.Run

	// デフォルト値の設定
	config := harness.DefaultConfig()

	if rc.Name != "" {
		config.Name = rc.Name
	}
	if rc.Description != "" {
		config.Description = rc.Description
	}
	if rc.Target.Host != "" || rc.Target.Port > 0 {
		host := rc.Target.Host
		if host == "" {
			host = "127.0.0.1"
		}
		port := rc.Target.Port
		if port == 0 {
			port = 6379
		}
		config.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	// 接続設定
	if rc.Connect.Retries > 0 {
		config.ConnectRetry.Attempts = rc.Connect.Retries
	}
	if rc.Connect.Timeout != "" {
		d, err := time.ParseDuration(rc.Connect.Timeout)
		if err != nil {
			return config, fmt.Errorf("invalid connect timeout: %w", err)
		}
		config.ConnectRetry.AttemptTimeout = d
	}
	if rc.Connect.Delay != "" {
		d, err := time.ParseDuration(rc.Connect.Delay)
		if err != nil {
			return config, fmt.Errorf("invalid connect delay: %w", err)
		}
		config.ConnectRetry.Delay = d
	}
	if rc.CommandTimeout != "" {
		d, err := time.ParseDuration(rc.CommandTimeout)
		if err != nil {
			return config, fmt.Errorf("invalid command timeout: %w", err)
		}
		config.CommandTimeout = d
	}
	config.SkipChecks = rc.SkipChecks

	// ベンチマーク設定
	bc := rc.Benchmark
	if bc.SingleOps > 0 {
		config.Bench.SingleOps = bc.SingleOps
	}
	if bc.Clients > 0 {
		config.Bench.Clients = bc.Clients
	}
	if bc.OpsPerClient > 0 {
		config.Bench.OpsPerClient = bc.OpsPerClient
	}
	if bc.KeyLength > 0 {
		config.Bench.KeyLength = bc.KeyLength
	}
	if bc.ValueSize > 0 {
		config.Bench.ValueSize = bc.ValueSize
	}
	if bc.RateLimit > 0 {
		config.Bench.RateLimit = bc.RateLimit
	}

	return config, nil
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	rc := f.Run

	if rc.Target.Port < 0 || rc.Target.Port > 65535 {
		return fmt.Errorf("target.port must be between 0 and 65535")
	}

	if rc.Connect.Retries < 0 {
		return fmt.Errorf("connect.retries must be non-negative")
	}

	bc := rc.Benchmark
	if bc.SingleOps < 0 {
		return fmt.Errorf("benchmark.single_ops must be non-negative")
	}
	if bc.Clients < 0 {
		return fmt.Errorf("benchmark.clients must be non-negative")
	}
	if bc.OpsPerClient < 0 {
		return fmt.Errorf("benchmark.ops_per_client must be non-negative")
	}
	if bc.ValueSize < 0 {
		return fmt.Errorf("benchmark.value_size must be non-negative")
	}
	if bc.RateLimit < 0 {
		return fmt.Errorf("benchmark.rate_limit must be non-negative")
	}

	return nil
}
