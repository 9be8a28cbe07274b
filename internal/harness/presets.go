package harness

import (
	"time"

	"resp-bench/internal/bench"
	"resp-bench/internal/client"
)

// QuickPreset はクイックテスト用設定を返す
// 短時間での動作確認用
func QuickPreset() Config {
	return Config{
		Name:           "quick",
		Description:    "Quick verification run",
		Addr:           "127.0.0.1:6379",
		ConnectRetry:   client.DefaultRetryPolicy(),
		CommandTimeout: 5 * time.Second,
		Bench: bench.Config{
			SingleOps:    1_000,
			Clients:      3,
			OpsPerClient: 500,
			KeyLength:    16,
			ValueSize:    100,
		},
	}
}

// StandardPreset は標準ベンチマーク設定を返す
// 単一接続5万操作、5クライアント×2万操作
func StandardPreset() Config {
	return Config{
		Name:           "standard",
		Description:    "Standard benchmark run",
		Addr:           "127.0.0.1:6379",
		ConnectRetry:   client.DefaultRetryPolicy(),
		CommandTimeout: 5 * time.Second,
		Bench:          bench.DefaultConfig(),
	}
}

// StressPreset は高負荷設定を返す
// 多数の並行クライアント、大きめの値
func StressPreset() Config {
	return Config{
		Name:           "stress",
		Description:    "High load stress run",
		Addr:           "127.0.0.1:6379",
		ConnectRetry:   client.DefaultRetryPolicy(),
		CommandTimeout: 10 * time.Second,
		Bench: bench.Config{
			SingleOps:    100_000,
			Clients:      20,
			OpsPerClient: 20_000,
			KeyLength:    16,
			ValueSize:    1_000,
		},
	}
}

// GetPreset は名前からプリセット設定を取得する
func GetPreset(name string) (Config, bool) {
	presets := map[string]func() Config{
		"quick":    QuickPreset,
		"standard": StandardPreset,
		"stress":   StressPreset,
	}

	if fn, ok := presets[name]; ok {
		return fn(), true
	}
	return Config{}, false
}

// ListPresets は利用可能なプリセット名を返す
func ListPresets() []string {
	return []string{"quick", "standard", "stress"}
}
