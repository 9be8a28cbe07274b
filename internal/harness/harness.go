package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resp-bench/internal/bench"
	"resp-bench/internal/checks"
	"resp-bench/internal/client"
	"resp-bench/internal/events"
	"resp-bench/internal/logger"
)

// Config はランの設定
type Config struct {
	Name        string // ラン名
	Description string // 説明
	Addr        string // 対象サーバーのアドレス（host:port）

	// 接続設定
	ConnectRetry   client.RetryPolicy // 接続確立のリトライポリシー
	CommandTimeout time.Duration      // コマンド単位のタイムアウト

	// フェーズ設定
	SkipChecks bool         // 正しさチェックをスキップ
	Bench      bench.Config // ベンチマーク設定
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Name:           "default",
		Description:    "Default benchmark run",
		Addr:           "127.0.0.1:6379",
		ConnectRetry:   client.DefaultRetryPolicy(),
		CommandTimeout: 5 * time.Second,
		Bench:          bench.DefaultConfig(),
	}
}

// RunReport は1回のラン全体の実行結果
type RunReport struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// 正しさチェック
	Checks       []checks.Result
	ChecksPassed bool

	// ベンチマーク結果（single_client, multi_clientの順）
	Benchmarks []bench.Result
}

// Engine はラン実行エンジン
type Engine struct {
	config   Config
	eventBus *events.Bus

	mu      sync.RWMutex
	running bool
	last    *RunReport
}

// New は新しいEngineを作成する
func New(config Config) *Engine {
	return &Engine{
		config: config,
	}
}

// SetEventBus はイベントバスを設定する
func (e *Engine) SetEventBus(bus *events.Bus) {
	e.eventBus = bus
}

func (e *Engine) publish(ev events.Event) {
	if e.eventBus != nil {
		e.eventBus.Publish(ev)
	}
}

// Run はラン全体を実行する
//
// 接続確立に失敗した場合のみエラーを返す。正しさチェックの失敗は
// RunReport.ChecksPassedで報告し、その場合ベンチマークは実行しない。
func (e *Engine) Run(ctx context.Context) (*RunReport, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, fmt.Errorf("run is already in progress")
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	logger.Info("harness", "=== Run '%s' started ===", e.config.Name)
	logger.Info("harness", "Target: %s", e.config.Addr)
	e.publish(events.NewRunStarted(e.config.Name))

	report := &RunReport{
		Name:      e.config.Name,
		StartTime: time.Now(),
	}

	conn, err := client.Dial(e.config.Addr, e.config.ConnectRetry,
		client.WithCommandTimeout(e.config.CommandTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", e.config.Addr, err)
	}
	defer conn.Close()

	// 正しさチェック
	if !e.config.SkipChecks {
		report.Checks = checks.Run(conn)
		report.ChecksPassed = checks.Passed(report.Checks)
		for _, r := range report.Checks {
			e.publish(events.NewCheckCompleted(e.config.Name, r.Name, r.Passed))
		}
		if !report.ChecksPassed {
			logger.Error("harness", "correctness checks failed, skipping benchmarks")
			e.finish(report)
			return report, nil
		}
		logger.Info("harness", "all correctness checks passed")
	} else {
		report.ChecksPassed = true
	}

	// ベンチマーク
	runner := bench.NewRunner(e.config.Addr, e.config.ConnectRetry,
		e.config.CommandTimeout, e.config.Bench)
	runner.SetEventBus(e.eventBus, e.config.Name)

	single := runner.Single(ctx, conn)
	logger.Info("harness", "%s: %d ops in %v (%.0f ops/sec, %d errors)",
		single.TestName, single.Operations, single.Duration.Round(time.Millisecond),
		single.Throughput, single.Errors)

	multi := runner.Concurrent(ctx)
	logger.Info("harness", "%s: %d ops in %v (%.0f ops/sec, %d errors)",
		multi.TestName, multi.Operations, multi.Duration.Round(time.Millisecond),
		multi.Throughput, multi.Errors)

	report.Benchmarks = []bench.Result{single, multi}

	e.finish(report)
	logger.Info("harness", "=== Run '%s' completed ===", e.config.Name)
	return report, nil
}

func (e *Engine) finish(report *RunReport) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	e.publish(events.NewRunCompleted(e.config.Name))

	e.mu.Lock()
	e.last = report
	e.mu.Unlock()
}

// IsRunning は実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// LastReport は直近の完了したランのレポートを返す（未実行ならnil）
func (e *Engine) LastReport() *RunReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Report は結果をフォーマットして返す
func (r *RunReport) Report() string {
	report := fmt.Sprintf(`
================================================================================
                           BENCHMARK REPORT: %s
================================================================================

EXECUTION SUMMARY
-----------------
  Start Time:     %s
  End Time:       %s
  Duration:       %v

CORRECTNESS CHECKS
------------------
`,
		r.Name,
		r.StartTime.Format("2006-01-02 15:04:05"),
		r.EndTime.Format("2006-01-02 15:04:05"),
		r.Duration.Round(time.Millisecond),
	)

	if len(r.Checks) == 0 {
		report += "  (skipped)\n"
	}
	for _, c := range r.Checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		report += fmt.Sprintf("  %-20s %s\n", c.Name+":", status)
	}

	report += "\nBENCHMARKS\n----------\n"
	if len(r.Benchmarks) == 0 {
		report += "  (not run)\n"
	}
	for _, b := range r.Benchmarks {
		report += fmt.Sprintf(`  %s
    Operations:     %d
    Errors:         %d
    Duration:       %v
    Throughput:     %.1f ops/sec
    Clients:        %d
    Avg Latency:    %v
    P99 Latency:    %v
`,
			b.TestName,
			b.Operations,
			b.Errors,
			b.Duration.Round(time.Millisecond),
			b.Throughput,
			b.Clients,
			b.AvgLatency.Round(time.Microsecond),
			b.P99Latency.Round(time.Microsecond),
		)
	}

	report += "\n================================================================================"

	return report
}
