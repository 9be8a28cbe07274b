package bench

import (
	"context"
	"sync"
	"time"

	progressbar "github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"resp-bench/internal/client"
	"resp-bench/internal/events"
	"resp-bench/internal/logger"
	"resp-bench/internal/metrics"
)

// progressEventEvery は進捗イベントを発行する操作間隔
const progressEventEvery = 1000

// Config はベンチマークの設定
type Config struct {
	SingleOps    int     // 単一接続ベンチの操作数
	Clients      int     // 並行接続数
	OpsPerClient int     // 接続ごとの操作数
	KeyLength    int     // キー長（16進文字数）
	ValueSize    int     // 値のサイズ（バイト）
	RateLimit    float64 // 接続ごとのops/sec上限（0で無制限）
	ShowProgress bool    // プログレスバー表示
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		SingleOps:    50_000,
		Clients:      5,
		OpsPerClient: 20_000,
		KeyLength:    16,
		ValueSize:    100,
		RateLimit:    0,
	}
}

// Result は1回のベンチマーク実行の不変な集計レコード
// 整形と永続化は外部（report, cmd）の責務
type Result struct {
	TestName     string
	Operations   uint64
	Errors       uint64
	Duration     time.Duration
	Throughput   float64 // ops/sec
	Clients      int     // 確立できた接続数
	OpsPerClient int
	AvgLatency   time.Duration
	P99Latency   time.Duration
}

// Runner はワークロードをサーバーに対して実行する
type Runner struct {
	addr       string
	retry      client.RetryPolicy
	cmdTimeout time.Duration
	config     Config

	bus     *events.Bus
	runName string
}

// NewRunner は新しいRunnerを作成する
func NewRunner(addr string, retry client.RetryPolicy, cmdTimeout time.Duration, config Config) *Runner {
	if config.KeyLength <= 0 {
		config.KeyLength = 16
	}
	if config.ValueSize <= 0 {
		config.ValueSize = 100
	}
	return &Runner{
		addr:       addr,
		retry:      retry,
		cmdTimeout: cmdTimeout,
		config:     config,
	}
}

// SetEventBus はライフサイクルイベントの発行先を設定する
func (r *Runner) SetEventBus(bus *events.Bus, runName string) {
	r.bus = bus
	r.runName = runName
}

func (r *Runner) publish(ev events.Event) {
	if r.bus != nil {
		r.bus.Publish(ev)
	}
}

// Single は1本の接続上でSingleOps回の操作を順次実行する
func (r *Runner) Single(ctx context.Context, conn *client.Conn) Result {
	r.publish(events.NewBenchStarted(r.runName, "single_client"))

	w := NewWorkload(r.config.SingleOps, r.config.KeyLength, r.config.ValueSize)
	rec := metrics.NewRecorder()
	bar := r.newProgressBar(w.Ops(), "single_client")

	start := time.Now()
	r.runWorkload(ctx, "single_client", conn, w, rec, bar)
	wall := time.Since(start)

	result := Aggregate("single_client", []metrics.Snapshot{rec.Snapshot()}, wall, 1, r.config.SingleOps)
	r.publish(events.NewBenchCompleted(r.runName, result.TestName,
		result.Operations, result.Errors, result.Throughput))
	return result
}

// Concurrent はClients本の接続を確立し、各接続で独立したワークロードを
// 完全並行に実行する
//
// 確立に失敗した接続は実行から除外して別途報告する。1本も確立できない
// 場合は操作ゼロ・スループットゼロの結果を返し、ハーネス全体は失敗しない。
// 経過時間は全ワークロード起動から全完了までのウォールクロック。
func (r *Runner) Concurrent(ctx context.Context) Result {
	r.publish(events.NewBenchStarted(r.runName, "multi_client"))

	conns := make([]*client.Conn, 0, r.config.Clients)
	for i := 0; i < r.config.Clients; i++ {
		conn, err := client.Dial(r.addr, r.retry, client.WithCommandTimeout(r.cmdTimeout))
		if err != nil {
			logger.Warn("bench", "client %d failed to connect: %v", i, err)
			r.publish(events.NewConnectionLost(r.runName, i, err))
			continue
		}
		conns = append(conns, conn)
	}
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()

	if len(conns) == 0 {
		logger.Error("bench", "no clients connected")
		return Result{TestName: "multi_client", OpsPerClient: r.config.OpsPerClient}
	}

	bar := r.newProgressBar(len(conns)*r.config.OpsPerClient, "multi_client")
	snaps := make([]metrics.Snapshot, len(conns))

	// fan-out: 接続ごとに1ゴルーチン。キー・値・カウンタは各ワークロードが
	// 専有し、結果の読み取りはjoin後のみ
	start := time.Now()
	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func(i int, conn *client.Conn) {
			defer wg.Done()
			w := NewWorkload(r.config.OpsPerClient, r.config.KeyLength, r.config.ValueSize)
			rec := metrics.NewRecorder()
			r.runWorkload(ctx, "multi_client", conn, w, rec, bar)
			snaps[i] = rec.Snapshot()
		}(i, conn)
	}
	wg.Wait()
	wall := time.Since(start)

	result := Aggregate("multi_client", snaps, wall, len(conns), r.config.OpsPerClient)
	r.publish(events.NewBenchCompleted(r.runName, result.TestName,
		result.Operations, result.Errors, result.Throughput))
	return result
}

// runWorkload は1本の接続上でワークロードを順次実行する
// 操作単位の失敗はカウントするだけで実行は続行し、全ops回を必ず試みる
func (r *Runner) runWorkload(ctx context.Context, test string, conn *client.Conn,
	w *Workload, rec *metrics.Recorder, bar *progressbar.ProgressBar) {

	var limiter *rate.Limiter
	if r.config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.config.RateLimit), 1)
	}

	for i, ops := 0, w.Ops(); i < ops; i++ {
		// 中断時は残りを発行せずに抜ける（接続のクローズは呼び出し側）
		select {
		case <-ctx.Done():
			return
		default:
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}

		start := time.Now()
		var err error
		if w.IsWrite(i) {
			err = conn.Set(w.KeyAt(i), w.ValueAt(i))
		} else {
			_, _, err = conn.Get(w.KeyAt(i))
		}
		latency := time.Since(start)

		if err != nil {
			rec.RecordFailure(latency)
		} else {
			rec.RecordSuccess(latency)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
		if (i+1)%progressEventEvery == 0 {
			r.publish(events.NewBenchProgress(r.runName, test, rec.Operations(), rec.Failures()))
		}
	}
}

func (r *Runner) newProgressBar(total int, description string) *progressbar.ProgressBar {
	if !r.config.ShowProgress {
		return nil
	}
	return progressbar.Default(int64(total), description)
}

// Aggregate は接続ごとの結果を1つのResultに純粋に畳み込む
//
// 操作数とエラー数は合計、Durationは並行実行全体のウォールクロック
// （接続ごとの時間の合計ではない）、スループットはゼロ除算を避けて
// 経過時間ゼロならゼロになる。
func Aggregate(testName string, snaps []metrics.Snapshot, wall time.Duration,
	clients, opsPerClient int) Result {

	result := Result{
		TestName:     testName,
		Duration:     wall,
		Clients:      clients,
		OpsPerClient: opsPerClient,
	}

	var latencyWeightedNs uint64
	for _, s := range snaps {
		result.Operations += s.Operations
		result.Errors += s.Failures
		latencyWeightedNs += uint64(s.AverageLatency.Nanoseconds()) * s.Operations
		if s.P99Latency > result.P99Latency {
			result.P99Latency = s.P99Latency
		}
	}

	if result.Operations > 0 {
		result.AvgLatency = time.Duration(latencyWeightedNs / result.Operations)
	}
	if wall > 0 {
		result.Throughput = float64(result.Operations) / wall.Seconds()
	}
	return result
}
