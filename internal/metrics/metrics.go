package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const defaultMaxSamples = 1000

// Recorder は1つのワークロードの操作回数とレイテンシを収集する
type Recorder struct {
	operations     atomic.Uint64
	failures       atomic.Uint64
	totalLatencyNs atomic.Uint64

	mu         sync.Mutex
	startTime  time.Time
	latencies  []time.Duration
	maxSamples int
}

// NewRecorder は新しいRecorderを作成する
func NewRecorder() *Recorder {
	return &Recorder{
		startTime:  time.Now(),
		latencies:  make([]time.Duration, 0, defaultMaxSamples),
		maxSamples: defaultMaxSamples,
	}
}

// RecordSuccess は成功した操作を記録する
func (r *Recorder) RecordSuccess(latency time.Duration) {
	r.operations.Add(1)
	r.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
	r.sample(latency)
}

// RecordFailure は失敗した操作を記録する
// 失敗も操作として数える（ベンチマークは計画した操作数を必ず消化する）
func (r *Recorder) RecordFailure(latency time.Duration) {
	r.operations.Add(1)
	r.failures.Add(1)
	r.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
}

func (r *Recorder) sample(latency time.Duration) {
	r.mu.Lock()
	if len(r.latencies) < r.maxSamples {
		r.latencies = append(r.latencies, latency)
	}
	r.mu.Unlock()
}

// Operations は記録された操作数（失敗を含む）を返す
func (r *Recorder) Operations() uint64 {
	return r.operations.Load()
}

// Failures は失敗した操作数を返す
func (r *Recorder) Failures() uint64 {
	return r.failures.Load()
}

// ErrorRate はエラー率を返す（0.0〜1.0）
func (r *Recorder) ErrorRate() float64 {
	total := r.operations.Load()
	if total == 0 {
		return 0
	}
	return float64(r.failures.Load()) / float64(total)
}

// AverageLatency は平均レイテンシを返す
func (r *Recorder) AverageLatency() time.Duration {
	total := r.operations.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(r.totalLatencyNs.Load() / total)
}

// P99Latency はP99レイテンシを返す（成功サンプルベース）
func (r *Recorder) P99Latency() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.latencies) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(r.latencies))
	copy(sorted, r.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Snapshot は1つのワークロードの不変なメトリクス要約
type Snapshot struct {
	Operations     uint64
	Failures       uint64
	ErrorRate      float64
	AverageLatency time.Duration
	P99Latency     time.Duration
	Elapsed        time.Duration
	Throughput     float64 // ops/sec（経過時間ゼロなら0）
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (r *Recorder) Snapshot() Snapshot {
	elapsed := time.Since(r.startTime)
	ops := r.operations.Load()

	throughput := 0.0
	if elapsed > 0 {
		throughput = float64(ops) / elapsed.Seconds()
	}

	return Snapshot{
		Operations:     ops,
		Failures:       r.failures.Load(),
		ErrorRate:      r.ErrorRate(),
		AverageLatency: r.AverageLatency(),
		P99Latency:     r.P99Latency(),
		Elapsed:        elapsed,
		Throughput:     throughput,
	}
}
