// Package metrics collects per-workload operation timings.
//
// A Recorder is owned by exactly one workload (one connection's benchmark
// loop); no recorder is ever shared across goroutines that issue commands.
// Counters use atomics so that monitoring code may read them while the
// workload is running.
//
// # Basic Usage
//
//	rec := metrics.NewRecorder()
//	start := time.Now()
//	err := conn.Set(key, value)
//	if err != nil {
//	    rec.RecordFailure(time.Since(start))
//	} else {
//	    rec.RecordSuccess(time.Since(start))
//	}
//	snap := rec.Snapshot()
//
// The Snapshot is an immutable summary: totals, error rate, average and P99
// latency (sample-based), and overall throughput since the recorder was
// created.
package metrics
