// Package bench generates deterministic workloads and drives them against a
// server, sequentially over one connection or concurrently over N.
//
// A workload of n operations precomputes ceil(n/2) random keys and values,
// then alternates strictly: even operation indices SET keys[i/2], odd indices
// GET keys[(i-1)/2]. Every GET therefore targets a key SET earlier in the
// same sequence, so hits are deterministic. Replies are consumed one at a
// time; there is no pipelining.
//
// Per-operation failures are counted and absorbed: a run always attempts all
// n operations regardless of intermediate errors. For multi-connection runs
// each connection owns its own workload, keys and counters; results are
// merged only at the join point, so no locking is needed.
//
//	runner := bench.NewRunner(addr, retry, timeout, bench.DefaultConfig())
//	result := runner.Concurrent(ctx)
//	fmt.Printf("%s: %.0f ops/sec\n", result.TestName, result.Throughput)
//
// An optional per-connection rate limit (golang.org/x/time/rate) can cap
// issue rate; it is disabled by default, in which case the planned number of
// operations is issued with no admission control.
package bench
