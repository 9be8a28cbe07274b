package bench

import (
	"context"
	"net"
	"testing"
	"time"

	"resp-bench/internal/client"
	"resp-bench/internal/metrics"
	"resp-bench/internal/server"
)

func quickRetry() client.RetryPolicy {
	return client.RetryPolicy{Attempts: 2, AttemptTimeout: time.Second, Delay: 10 * time.Millisecond}
}

func startServer(t *testing.T, config server.Config) *server.Server {
	t.Helper()
	config.Addr = "127.0.0.1:0"
	srv := server.New(config)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

func TestWorkloadShape(t *testing.T) {
	w := NewWorkload(10, 16, 32)

	if w.Ops() != 10 {
		t.Errorf("expected 10 ops, got %d", w.Ops())
	}
	if len(w.keys) != 5 || len(w.values) != 5 {
		t.Errorf("expected 5 keys and values, got %d/%d", len(w.keys), len(w.values))
	}

	for i, ops := 0, w.Ops(); i < ops; i++ {
		if w.IsWrite(i) != (i%2 == 0) {
			t.Errorf("op %d: wrong write/read alternation", i)
		}
	}

	// Every GET must target the key SET by the preceding operation
	for i := 1; i < w.Ops(); i += 2 {
		if w.KeyAt(i) != w.KeyAt(i-1) {
			t.Errorf("op %d: GET key %q differs from preceding SET key %q",
				i, w.KeyAt(i), w.KeyAt(i-1))
		}
	}

	if w.ValueAt(1) != nil {
		t.Error("expected nil value for GET operation")
	}
	if len(w.ValueAt(0)) != 32 {
		t.Errorf("expected 32-byte value, got %d", len(w.ValueAt(0)))
	}
}

func TestWorkloadOddOps(t *testing.T) {
	// ceil(7/2) == 4 keys
	w := NewWorkload(7, 16, 8)
	if len(w.keys) != 4 {
		t.Errorf("expected 4 keys for 7 ops, got %d", len(w.keys))
	}
	// Last op (index 6) is a SET of keys[3]
	if !w.IsWrite(6) || w.KeyAt(6) != w.keys[3] {
		t.Error("unexpected final operation shape")
	}
}

func TestSingleBenchmark(t *testing.T) {
	srv := startServer(t, server.Config{})

	conn, err := client.Dial(srv.Addr(), quickRetry(), client.WithCommandTimeout(time.Second))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	runner := NewRunner(srv.Addr(), quickRetry(), time.Second, Config{
		SingleOps: 200, KeyLength: 16, ValueSize: 32,
	})
	result := runner.Single(context.Background(), conn)

	if result.TestName != "single_client" {
		t.Errorf("expected single_client, got %s", result.TestName)
	}
	if result.Operations != 200 {
		t.Errorf("expected 200 operations, got %d", result.Operations)
	}
	if result.Errors != 0 {
		t.Errorf("expected 0 errors against healthy server, got %d", result.Errors)
	}
	if result.Clients != 1 || result.OpsPerClient != 200 {
		t.Errorf("unexpected client accounting: %+v", result)
	}
	if result.Throughput <= 0 {
		t.Error("expected positive throughput")
	}
	// 100 distinct keys must have been stored
	if srv.Keys() != 100 {
		t.Errorf("expected 100 keys on server, got %d", srv.Keys())
	}
}

func TestConcurrentBenchmark(t *testing.T) {
	srv := startServer(t, server.Config{})

	runner := NewRunner(srv.Addr(), quickRetry(), time.Second, Config{
		Clients: 4, OpsPerClient: 100, KeyLength: 16, ValueSize: 16,
	})
	result := runner.Concurrent(context.Background())

	if result.TestName != "multi_client" {
		t.Errorf("expected multi_client, got %s", result.TestName)
	}
	if result.Clients != 4 {
		t.Errorf("expected 4 clients, got %d", result.Clients)
	}
	if result.Operations != 400 {
		t.Errorf("expected 400 operations, got %d", result.Operations)
	}
	if result.Errors != 0 {
		t.Errorf("expected 0 errors, got %d", result.Errors)
	}
}

func TestConcurrentNoServerYieldsZeroResult(t *testing.T) {
	// Reserve an address with no listener
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	runner := NewRunner(addr,
		client.RetryPolicy{Attempts: 1, AttemptTimeout: 200 * time.Millisecond, Delay: time.Millisecond},
		time.Second,
		Config{Clients: 3, OpsPerClient: 100})
	result := runner.Concurrent(context.Background())

	if result.Clients != 0 {
		t.Errorf("expected 0 clients, got %d", result.Clients)
	}
	if result.Operations != 0 || result.Errors != 0 || result.Throughput != 0 {
		t.Errorf("expected zero-op zero-throughput result, got %+v", result)
	}
}

func TestBenchmarkAbsorbsTimeouts(t *testing.T) {
	// A stalling server: the first command times out, the connection fails,
	// and every remaining operation is counted as an error. The run still
	// attempts all planned operations and terminates.
	srv := startServer(t, server.Config{
		Faults: server.Faults{Mode: server.FaultStall},
	})

	conn, err := client.Dial(srv.Addr(), quickRetry(), client.WithCommandTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	runner := NewRunner(srv.Addr(), quickRetry(), 100*time.Millisecond, Config{SingleOps: 20})
	result := runner.Single(context.Background(), conn)

	if result.Operations != 20 {
		t.Errorf("expected all 20 operations attempted, got %d", result.Operations)
	}
	if result.Errors != 20 {
		t.Errorf("expected 20 errors, got %d", result.Errors)
	}
}

func TestConcurrentIsolation(t *testing.T) {
	// Each workload must only ever read values it wrote itself. The bundled
	// server stores whatever is sent, so any cross-talk would surface as a
	// GET returning a value of the wrong length.
	srv := startServer(t, server.Config{})

	runner := NewRunner(srv.Addr(), quickRetry(), time.Second, Config{
		Clients: 3, OpsPerClient: 200, KeyLength: 16, ValueSize: 64,
	})
	result := runner.Concurrent(context.Background())

	if result.Errors != 0 {
		t.Errorf("expected isolated workloads to run error-free, got %d errors", result.Errors)
	}
	// 3 clients x 100 distinct keys, barring astronomically unlikely collisions
	if keys := srv.Keys(); keys < 295 || keys > 300 {
		t.Errorf("unexpected key count %d", keys)
	}
}

func TestRateLimit(t *testing.T) {
	srv := startServer(t, server.Config{})

	conn, err := client.Dial(srv.Addr(), quickRetry(), client.WithCommandTimeout(time.Second))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	runner := NewRunner(srv.Addr(), quickRetry(), time.Second, Config{
		SingleOps: 20, RateLimit: 100, // 100 ops/sec -> 20 ops take >= ~190ms
	})
	start := time.Now()
	result := runner.Single(context.Background(), conn)
	elapsed := time.Since(start)

	if result.Operations != 20 {
		t.Errorf("expected 20 operations, got %d", result.Operations)
	}
	if elapsed < 150*time.Millisecond {
		t.Errorf("rate limit not applied: 20 ops finished in %v", elapsed)
	}
}

func TestRunCancellation(t *testing.T) {
	srv := startServer(t, server.Config{
		Faults: server.Faults{Mode: server.FaultDelay, Delay: 20 * time.Millisecond},
	})

	conn, err := client.Dial(srv.Addr(), quickRetry(), client.WithCommandTimeout(time.Second))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	runner := NewRunner(srv.Addr(), quickRetry(), time.Second, Config{SingleOps: 10_000})
	result := runner.Single(ctx, conn)

	// Cancellation stops issuing; it must not hang or attempt all operations
	if result.Operations >= 10_000 {
		t.Error("expected cancellation to cut the run short")
	}
}

func TestAggregate(t *testing.T) {
	snaps := []metrics.Snapshot{
		{Operations: 100, Failures: 2, AverageLatency: 10 * time.Millisecond, P99Latency: 30 * time.Millisecond},
		{Operations: 300, Failures: 1, AverageLatency: 20 * time.Millisecond, P99Latency: 50 * time.Millisecond},
	}

	result := Aggregate("multi_client", snaps, 2*time.Second, 2, 200)

	if result.Operations != 400 || result.Errors != 3 {
		t.Errorf("unexpected sums: %+v", result)
	}
	if result.Throughput != 200 {
		t.Errorf("expected 200 ops/sec, got %f", result.Throughput)
	}
	// Weighted average: (100*10ms + 300*20ms) / 400 = 17.5ms
	if result.AvgLatency != 17500*time.Microsecond {
		t.Errorf("expected 17.5ms weighted average, got %v", result.AvgLatency)
	}
	if result.P99Latency != 50*time.Millisecond {
		t.Errorf("expected max p99 50ms, got %v", result.P99Latency)
	}
}

func TestAggregateZeroDuration(t *testing.T) {
	result := Aggregate("single_client", nil, 0, 0, 0)
	if result.Throughput != 0 {
		t.Errorf("expected zero throughput for zero duration, got %f", result.Throughput)
	}
	if result.AvgLatency != 0 {
		t.Errorf("expected zero latency, got %v", result.AvgLatency)
	}
}
