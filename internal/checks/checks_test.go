package checks

import (
	"context"
	"testing"
	"time"

	"resp-bench/internal/client"
	"resp-bench/internal/server"
)

func dialTestServer(t *testing.T, config server.Config) *client.Conn {
	t.Helper()

	config.Addr = "127.0.0.1:0"
	srv := server.New(config)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(srv.Stop)

	conn, err := client.Dial(srv.Addr(),
		client.RetryPolicy{Attempts: 2, AttemptTimeout: time.Second, Delay: 10 * time.Millisecond},
		client.WithCommandTimeout(time.Second))
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRunAllPass(t *testing.T) {
	conn := dialTestServer(t, server.Config{})

	results := Run(conn)
	wantOrder := []string{"PING", "SET/GET", "DEL", "OVERWRITE", "BINARY_SAFE"}

	if len(results) != len(wantOrder) {
		t.Fatalf("expected %d results, got %d", len(wantOrder), len(results))
	}
	for i, r := range results {
		if r.Name != wantOrder[i] {
			t.Errorf("result %d: expected %s, got %s", i, wantOrder[i], r.Name)
		}
		if !r.Passed {
			t.Errorf("check %s failed against healthy server", r.Name)
		}
	}
	if !Passed(results) {
		t.Error("expected Passed to be true when all checks pass")
	}
}

func TestRunAgainstFailedConnectionReportsAllChecks(t *testing.T) {
	conn := dialTestServer(t, server.Config{})
	_ = conn.Close()

	// Every check fails, but the suite still returns the full ordered list
	results := Run(conn)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Passed {
			t.Errorf("check %s passed against closed connection", r.Name)
		}
	}
	if Passed(results) {
		t.Error("expected Passed to be false")
	}
}

func TestRunAgainstStalledServer(t *testing.T) {
	conn := dialTestServer(t, server.Config{
		Faults: server.Faults{Mode: server.FaultStall},
	})

	done := make(chan []Result, 1)
	go func() { done <- Run(conn) }()

	select {
	case results := <-done:
		if Passed(results) {
			t.Error("expected checks to fail against stalled server")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("suite did not terminate against stalled server")
	}
}

func TestRandomHexKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := randomHexKey(16)
		if len(key) != 16 {
			t.Fatalf("expected 16-char key, got %q", key)
		}
		for _, c := range key {
			if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
				t.Fatalf("non-hex character %q in key %q", c, key)
			}
		}
		seen[key] = true
	}
	if len(seen) < 99 {
		t.Errorf("expected ~100 distinct keys, got %d", len(seen))
	}
}
