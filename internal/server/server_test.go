package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"resp-bench/internal/resp"
)

func startServer(t *testing.T, config Config) *Server {
	t.Helper()
	config.Addr = "127.0.0.1:0"
	srv := New(config)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

// roundTrip sends one command over a raw connection and decodes the reply.
func roundTrip(t *testing.T, conn net.Conn, dec *resp.Decoder, args ...string) resp.Value {
	t.Helper()
	if _, err := conn.Write(resp.NewCommand(args...).Encode()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	v, err := dec.Decode()
	if err != nil {
		t.Fatalf("decode reply failed: %v", err)
	}
	return v
}

func dialRaw(t *testing.T, srv *Server) (net.Conn, *resp.Decoder) {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn, resp.NewDecoder(bufio.NewReader(conn))
}

func TestServerEndToEnd(t *testing.T) {
	srv := startServer(t, Config{})
	conn, dec := dialRaw(t, srv)

	// PING -> PONG; SET -> OK; GET -> value; DEL -> 1; GET -> null
	if v := roundTrip(t, conn, dec, "PING"); v.Str != "PONG" {
		t.Errorf("expected PONG, got %q", v.Str)
	}
	if v := roundTrip(t, conn, dec, "SET", "abc123", "hello"); v.Str != "OK" {
		t.Errorf("expected OK, got %q", v.Str)
	}
	if v := roundTrip(t, conn, dec, "GET", "abc123"); v.Str != "hello" {
		t.Errorf("expected hello, got %q", v.Str)
	}
	if v := roundTrip(t, conn, dec, "DEL", "abc123"); v.Int != 1 {
		t.Errorf("expected 1, got %d", v.Int)
	}
	if v := roundTrip(t, conn, dec, "GET", "abc123"); !v.IsNull() {
		t.Errorf("expected null reply after delete, got %+v", v)
	}
	if v := roundTrip(t, conn, dec, "DEL", "abc123"); v.Int != 0 {
		t.Errorf("expected 0 for second delete, got %d", v.Int)
	}
}

func TestServerOverwrite(t *testing.T) {
	srv := startServer(t, Config{})
	conn, dec := dialRaw(t, srv)

	roundTrip(t, conn, dec, "SET", "k", "first")
	roundTrip(t, conn, dec, "SET", "k", "second")
	if v := roundTrip(t, conn, dec, "GET", "k"); v.Str != "second" {
		t.Errorf("expected last write to win, got %q", v.Str)
	}
}

func TestServerEcho(t *testing.T) {
	srv := startServer(t, Config{})
	conn, dec := dialRaw(t, srv)

	if v := roundTrip(t, conn, dec, "ECHO", "hey"); v.Str != "hey" {
		t.Errorf("expected hey, got %q", v.Str)
	}
	if v := roundTrip(t, conn, dec, "PING", "hello"); v.Str != "hello" {
		t.Errorf("expected PING with message to echo, got %q", v.Str)
	}
}

func TestServerErrors(t *testing.T) {
	srv := startServer(t, Config{})
	conn, dec := dialRaw(t, srv)

	v := roundTrip(t, conn, dec, "FLUSHALL")
	if v.Kind != resp.KindError {
		t.Errorf("expected error for unknown command, got %+v", v)
	}

	v = roundTrip(t, conn, dec, "SET", "only-key")
	if v.Kind != resp.KindError {
		t.Errorf("expected arity error, got %+v", v)
	}
}

func TestServerBinaryValues(t *testing.T) {
	srv := startServer(t, Config{})
	conn, dec := dialRaw(t, srv)

	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i)
	}

	cmd := resp.NewCommand("SET", "bin").AppendBytes(payload)
	if _, err := conn.Write(cmd.Encode()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if v, err := dec.Decode(); err != nil || v.Str != "OK" {
		t.Fatalf("set binary failed: %+v, %v", v, err)
	}

	v := roundTrip(t, conn, dec, "GET", "bin")
	if string(v.Bytes()) != string(payload) {
		t.Error("binary value not preserved byte-for-byte")
	}
}

func TestServerFaultStall(t *testing.T) {
	srv := startServer(t, Config{Faults: Faults{Mode: FaultStall}})
	conn, dec := dialRaw(t, srv)

	if _, err := conn.Write(resp.NewCommand("PING").Encode()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, err := dec.Decode(); err == nil {
		t.Error("expected no reply from stalled server")
	}
}

func TestServerFaultClose(t *testing.T) {
	srv := startServer(t, Config{Faults: Faults{Mode: FaultClose}})
	conn, dec := dialRaw(t, srv)

	if _, err := conn.Write(resp.NewCommand("PING").Encode()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := dec.Decode(); err == nil {
		t.Error("expected connection to be closed by server")
	}
}

func TestServerFaultDelay(t *testing.T) {
	srv := startServer(t, Config{Faults: Faults{Mode: FaultDelay, Delay: 50 * time.Millisecond}})
	conn, dec := dialRaw(t, srv)

	start := time.Now()
	if v := roundTrip(t, conn, dec, "PING"); v.Str != "PONG" {
		t.Errorf("expected PONG, got %q", v.Str)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected at least 50ms delay, got %v", elapsed)
	}
}

func TestServerStopIdempotent(t *testing.T) {
	srv := startServer(t, Config{})
	srv.Stop()
	srv.Stop()
}

func TestServerDoubleStart(t *testing.T) {
	srv := startServer(t, Config{})
	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected error on double start")
	}
}

func TestStoreIsolation(t *testing.T) {
	store := newMemoryStore()
	original := []byte("value")
	store.Set("k", original)

	got, ok := store.Get("k")
	if !ok {
		t.Fatal("expected key to exist")
	}
	got[0] = 'X'

	again, _ := store.Get("k")
	if string(again) != "value" {
		t.Error("store value mutated through returned slice")
	}

	original[0] = 'Y'
	again, _ = store.Get("k")
	if string(again) != "value" {
		t.Error("store value mutated through caller slice")
	}
}
