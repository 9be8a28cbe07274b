package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"resp-bench/internal/logger"
	"resp-bench/internal/resp"
)

// FaultMode は意図的な障害の種類を表す
type FaultMode int

const (
	FaultNone FaultMode = iota
	FaultDelay
	FaultStall
	FaultClose
)

func (f FaultMode) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultDelay:
		return "delay"
	case FaultStall:
		return "stall"
	case FaultClose:
		return "close"
	default:
		return "unknown"
	}
}

// Faults は障害注入の設定
type Faults struct {
	Mode  FaultMode
	Delay time.Duration // FaultDelay時の応答遅延
}

// Config はサーバーの設定
type Config struct {
	Addr   string // リッスンアドレス（:0で自動割り当て）
	Faults Faults
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Addr: "127.0.0.1:6379",
	}
}

// Server はインプロセスのmini-redisサーバー
type Server struct {
	config Config
	store  *memoryStore

	mu      sync.Mutex
	ln      net.Listener
	conns   map[net.Conn]struct{}
	running bool

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New は新しいサーバーを作成する
func New(config Config) *Server {
	return &Server{
		config: config,
		store:  newMemoryStore(),
		conns:  make(map[net.Conn]struct{}),
	}
}

// Start はリッスンを開始し、接続受付をバックグラウンドで実行する
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server: already running")
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.config.Addr, err)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.ln = ln
	s.running = true

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	logger.Info("server", "Listening on %s (faults: %s)", ln.Addr(), s.config.Faults.Mode)
	return nil
}

// Addr は実際のリッスンアドレスを返す（:0指定時に使う）
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return s.config.Addr
	}
	return s.ln.Addr().String()
}

// Keys は保存されているキー数を返す
func (s *Server) Keys() int {
	return s.store.Size()
}

// Stop はリスナーと全接続を閉じる
// 何度呼んでも安全
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	_ = s.ln.Close()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	logger.Info("server", "Stopped")
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				logger.Debug("server", "accept: %v", err)
			}
			return
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	dec := resp.NewDecoder(bufio.NewReader(conn))
	w := bufio.NewWriter(conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		req, err := dec.Decode()
		if err != nil {
			return
		}

		switch s.config.Faults.Mode {
		case FaultStall:
			// コマンドは読むが応答しない
			<-ctx.Done()
			return
		case FaultClose:
			return
		case FaultDelay:
			select {
			case <-time.After(s.config.Faults.Delay):
			case <-ctx.Done():
				return
			}
		}

		reply := s.dispatch(req)
		if _, err := w.Write(reply.Encode()); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// dispatch はリクエストフレームをコマンドとして実行し応答を返す
func (s *Server) dispatch(req resp.Value) resp.Value {
	if req.Kind != resp.KindArray || req.IsNull() || len(req.Elems) == 0 {
		return resp.ErrorValue("ERR invalid request")
	}

	args := make([][]byte, len(req.Elems))
	for i, e := range req.Elems {
		if e.Kind != resp.KindBulkString || e.IsNull() {
			return resp.ErrorValue("ERR invalid request")
		}
		args[i] = e.Bytes()
	}

	verb := strings.ToUpper(string(args[0]))
	switch verb {
	case "PING":
		if len(args) == 2 {
			return resp.Bulk(args[1])
		}
		return resp.SimpleString("PONG")
	case "ECHO":
		if len(args) != 2 {
			return argNumError("echo")
		}
		return resp.Bulk(args[1])
	case "SET":
		if len(args) != 3 {
			return argNumError("set")
		}
		s.store.Set(string(args[1]), args[2])
		return resp.SimpleString("OK")
	case "GET":
		if len(args) != 2 {
			return argNumError("get")
		}
		value, ok := s.store.Get(string(args[1]))
		if !ok {
			return resp.NullBulk()
		}
		return resp.Bulk(value)
	case "DEL":
		if len(args) < 2 {
			return argNumError("del")
		}
		var removed int64
		for _, key := range args[1:] {
			if s.store.Delete(string(key)) {
				removed++
			}
		}
		return resp.Integer(removed)
	default:
		return resp.ErrorValue(fmt.Sprintf("ERR unknown command '%s'", verb))
	}
}

func argNumError(cmd string) resp.Value {
	return resp.ErrorValue(fmt.Sprintf("ERR wrong number of arguments for '%s' command", cmd))
}
