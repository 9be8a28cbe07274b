package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"resp-bench/internal/logger"
	"resp-bench/internal/resp"
)

// ErrNotConnected は準備状態でない接続への操作を表す使用エラー
var ErrNotConnected = errors.New("client: connection is not ready")

// CommandError はサーバーからのエラー応答（-ERR ...）を表す
// トランスポート障害とは異なり、接続はそのまま使用できる
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return "client: server replied with error: " + e.Message
}

// TimeoutError はコマンドタイムアウトを表す
// 読み取り位置が不定になるため接続は失敗状態へ遷移する
type TimeoutError struct {
	Op  string
	err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("client: %s timed out: %v", e.Op, e.err)
}

func (e *TimeoutError) Unwrap() error { return e.err }

// RetryPolicy は接続確立時のリトライ方針
// 単一接続・複数接続どちらのセットアップ経路でも再利用される
type RetryPolicy struct {
	Attempts       int           // 試行回数
	AttemptTimeout time.Duration // 1試行あたりのタイムアウト
	Delay          time.Duration // 失敗後の待機時間
}

// DefaultRetryPolicy はデフォルトのリトライ方針を返す
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:       10,
		AttemptTimeout: 5 * time.Second,
		Delay:          500 * time.Millisecond,
	}
}

type state int

const (
	stateReady state = iota
	stateFailed
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateReady:
		return "ready"
	case stateFailed:
		return "failed"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn は1本のTCPセッションを表す
// 同時に送れるコマンドは1つだけ（パイプライン非対応）
type Conn struct {
	addr    string
	timeout time.Duration // コマンドごとのタイムアウト

	mu    sync.Mutex
	conn  net.Conn
	w     *bufio.Writer
	dec   *resp.Decoder
	state state
}

// Option はConnの設定を変更する
type Option func(*Conn)

// WithCommandTimeout はコマンドごとのタイムアウトを設定する
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Conn) { c.timeout = d }
}

// Dial はpolicyに従ってaddrへの接続を確立する
//
// 各試行はAttemptTimeoutで時間制限され、失敗するとDelayだけ待って
// 再試行する。全試行が失敗した場合は最後のエラーを返す。呼び出し側に
// とっては報告可能な結果であり、回復不能な状態ではない。
func Dial(addr string, policy RetryPolicy, opts ...Option) (*Conn, error) {
	if policy.Attempts <= 0 {
		policy.Attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		nc, err := net.DialTimeout("tcp", addr, policy.AttemptTimeout)
		if err == nil {
			c := &Conn{
				addr:    addr,
				timeout: 5 * time.Second,
				conn:    nc,
				w:       bufio.NewWriter(nc),
				dec:     resp.NewDecoder(bufio.NewReader(nc)),
				state:   stateReady,
			}
			for _, opt := range opts {
				opt(c)
			}
			return c, nil
		}

		lastErr = err
		if attempt < policy.Attempts-1 {
			time.Sleep(policy.Delay)
		}
	}

	logger.Warn("client", "failed to connect to %s after %d attempts: %v",
		addr, policy.Attempts, lastErr)
	return nil, fmt.Errorf("client: connect %s after %d attempts: %w",
		addr, policy.Attempts, lastErr)
}

// Addr は接続先アドレスを返す
func (c *Conn) Addr() string {
	return c.addr
}

// Ready は接続がコマンドを受け付けられる状態かを返す
func (c *Conn) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateReady
}

// Execute はコマンドを送信し、完全な応答を1つ受信して返す
//
// 準備状態でなければErrNotConnectedを返す。書き込みと応答読み取りは
// コマンドタイムアウトで制限される。タイムアウト・プロトコル違反・
// I/Oエラーは接続を失敗状態にする。エラー応答は*CommandErrorとして
// 返り、接続は使用可能なまま残る。
func (c *Conn) Execute(cmd resp.Command) (resp.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateReady {
		return resp.Value{}, fmt.Errorf("%w (state: %s)", ErrNotConnected, c.state)
	}

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.fail()
		return resp.Value{}, fmt.Errorf("client: set deadline: %w", err)
	}

	if _, err := c.w.Write(cmd.Encode()); err != nil {
		c.fail()
		return resp.Value{}, c.classify("write "+cmd.Name(), err)
	}
	if err := c.w.Flush(); err != nil {
		c.fail()
		return resp.Value{}, c.classify("write "+cmd.Name(), err)
	}

	v, err := c.dec.Decode()
	if err != nil {
		c.fail()
		return resp.Value{}, c.classify("read "+cmd.Name()+" reply", err)
	}

	if v.Kind == resp.KindError {
		return v, &CommandError{Message: v.Str}
	}
	return v, nil
}

// fail は接続を失敗状態にしてソケットを解放する（ロック保持前提）
func (c *Conn) fail() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = stateFailed
}

// classify はI/O・デコードエラーを分類する
func (c *Conn) classify(op string, err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &TimeoutError{Op: op, err: err}
	}
	var perr *resp.ProtocolError
	if errors.As(err, &perr) {
		// デコーダー内部のタイムアウトもここに来る
		if errors.As(perr.Unwrap(), &nerr) && nerr.Timeout() {
			return &TimeoutError{Op: op, err: err}
		}
		return perr
	}
	return fmt.Errorf("client: %s: %w", op, err)
}

// Close は接続を閉じてソケットを解放する
// 何度呼んでも安全（未接続・クローズ済みでも何もしない）
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return nil
	}

	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	c.state = stateClosed
	return err
}
