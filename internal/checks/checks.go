package checks

import (
	"bytes"
	cryptorand "crypto/rand"
	"encoding/base64"
	"fmt"
	"math/rand"

	"resp-bench/internal/client"
	"resp-bench/internal/logger"
)

// Result は1つのチェックの（名前, 合否）ペア
type Result struct {
	Name   string
	Passed bool
}

// Run は全チェックを順番に実行し、結果リストを返す
// 個々のチェックの失敗でスイート全体が中断することはない
func Run(conn *client.Conn) []Result {
	checks := []func(*client.Conn) Result{
		checkPing,
		checkSetGet,
		checkDel,
		checkOverwrite,
		checkBinarySafe,
	}

	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		results = append(results, check(conn))
	}
	return results
}

// Passed は全チェックが合格したかどうかを返す
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// checkPing はPINGが正確に"PONG"を返すことを確認する
func checkPing(conn *client.Conn) Result {
	reply, err := conn.Ping()
	if err != nil {
		logger.Debug("checks", "PING failed: %v", err)
		return Result{Name: "PING", Passed: false}
	}
	return Result{Name: "PING", Passed: reply == "PONG"}
}

// checkSetGet は新しいキーへのSET後のGETが値をそのまま返すことを確認する
func checkSetGet(conn *client.Conn) Result {
	key := randomHexKey(16)
	value := fmt.Sprintf("test_value_%04d", rand.Intn(9000)+1000)

	if err := conn.Set(key, []byte(value)); err != nil {
		logger.Debug("checks", "SET/GET: set failed: %v", err)
		return Result{Name: "SET/GET", Passed: false}
	}
	got, ok, err := conn.Get(key)
	if err != nil {
		logger.Debug("checks", "SET/GET: get failed: %v", err)
		return Result{Name: "SET/GET", Passed: false}
	}
	return Result{Name: "SET/GET", Passed: ok && string(got) == value}
}

// checkDel はDELがちょうど1を返し、以後のGETがnullを返すことを確認する
func checkDel(conn *client.Conn) Result {
	key := randomHexKey(16)

	if err := conn.Set(key, []byte("test_value")); err != nil {
		logger.Debug("checks", "DEL: set failed: %v", err)
		return Result{Name: "DEL", Passed: false}
	}
	removed, err := conn.Del(key)
	if err != nil || removed != 1 {
		logger.Debug("checks", "DEL: expected 1 removed, got %d (%v)", removed, err)
		return Result{Name: "DEL", Passed: false}
	}
	_, ok, err := conn.Get(key)
	if err != nil {
		logger.Debug("checks", "DEL: get failed: %v", err)
		return Result{Name: "DEL", Passed: false}
	}
	return Result{Name: "DEL", Passed: !ok}
}

// checkOverwrite は同一キーへの2回目のSETが勝つことを確認する（last-write-wins）
func checkOverwrite(conn *client.Conn) Result {
	key := randomHexKey(16)

	if err := conn.Set(key, []byte("first_value")); err != nil {
		logger.Debug("checks", "OVERWRITE: first set failed: %v", err)
		return Result{Name: "OVERWRITE", Passed: false}
	}
	if err := conn.Set(key, []byte("second_value")); err != nil {
		logger.Debug("checks", "OVERWRITE: second set failed: %v", err)
		return Result{Name: "OVERWRITE", Passed: false}
	}
	got, ok, err := conn.Get(key)
	if err != nil {
		logger.Debug("checks", "OVERWRITE: get failed: %v", err)
		return Result{Name: "OVERWRITE", Passed: false}
	}
	return Result{Name: "OVERWRITE", Passed: ok && string(got) == "second_value"}
}

// checkBinarySafe は任意のバイト列が長さ安全なテキスト包装で往復しても
// 元とバイト単位で一致することを確認する
func checkBinarySafe(conn *client.Conn) Result {
	key := randomHexKey(16)

	raw := make([]byte, 200)
	if _, err := cryptorand.Read(raw); err != nil {
		logger.Debug("checks", "BINARY_SAFE: rand failed: %v", err)
		return Result{Name: "BINARY_SAFE", Passed: false}
	}
	wrapped := base64.StdEncoding.EncodeToString(raw)

	if err := conn.Set(key, []byte(wrapped)); err != nil {
		logger.Debug("checks", "BINARY_SAFE: set failed: %v", err)
		return Result{Name: "BINARY_SAFE", Passed: false}
	}
	got, ok, err := conn.Get(key)
	if err != nil || !ok || string(got) != wrapped {
		logger.Debug("checks", "BINARY_SAFE: wrapped value mismatch (%v)", err)
		return Result{Name: "BINARY_SAFE", Passed: false}
	}

	decoded, err := base64.StdEncoding.DecodeString(string(got))
	if err != nil {
		logger.Debug("checks", "BINARY_SAFE: decode failed: %v", err)
		return Result{Name: "BINARY_SAFE", Passed: false}
	}
	return Result{Name: "BINARY_SAFE", Passed: bytes.Equal(decoded, raw)}
}

const hexDigits = "0123456789abcdef"

func randomHexKey(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = hexDigits[rand.Intn(len(hexDigits))]
	}
	return string(b)
}
