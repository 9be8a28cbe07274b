package bench

import (
	cryptorand "crypto/rand"
	"math/rand"
)

// Workload は1本の接続が実行する交互SET/GET操作列
//
// ops回の操作に対して ceil(ops/2) 個のキーと値を事前生成する。
// 偶数番目の操作は keys[i/2] へのSET、奇数番目は keys[(i-1)/2] のGET。
// GETは必ず同じ列の中で先にSETされたキーを対象にする。
type Workload struct {
	ops    int
	keys   []string
	values [][]byte
}

// NewWorkload は新しいワークロードを生成する
// キーと値は独立したランダム集合（接続間の衝突は正しさに影響しない）
func NewWorkload(ops, keyLength, valueSize int) *Workload {
	k := (ops + 1) / 2
	w := &Workload{
		ops:    ops,
		keys:   make([]string, k),
		values: make([][]byte, k),
	}
	for i := 0; i < k; i++ {
		w.keys[i] = randomHexKey(keyLength)
		value := make([]byte, valueSize)
		_, _ = cryptorand.Read(value)
		w.values[i] = value
	}
	return w
}

// Ops は計画された操作数を返す
func (w *Workload) Ops() int {
	return w.ops
}

// KeyAt はi番目の操作が対象とするキーを返す
func (w *Workload) KeyAt(i int) string {
	if i%2 == 0 {
		return w.keys[i/2]
	}
	return w.keys[(i-1)/2]
}

// IsWrite はi番目の操作がSETかどうかを返す
func (w *Workload) IsWrite(i int) bool {
	return i%2 == 0
}

// ValueAt はi番目のSET操作の値を返す（GET操作ではnil）
func (w *Workload) ValueAt(i int) []byte {
	if i%2 != 0 {
		return nil
	}
	return w.values[i/2]
}

const hexDigits = "0123456789abcdef"

func randomHexKey(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = hexDigits[rand.Intn(len(hexDigits))]
	}
	return string(b)
}
