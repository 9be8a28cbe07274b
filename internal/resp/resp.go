package resp

import (
	"strconv"
	"strings"
)

// Kind はRESP応答の型タグを表す
type Kind int

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulkString
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple-string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value はデコードされた1つのRESP応答を表すタグ付きユニオン
//
// Kindに応じて有効なフィールドが決まる:
//   - KindSimpleString, KindError, KindBulkString: Str
//   - KindInteger: Int
//   - KindArray: Elems
//
// NullはBulkString/Arrayのnull値（$-1 / *-1）を示す。
// null のバルク文字列は空文字列とは区別される。
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Elems []Value
	Null  bool
}

// SimpleString は単純文字列のValueを作成する
func SimpleString(s string) Value {
	return Value{Kind: KindSimpleString, Str: s}
}

// ErrorValue はエラー応答のValueを作成する
func ErrorValue(msg string) Value {
	return Value{Kind: KindError, Str: msg}
}

// Integer は整数のValueを作成する
func Integer(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

// Bulk はバルク文字列のValueを作成する
func Bulk(b []byte) Value {
	return Value{Kind: KindBulkString, Str: string(b)}
}

// NullBulk はnullバルク文字列（$-1）のValueを返す
func NullBulk() Value {
	return Value{Kind: KindBulkString, Null: true}
}

// Array は配列のValueを作成する
func Array(elems ...Value) Value {
	return Value{Kind: KindArray, Elems: elems}
}

// NullArray はnull配列（*-1）のValueを返す
func NullArray() Value {
	return Value{Kind: KindArray, Null: true}
}

// IsNull はnullバルク文字列またはnull配列かどうかを返す
func (v Value) IsNull() bool {
	return v.Null
}

// Bytes はテキスト系Valueのペイロードをバイト列で返す
// nullバルク文字列の場合はnilを返す
func (v Value) Bytes() []byte {
	if v.Null {
		return nil
	}
	return []byte(v.Str)
}

// Encode はValueをRESPワイヤ形式にエンコードする
// バンドルサーバーの応答書き込みと往復テストで使用される
func (v Value) Encode() []byte {
	return v.append(nil)
}

func (v Value) append(buf []byte) []byte {
	switch v.Kind {
	case KindSimpleString:
		buf = append(buf, '+')
		buf = append(buf, v.Str...)
		buf = append(buf, crlf...)
	case KindError:
		buf = append(buf, '-')
		buf = append(buf, v.Str...)
		buf = append(buf, crlf...)
	case KindInteger:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, v.Int, 10)
		buf = append(buf, crlf...)
	case KindBulkString:
		if v.Null {
			buf = append(buf, "$-1\r\n"...)
			break
		}
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(v.Str)), 10)
		buf = append(buf, crlf...)
		buf = append(buf, v.Str...)
		buf = append(buf, crlf...)
	case KindArray:
		if v.Null {
			buf = append(buf, "*-1\r\n"...)
			break
		}
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(v.Elems)), 10)
		buf = append(buf, crlf...)
		for _, e := range v.Elems {
			buf = e.append(buf)
		}
	}
	return buf
}

// Command はRESPリクエストを表す引数列（先頭がコマンド動詞）
// 一度構築したら変更しない
type Command [][]byte

// NewCommand は文字列引数からCommandを作成する
func NewCommand(args ...string) Command {
	cmd := make(Command, 0, len(args))
	for _, a := range args {
		cmd = append(cmd, []byte(a))
	}
	return cmd
}

// AppendBytes はバイナリセーフな引数を追加したCommandを返す
func (c Command) AppendBytes(arg []byte) Command {
	return append(c, arg)
}

// Name はコマンド動詞を大文字で返す（空コマンドは空文字列）
func (c Command) Name() string {
	if len(c) == 0 {
		return ""
	}
	return strings.ToUpper(string(c[0]))
}

// Encode はCommandをarray-of-bulk-stringsフレームにエンコードする
//
// 形式: *<argc>\r\n に続き、各引数ごとに $<len>\r\n<bytes>\r\n
// 長さはバイト長なのでマルチバイト文字もバイナリデータも正しく扱える
func (c Command) Encode() []byte {
	size := headerSize(len(c))
	for _, arg := range c {
		size += headerSize(len(arg)) + len(arg) + len(crlf)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, '*')
	buf = strconv.AppendInt(buf, int64(len(c)), 10)
	buf = append(buf, crlf...)
	for _, arg := range c {
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(arg)), 10)
		buf = append(buf, crlf...)
		buf = append(buf, arg...)
		buf = append(buf, crlf...)
	}
	return buf
}

const crlf = "\r\n"

// headerSize は "*<n>\r\n" / "$<n>\r\n" 行の最大長を見積もる
func headerSize(n int) int {
	digits := 1
	for n >= 10 {
		n /= 10
		digits++
	}
	return 1 + digits + len(crlf)
}
