package resp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// ProtocolError はRESPフレームのプロトコル違反を表す
// この種のエラーは接続に対して致命的で、再同期は試みない
type ProtocolError struct {
	msg string
	err error
}

func (e *ProtocolError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("resp: protocol error: %s: %v", e.msg, e.err)
	}
	return "resp: protocol error: " + e.msg
}

func (e *ProtocolError) Unwrap() error { return e.err }

func protocolErr(msg string) error {
	return &ProtocolError{msg: msg}
}

// Decoder はバイトストリームからRESP応答を1つずつ読み取る
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder は新しいDecoderを作成する
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br}
}

// Decode はストリームから完全な応答を1つ読み取って返す
//
// 型タグ1バイトを読み、タグごとに分岐する:
//
//	+ 単純文字列  - エラー  : 整数  $ バルク文字列  * 配列（再帰）
//
// 不明なタグ、数値でない長さ、不正な行末、タグより前のストリーム終端は
// すべて*ProtocolErrorになる。エラー応答（-）はKindErrorのValueとして
// 正常にデコードされる点に注意。
func (d *Decoder) Decode() (Value, error) {
	tag, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return Value{}, &ProtocolError{msg: "stream closed before reply", err: err}
		}
		return Value{}, err
	}

	switch tag {
	case '+':
		line, err := d.readLine()
		if err != nil {
			return Value{}, err
		}
		return SimpleString(line), nil
	case '-':
		line, err := d.readLine()
		if err != nil {
			return Value{}, err
		}
		return ErrorValue(line), nil
	case ':':
		return d.decodeInteger()
	case '$':
		return d.decodeBulk()
	case '*':
		return d.decodeArray()
	default:
		return Value{}, protocolErr(fmt.Sprintf("unknown type tag %q", tag))
	}
}

func (d *Decoder) decodeInteger() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return Value{}, protocolErr(fmt.Sprintf("invalid integer %q", line))
	}
	return Integer(n), nil
}

func (d *Decoder) decodeBulk() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	length, err := strconv.Atoi(line)
	if err != nil {
		return Value{}, protocolErr(fmt.Sprintf("invalid bulk length %q", line))
	}

	// $-1 はnullバルク文字列、ペイロードは読まない
	if length == -1 {
		return NullBulk(), nil
	}
	if length < 0 {
		return Value{}, protocolErr(fmt.Sprintf("negative bulk length %d", length))
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return Value{}, &ProtocolError{msg: "short bulk payload", err: err}
	}
	if err := d.expectCRLF(); err != nil {
		return Value{}, err
	}
	return Bulk(buf), nil
}

func (d *Decoder) decodeArray() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	count, err := strconv.Atoi(line)
	if err != nil {
		return Value{}, protocolErr(fmt.Sprintf("invalid array count %q", line))
	}

	// 負のカウントはnull配列（このサーバーは返さないが扱えるようにする）
	if count < 0 {
		return NullArray(), nil
	}

	elems := make([]Value, count)
	for i := 0; i < count; i++ {
		elem, err := d.Decode()
		if err != nil {
			return Value{}, err
		}
		elems[i] = elem
	}
	return Value{Kind: KindArray, Elems: elems}, nil
}

// readLine は\r\nで終わる1行を読み、行末を除いて返す
func (d *Decoder) readLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil {
		return "", &ProtocolError{msg: "unterminated line", err: err}
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", protocolErr("line not terminated by CRLF")
	}
	return line[:len(line)-2], nil
}

func (d *Decoder) expectCRLF() error {
	if b, err := d.r.ReadByte(); err != nil || b != '\r' {
		return protocolErr("bulk payload not followed by CR")
	}
	if b, err := d.r.ReadByte(); err != nil || b != '\n' {
		return protocolErr("bulk payload not followed by LF")
	}
	return nil
}
