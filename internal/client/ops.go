package client

import (
	"fmt"

	"resp-bench/internal/resp"
)

// Ping はPINGを送信し、応答テキストを返す
func (c *Conn) Ping() (string, error) {
	v, err := c.Execute(resp.NewCommand("PING"))
	if err != nil {
		return "", err
	}
	return v.Str, nil
}

// Set はキーに値を設定する
// サーバーがOK以外を返した場合はエラーになる
func (c *Conn) Set(key string, value []byte) error {
	v, err := c.Execute(resp.NewCommand("SET", key).AppendBytes(value))
	if err != nil {
		return err
	}
	if v.Str != "OK" {
		return fmt.Errorf("client: SET %s: unexpected reply %q", key, v.Str)
	}
	return nil
}

// Get はキーの値を取得する
// キーが存在しない場合（nullバルク文字列）はok=falseを返す
func (c *Conn) Get(key string) (value []byte, ok bool, err error) {
	v, err := c.Execute(resp.NewCommand("GET", key))
	if err != nil {
		return nil, false, err
	}
	if v.IsNull() {
		return nil, false, nil
	}
	return v.Bytes(), true, nil
}

// Del はキーを削除し、削除されたキーの数を返す
func (c *Conn) Del(keys ...string) (int64, error) {
	args := append([]string{"DEL"}, keys...)
	v, err := c.Execute(resp.NewCommand(args...))
	if err != nil {
		return 0, err
	}
	if v.Kind != resp.KindInteger {
		return 0, fmt.Errorf("client: DEL: expected integer reply, got %s", v.Kind)
	}
	return v.Int, nil
}
