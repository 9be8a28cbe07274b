// Package resp implements the client side of the RESP2 wire protocol.
//
// The package provides pure encode/decode primitives: a Command is encoded
// as an array-of-bulk-strings request frame, and a Decoder reads exactly one
// reply Value from a byte stream. All five RESP2 reply types are supported
// (simple string, error, integer, bulk string, array); RESP3 types are not.
//
// # Encoding
//
//	cmd := resp.NewCommand("SET", "key")
//	cmd = cmd.AppendBytes(rawValue) // binary-safe
//	frame := cmd.Encode()           // *3\r\n$3\r\nSET\r\n...
//
// Bulk strings are length-prefixed, not delimiter-terminated, so arguments
// may contain any byte sequence including CR, LF and NUL.
//
// # Decoding
//
//	dec := resp.NewDecoder(conn)
//	v, err := dec.Decode()
//
// Decode is purely a function of the byte stream: it performs no retries and
// no buffering policy beyond the bufio.Reader it wraps. Malformed input is
// reported as *ProtocolError; an error reply ("-ERR ...") decodes
// successfully into a Value of kind KindError and is NOT a decode failure.
// Resilience (timeouts, reconnects) is the caller's responsibility.
package resp
