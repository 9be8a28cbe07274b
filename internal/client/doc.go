// Package client provides a single-session RESP client connection.
//
// A Conn owns one TCP socket and speaks strict request/reply: exactly one
// command may be in flight at a time, and every command either receives
// exactly one reply or moves the connection into a failed state. There is
// no pipelining and no silent reconnection; connect-time retry is the only
// resilience behavior.
//
// # Connecting
//
//	conn, err := client.Dial("localhost:6379", client.DefaultRetryPolicy())
//	if err != nil {
//	    // reportable outcome, not fatal to the caller
//	}
//	defer conn.Close()
//
// # Executing commands
//
//	v, err := conn.Execute(resp.NewCommand("PING"))
//
// Errors split into three categories:
//
//   - *CommandError: the server answered with an error reply. The operation
//     failed but the connection stays usable.
//   - *TimeoutError: no full reply arrived within the command timeout. The
//     connection is marked failed; a timed-out read cannot be resynchronized
//     without discarding unread bytes, which this client does not attempt.
//   - transport or protocol errors (including *resp.ProtocolError): the
//     connection is marked failed.
//
// Close is idempotent and releases the socket on every path.
package client
