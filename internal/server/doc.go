// Package server provides an in-process mini-redis server.
//
// The server speaks RESP2 and implements the command set the benchmark
// harness exercises: PING, ECHO, SET, GET, DEL. It exists as a development
// target for the `serve` command and as the test bed for the client, checks,
// bench and harness packages; it is not a production server.
//
// # Basic Usage
//
//	srv := server.New(server.Config{Addr: "127.0.0.1:0"})
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Stop()
//	addr := srv.Addr() // actual listen address
//
// # Fault Injection
//
// Config.Faults makes the server misbehave on purpose, which backs the
// timeout and error-path tests:
//
//   - FaultDelay: sleep Config.Faults.Delay before every reply
//   - FaultStall: read commands but never reply
//   - FaultClose: close the connection upon receiving a command
package server
