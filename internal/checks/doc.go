// Package checks runs protocol-level behavioral checks over one connection.
//
// The suite is a fixed, ordered list of checks mirroring the commands a
// mini-redis server must support: PING, SET/GET, DEL, overwrite semantics,
// and a binary-safe round trip. Each check is independent and tolerant of
// its own command failures: a failing check reports false rather than
// aborting the suite, so the full ordered result list is always returned.
//
//	results := checks.Run(conn)
//	for _, r := range results {
//	    fmt.Printf("%-12s %v\n", r.Name, r.Passed)
//	}
package checks
