// Package client provides the `pond` command-line client.
//
// The CLI speaks Pond's own TCP wire protocol (internal/protocol) directly
// -- there's no HTTP or gRPC layer to go through. It is primarily intended
// for developers and operators tailing or backfilling a running server.
//
// Usage
//
//	pond query 127.0.0.1:5480 --site example.com --follow
//	pond query 127.0.0.1:5480 --status-class 5 --since 2026-08-01T00:00:00Z
//	pond inject 127.0.0.1:5480 < access.log
//
// Notes
//
//   - query prints one JSON object per matching record, ending when the
//     server sends END unless --follow keeps the connection open for new
//     matches.
//   - inject reads newline-delimited raw datagrams from stdin and sends
//     one INJECT_LOG_RECORD frame per line.
package client
