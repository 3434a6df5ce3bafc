// Package client talks to the record store on behalf of the editor.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, which speaks the PocketBase records API: batched listing
//     concatenated into one ordered slice, create, partial update and
//     delete. Server records are passed through shape.Record, so meta
//     fields are dropped and malformed values coerced.
//  2. HealthClient, a gRPC client for the standard health service, used by
//     the CLI's online watcher.
//
// # Error Handling
//
// Failures are classified so callers can react without inspecting
// transport details:
//
//   - ErrUnavailable: the store could not be reached (refused, DNS, timeout)
//   - ErrAborted: the caller's context was cancelled
//   - *APIError: the store answered with a non-2xx status
//
// Match the sentinels with errors.Is and APIError with errors.As.
package client
