// Package engine runs the HTTP and HTTPS listeners that serve the Redfish
// handler.
//
// The engine package provides:
//   - Server: plain HTTP and optional HTTPS listeners sharing one handler
//   - Middleware: panic recovery, request ids, and access logging
//
// Listeners are bound synchronously in Start, so an address that is already
// in use is reported to the caller instead of being logged from a goroutine.
// Stop drains in-flight requests for up to ShutdownTimeout.
package engine
