// Package web serves the live view: an embedded single-page UI, a JSON
// API over the Position Store, a WebSocket relay that pushes updates to
// connected browsers, and a health endpoint.
//
// The view layer only reads store snapshots and consumes change
// notifications; it never writes telemetry state.
package web
