// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Feed connection state, frame rates, and decode failures
//   - Reconnect attempts
//   - Tracked satellite count
//   - View (browser) client count and HTTP request rates
package metrics
