// Package feed implements the Connection Manager for the upstream
// satellite telemetry feed.
//
// The manager:
//   - Maintains at most one WebSocket connection to the feed
//   - Retries a dropped or failed connection after a fixed delay,
//     indefinitely (no backoff, no retry cap)
//   - Classifies incoming frames and applies position updates to the
//     Position Store
//   - Surfaces connection state and message counters to the view layer
package feed
