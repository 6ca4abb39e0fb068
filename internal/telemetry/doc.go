// Package telemetry defines the wire types for the satellite feed and
// the in-memory record shape derived from them.
//
// The feed delivers JSON text frames of two kinds:
//   - connection status: {"type":"connection","message":"...","status":"connected"}
//   - position update:   {"name":"ISS","norad":25544,"lat":..,"lon":..,"alt":..}
//
// Altitude is heterogeneous on the wire: either a bare number of
// kilometers or a string with a trailing "km" suffix.
package telemetry
