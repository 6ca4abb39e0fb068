// Package store implements the in-memory Position Store: the latest
// known position per satellite, keyed by NORAD id.
//
// The store holds at most one record per id; every position update fully
// replaces the prior record. Records live until the process exits.
package store
