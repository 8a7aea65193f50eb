// Package badger persists audit records in BadgerDB. Records are keyed by
// timestamp, so Recent and Between map to single reverse or forward key
// scans without a secondary index.
package badger
