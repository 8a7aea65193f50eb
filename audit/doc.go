// Package audit defines the audit trail of the answer pipeline: one record
// per run, blocked or successful, with the quality scores and cost of the
// run. The Sink interface abstracts persistence; the badger subpackage
// provides the durable implementation.
package audit
