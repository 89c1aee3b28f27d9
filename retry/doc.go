// Package retry runs fallible operations with bounded exponential backoff.
//
// It is shared by ingestion, where each upload item is retried as a whole,
// and by reembed, where each embedding batch is retried.
package retry
