// Package ingestion turns CV source files into stored documents and embedded chunks.
//
// The Pipeline type manages the ingestion workflow for a CV, including:
//   - Skipping sources whose checksum is already stored
//   - Extracting clean text and structured metadata with an ai.CVExtractor
//   - Splitting the text into overlapping chunks and embedding them
//
// Upload batches run their items concurrently on a worker pool. Each item is
// retried with exponential backoff and its outcome is recorded on the item
// and rolled up into the batch status.
package ingestion
