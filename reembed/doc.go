// Package reembed regenerates the embeddings of every stored CV chunk,
// typically after switching to a new embedding model.
//
// Chunks are processed in batches. Each batch embedding call is retried with
// exponential backoff, vectors are normalized and checked against the store
// dimensionality, and progress is reported to a writer.
package reembed
