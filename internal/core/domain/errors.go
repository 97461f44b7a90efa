package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or storage driver.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding provider could not
	// produce a vector. Retrieval recovers from it by escalating to lexical
	// strategies; it is never surfaced to retrieval callers.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStorageUnavailable indicates the knowledge store could not be read.
	// This is fatal for a retrieval pass and is always propagated.
	ErrStorageUnavailable = errors.New("knowledge store unavailable")

	// ErrMalformedVector indicates a stored embedding could not be decoded
	// or has the wrong dimension. The affected record is skipped.
	ErrMalformedVector = errors.New("malformed vector")

	// ErrDimensionMismatch indicates vectors of different length were mixed.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
