package types

import "errors"

var (
	// ErrEmptyInput is returned when a master file contains no entries at all.
	ErrEmptyInput = errors.New("empty input: no analysis entries to ingest")

	// ErrMalformedEntry marks a single master-file entry that could not be
	// parsed. It is recorded per entry and never aborts a batch.
	ErrMalformedEntry = errors.New("malformed analysis entry")

	// ErrEmbeddingFailure marks a failed embedding call. During ingestion the
	// affected chunk is omitted; during retrieval the query fails.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrUnknownProperty is returned for an unsupported extreme-value
	// property path.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrNotFound is returned when a referenced node does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreConflict is returned when concurrent replace-edges calls on the
	// same node exhaust their retries.
	ErrStoreConflict = errors.New("store conflict")
)
