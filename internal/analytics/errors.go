package analytics

import "errors"

// Computation errors are local to a single query. Store errors are fatal for
// the invoking call and are never retried.
var (
	ErrUnknownRelation   = errors.New("unknown relation")
	ErrDanglingReference = errors.New("dangling reference")
	ErrEmptyPartition    = errors.New("empty partition")
	ErrNullBoundary      = errors.New("null temporal boundary")
	ErrUnknownQuery      = errors.New("unknown query")
	ErrInvalidParams     = errors.New("invalid query parameters")

	ErrStoreUnavailable = errors.New("store unavailable")
	ErrSchemaMismatch   = errors.New("schema mismatch")
)
