package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain faults.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: entity with the same key already exists (uniqueness violation)
// - ErrMissingKey: referenced key does not exist (update of unknown entity, dangling reference)
// - ErrConstraint: any other integrity constraint rejected the write
// - ErrDataFault: stored data could not be encoded or decoded
// - ErrUnavailable: service or resource temporarily unavailable
// - ErrTimeout: operation did not complete within its time budget
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrMissingKey   = errors.New("missing key")
	ErrConstraint   = errors.New("constraint violation")
	ErrDataFault    = errors.New("data fault")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrTimeout      = errors.New("timeout")
)
