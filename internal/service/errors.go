package service

import "errors"

var (
	// ErrNotFound covers lookups where the record does not exist or belongs
	// to another user; callers must not be able to tell those apart.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyCompleted is returned for a submit against an attempt whose
	// completed_at is already set, outside the duplicate-delivery grace.
	ErrAlreadyCompleted = errors.New("attempt already completed")

	// ErrMaxAttempts is returned when the per-paper attempt quota is used up.
	ErrMaxAttempts = errors.New("maximum attempts reached for this paper")
)
