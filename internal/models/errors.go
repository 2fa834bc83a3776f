package models

import "errors"

// Custom errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrInvalidOdds          = errors.New("odds must be at least 1.01")
	ErrInvalidCombination   = errors.New("invalid system combination request")
	ErrNarrativeUnavailable = errors.New("narrative generator unavailable")
	ErrMalformedNarrative   = errors.New("malformed narrative payload")
	ErrLockHeld             = errors.New("lock already held")
)
