package leak

import "errors"

var (
	// ErrEmptyResourceType is returned when a detector is created without a
	// resource-type label.
	ErrEmptyResourceType = errors.New("resource type must not be empty")

	// ErrInvalidSamplingInterval is returned for sampling intervals below 1.
	ErrInvalidSamplingInterval = errors.New("sampling interval must be at least 1")

	// ErrInvalidLevel is returned when an out-of-range level is set.
	ErrInvalidLevel = errors.New("invalid leak detection level")

	// ErrNilOwner is returned when exclusions are registered for a nil owner.
	ErrNilOwner = errors.New("exclusion owner must not be nil")
)
