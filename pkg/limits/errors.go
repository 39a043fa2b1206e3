package limits

import "errors"

var (
	ErrLimitExceeded          = errors.New("limits.errors.limit_exceeded")
	ErrInvalidResource        = errors.New("limits.errors.invalid_resource")
	ErrFailedToCountResources = errors.New("limits.errors.failed_to_count_resources")

	// Selection errors
	ErrInvalidSelection   = errors.New("limits.errors.invalid_selection")
	ErrSelectionSize      = errors.New("limits.errors.selection_size")
	ErrNotOwned           = errors.New("limits.errors.not_owned")
	ErrDuplicateSelection = errors.New("limits.errors.duplicate_selection")
)
