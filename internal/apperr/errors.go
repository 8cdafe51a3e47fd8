package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrIntegrity marks a fatal consistency violation in derived data;
	// continuing past one would silently corrupt the dataset.
	ErrIntegrity = errors.New("integrity violation")
)
