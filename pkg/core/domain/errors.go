package domain

import "errors"

var (
	// ErrNoFormatPolicy is returned when a partition year has no date format.
	ErrNoFormatPolicy = errors.New("no date format policy for partition year")

	// ErrNilTable is returned when validation is asked to inspect no table at all.
	ErrNilTable = errors.New("nil table")

	// ErrUnknownCheckType is returned by the check factory for unregistered types.
	ErrUnknownCheckType = errors.New("unknown check type")
)
