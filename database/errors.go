package database

import "errors"

var (
	// ErrNotFound is returned by repositories when no document matches an id.
	ErrNotFound = errors.New("document not found")
	// ErrConditionNotMet is returned when a conditional update matched nothing.
	// Callers re-read the document to learn which condition failed.
	ErrConditionNotMet = errors.New("update condition not met")
	// ErrDuplicate is returned when an insert collides with a unique key.
	ErrDuplicate = errors.New("duplicate key")
)
