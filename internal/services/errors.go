package services

import "errors"

// Reconciliation service errors
var (
	ErrNoFiles         = errors.New("no files provided")
	ErrUnknownFileRole = errors.New("file name does not identify an input")
	ErrDuplicateRole   = errors.New("several files for the same input")
	ErrInputsInvalid   = errors.New("uploaded files failed validation")
	ErrNoRequirement   = errors.New("requirement has no downloadable output")
)
