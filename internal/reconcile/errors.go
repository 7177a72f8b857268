package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks
var (
	// ErrSchema indicates a required column is missing from an input table
	ErrSchema = errors.New("schema error")

	// ErrMultiplicity indicates the rules table has several rows for one exchange
	ErrMultiplicity = errors.New("multiplicity error")

	// ErrMissingCompositeKey indicates the analyzer was given unkeyed tables
	ErrMissingCompositeKey = errors.New("composite key column missing")
)

// SchemaError reports a missing column together with what the table does have.
type SchemaError struct {
	Table     string
	Column    string
	Available []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s column not found (available: %s)",
		e.Table, e.Column, strings.Join(e.Available, ", "))
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// MultiplicityError reports an exchange with more than one rule row.
type MultiplicityError struct {
	Table    string
	Exchange string
	Rows     int
}

// Error implements the error interface
func (e *MultiplicityError) Error() string {
	return fmt.Sprintf("%s: exchange %q has %d rule rows, expected at most one",
		e.Table, e.Exchange, e.Rows)
}

// Is implements errors.Is support
func (e *MultiplicityError) Is(target error) bool {
	return target == ErrMultiplicity
}

func missingColumn(table string, column string, available []string) *SchemaError {
	cols := make([]string, len(available))
	copy(cols, available)
	return &SchemaError{Table: table, Column: column, Available: cols}
}
