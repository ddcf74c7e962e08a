package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidInput marks structurally invalid input; callers should report it
// rather than treat it as a low score.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError lists the fields that failed validation and the rule each broke.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+e.Fields[name])
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid builds a single-field ValidationError.
func Invalid(entity, field, rule string) error {
	return &ValidationError{Entity: entity, Fields: map[string]string{field: rule}}
}
