package route

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("route: validation failed")
	ErrUniqueness = errors.New("route: uniqueness violation")
)

type ValidationKind string

const (
	KindRouteConflict ValidationKind = "route_conflict"
	KindContentType   ValidationKind = "content_type"
	KindMissingKey    ValidationKind = "missing_key"
	KindEnum          ValidationKind = "enum"
)

// ValidationError rejects a record before it reaches storage.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Value string
	Keys  []string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindRouteConflict:
		return fmt.Sprintf("route: %q is reserved", e.Value)
	case KindContentType:
		return fmt.Sprintf("route: request_content_type is required for %s", e.Value)
	case KindMissingKey:
		return fmt.Sprintf("route: %s is missing keys: %s", e.Field, strings.Join(e.Keys, ", "))
	default:
		return fmt.Sprintf("route: invalid %s %q", e.Field, e.Value)
	}
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports a duplicate key or route.
type ConflictError struct {
	Field string
	Value string
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("route: duplicate %s", e.Field)
	}
	return fmt.Sprintf("route: duplicate %s %q", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error { return e.Err }

func (e *ConflictError) Is(target error) bool { return target == ErrUniqueness }
