package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel causes for MissingRequiredSectionError.
var (
	ErrNoViews    = errors.New("no views found")
	ErrNoExplores = errors.New("no explores found, explores are needed to generate Cube views")
	ErrNoCubes    = errors.New("no cubes found")
)

// UnsupportedTypeError is returned when a dimension or measure kind has no mapping.
type UnsupportedTypeError struct {
	Entity string
	Field  string
	Kind   string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("type %q of field %s.%s is not supported", e.Kind, e.Entity, e.Field)
}

// MalformedEdgeError is returned when a join condition does not reference
// exactly two distinct entities, one of them the join target.
type MalformedEdgeError struct {
	Target     string
	Condition  string
	References []string
}

func (e *MalformedEdgeError) Error() string {
	return fmt.Sprintf("join %s: condition %q must reference %s and exactly one other entity, found [%s]",
		e.Target, e.Condition, e.Target, strings.Join(e.References, ", "))
}

// UnreachableNodeError is returned when no join path connects two entities.
type UnreachableNodeError struct {
	From string
	To   string
}

func (e *UnreachableNodeError) Error() string {
	return fmt.Sprintf("entities are not reachable: %s, %s", e.From, e.To)
}

// UnknownParentError is returned when an extends list names a missing entity.
type UnknownParentError struct {
	Child  string
	Parent string
}

func (e *UnknownParentError) Error() string {
	return fmt.Sprintf("%s extends unknown entity %s", e.Child, e.Parent)
}

// MissingRequiredSectionError aborts a run when a whole section of the model is absent.
type MissingRequiredSectionError struct {
	Section string
	Err     error
}

func (e *MissingRequiredSectionError) Error() string {
	return fmt.Sprintf("missing required section %q: %v", e.Section, e.Err)
}

func (e *MissingRequiredSectionError) Unwrap() error {
	return e.Err
}
