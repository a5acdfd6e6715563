/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Kind identifies the family an attribute access failure is reported under.
// Entities carry a Kind so that different entity families can route failures
// to different handlers with errors.Is(err, kind).
type Kind struct {
	name string
}

// NewKind creates a new error kind.
func NewKind(name string) *Kind {
	return &Kind{name: name}
}

func (k *Kind) Error() string {
	return k.name
}

// Name returns the kind's name.
func (k *Kind) Name() string {
	return k.name
}

// ErrEntity is the kind used by entities that do not configure their own.
var ErrEntity = NewKind("entity")

// Reason tells which attribute access rule was violated.
type Reason int

const (
	// UnknownAttribute means the name is not registered for the entity type.
	UnknownAttribute Reason = iota + 1
	// MissingGetter means no getter method could be resolved for a registered attribute.
	MissingGetter
	// MissingSetter means no setter method could be resolved for a registered attribute.
	MissingSetter
)

func (r Reason) String() string {
	switch r {
	case UnknownAttribute:
		return "UnknownAttribute"
	case MissingGetter:
		return "MissingGetter"
	case MissingSetter:
		return "MissingSetter"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Sentinels matched by AttributeError.Is for each reason.
var (
	ErrUnknownAttribute = crdb.New("unknown attribute")
	ErrMissingGetter    = crdb.New("missing getter")
	ErrMissingSetter    = crdb.New("missing setter")
)

func (r Reason) sentinel() error {
	switch r {
	case UnknownAttribute:
		return ErrUnknownAttribute
	case MissingGetter:
		return ErrMissingGetter
	case MissingSetter:
		return ErrMissingSetter
	}
	return nil
}

// AttributeError is returned by attribute get/set/export operations.
type AttributeError struct {
	Kind       *Kind
	Reason     Reason
	Op         string // "get" or "set"
	Attribute  string
	Type       string
	Candidates []string // accessor method names that were tried
}

func (e *AttributeError) Error() string {
	switch e.Reason {
	case UnknownAttribute:
		return fmt.Sprintf("attempt to %s non-existing attribute %q", e.Op, e.Attribute)
	case MissingGetter:
		return fmt.Sprintf("can't find getter method %s for attribute %q in %s",
			joinCandidates(e.Candidates), e.Attribute, e.Type)
	case MissingSetter:
		return fmt.Sprintf("can't find setter method %s for attribute %q in %s",
			joinCandidates(e.Candidates), e.Attribute, e.Type)
	default:
		return fmt.Sprintf("attribute %q of %s: %s", e.Attribute, e.Type, e.Reason)
	}
}

// Is matches the error's kind and the sentinel of its reason.
func (e *AttributeError) Is(target error) bool {
	if k, ok := target.(*Kind); ok {
		return e.kind() == k
	}
	return target != nil && target == e.Reason.sentinel()
}

func (e *AttributeError) kind() *Kind {
	if e.Kind == nil {
		return ErrEntity
	}
	return e.Kind
}

// "A()", "A() or B()", "A(), B() or C()"
func joinCandidates(names []string) string {
	calls := make([]string, len(names))
	for i, n := range names {
		calls[i] = n + "()"
	}
	if len(calls) <= 1 {
		return strings.Join(calls, "")
	}
	return strings.Join(calls[:len(calls)-1], ", ") + " or " + calls[len(calls)-1]
}

// NewUnknownAttributeError creates an UnknownAttribute error for op ("get" or "set").
func NewUnknownAttributeError(kind *Kind, op, attribute, typeName string) error {
	return &AttributeError{Kind: kind, Reason: UnknownAttribute, Op: op, Attribute: attribute, Type: typeName}
}

// NewMissingGetterError creates a MissingGetter error listing the getter candidates.
func NewMissingGetterError(kind *Kind, attribute, typeName string, candidates []string) error {
	return &AttributeError{Kind: kind, Reason: MissingGetter, Op: "get", Attribute: attribute, Type: typeName, Candidates: candidates}
}

// NewMissingSetterError creates a MissingSetter error naming the setter candidate.
func NewMissingSetterError(kind *Kind, attribute, typeName string, candidates []string) error {
	return &AttributeError{Kind: kind, Reason: MissingSetter, Op: "set", Attribute: attribute, Type: typeName, Candidates: candidates}
}

// IsUnknownAttribute checks if an error is an UnknownAttribute error
func IsUnknownAttribute(err error) bool {
	return crdb.Is(err, ErrUnknownAttribute)
}

// IsMissingGetter checks if an error is a MissingGetter error
func IsMissingGetter(err error) bool {
	return crdb.Is(err, ErrMissingGetter)
}

// IsMissingSetter checks if an error is a MissingSetter error
func IsMissingSetter(err error) bool {
	return crdb.Is(err, ErrMissingSetter)
}

// WithKind reports err under kind, so errors.Is(err, kind) holds while
// the original error stays reachable through errors.As and Unwrap.
func WithKind(kind *Kind, err error) error {
	if err == nil {
		return nil
	}
	if kind == nil {
		kind = ErrEntity
	}
	return &kindError{kind: kind, cause: err}
}

type kindError struct {
	kind  *Kind
	cause error
}

func (e *kindError) Error() string { return e.cause.Error() }

func (e *kindError) Unwrap() error { return e.cause }

func (e *kindError) Is(target error) bool {
	k, ok := target.(*Kind)
	return ok && e.kind == k
}

// KindOf returns the kind the first kinded error in err's chain reports
// under, or nil.
func KindOf(err error) *Kind {
	for c := err; c != nil; c = crdb.UnwrapOnce(c) {
		switch t := c.(type) {
		case *AttributeError:
			return t.kind()
		case *kindError:
			return t.kind
		}
	}
	return nil
}
