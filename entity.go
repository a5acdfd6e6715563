/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"reflect"
	"sync/atomic"

	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/registry"
)

// Entity is implemented by pointers to structs that embed Base.
type Entity interface {
	// ErrorKind returns the kind attribute access failures are reported under.
	ErrorKind() *errors.Kind
	// SetErrorKind overrides the kind for this instance only.
	SetErrorKind(kind *errors.Kind)

	entityBase() *Base
}

// Pointer constrains a type parameter to *T where *T is an Entity.
type Pointer[T any] interface {
	*T
	Entity
}

// Initializer is implemented by entities that need setup before their
// attributes are loaded, such as choosing a default error kind.
type Initializer interface {
	InitEntity()
}

// Base carries the per-instance state every entity needs. Embed it by value.
// Fields of type Base are never attributes.
type Base struct {
	errorKind *errors.Kind
}

func init() {
	registry.Reserve(reflect.TypeOf(Base{}))
}

// ErrorKind returns the instance's kind, or the process-wide default.
func (b *Base) ErrorKind() *errors.Kind {
	if b.errorKind != nil {
		return b.errorKind
	}
	return DefaultErrorKind()
}

// SetErrorKind sets the instance's kind. nil restores the default.
func (b *Base) SetErrorKind(kind *errors.Kind) {
	b.errorKind = kind
}

func (b *Base) entityBase() *Base {
	return b
}

var defaultKind atomic.Pointer[errors.Kind]

// DefaultErrorKind returns the kind used by entities without an override.
func DefaultErrorKind() *errors.Kind {
	if k := defaultKind.Load(); k != nil {
		return k
	}
	return errors.ErrEntity
}

// SetDefaultErrorKind replaces the process-wide default kind. nil restores errors.ErrEntity.
func SetDefaultErrorKind(kind *errors.Kind) {
	defaultKind.Store(kind)
}

// New allocates a T, runs its InitEntity hook and loads data into it.
// On failure the error is returned with a nil entity.
func New[T any, PT Pointer[T]](data map[string]any) (PT, error) {
	e := PT(new(T))
	Init(e)
	if err := SetFromMap(e, data); err != nil {
		return nil, err
	}
	return e, nil
}

// FromMap is New under the name used by callers converting stored data.
func FromMap[T any, PT Pointer[T]](data map[string]any) (PT, error) {
	return New[T, PT](data)
}

// Init runs e's InitEntity hook, if it has one.
func Init(e Entity) {
	if i, ok := e.(Initializer); ok {
		i.InitEntity()
	}
}

// TypeName returns the Go name of e's concrete type, e.g. "models.User".
func TypeName(e Entity) string {
	t := reflect.TypeOf(e)
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func checkEntity(e Entity) error {
	if isNil(e) {
		return errors.NewValidationError("", "nil entity")
	}
	return nil
}
