/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"maps"
	"reflect"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/registry"
)

func lookup(e Entity) *registry.Info {
	return registry.Lookup(reflect.TypeOf(e))
}

// AttributeNames returns e's attribute names in registry order.
func AttributeNames(e Entity) []string {
	return lookup(e).Names()
}

// AttributeNamesOf returns the attribute names of T.
func AttributeNamesOf[T any]() []string {
	return registry.AttributeNames(reflect.TypeOf((*T)(nil)).Elem())
}

// HasAttribute reports whether e's type has an attribute called name.
func HasAttribute(e Entity, name string) bool {
	return lookup(e).Has(name)
}

// HasAttributeOf reports whether T has an attribute called name.
func HasAttributeOf[T any](name string) bool {
	return registry.HasAttribute(reflect.TypeOf((*T)(nil)).Elem(), name)
}

// CheckAttributes returns an UnknownAttribute error for the first of names
// that e's type does not have. op is "get" or "set".
func CheckAttributes(e Entity, op string, names ...string) error {
	info := lookup(e)
	for _, name := range names {
		if !info.Has(name) {
			return errors.NewUnknownAttributeError(e.ErrorKind(), op, name, TypeName(e))
		}
	}
	return nil
}

// GetAttribute returns the value of the named attribute as returned by its getter.
func GetAttribute(e Entity, name string) (any, error) {
	if err := checkEntity(e); err != nil {
		return nil, err
	}
	a, ok := lookup(e).Accessor(name)
	if !ok {
		return nil, errors.NewUnknownAttributeError(e.ErrorKind(), "get", name, TypeName(e))
	}
	return get(e, a)
}

func get(e Entity, a *registry.Accessor) (any, error) {
	if !a.HasGetter() {
		return nil, errors.NewMissingGetterError(e.ErrorKind(), a.Name, TypeName(e), a.GetterCandidates)
	}
	v, err := a.Get(reflect.ValueOf(e))
	if err != nil {
		return nil, errors.Wrapf(err, "get attribute %q", a.Name)
	}
	return v, nil
}

// SetAttribute passes value to the named attribute's setter. Values not
// assignable to the setter's parameter are decoded into it first.
func SetAttribute(e Entity, name string, value any) error {
	if err := checkEntity(e); err != nil {
		return err
	}
	a, ok := lookup(e).Accessor(name)
	if !ok {
		return errors.NewUnknownAttributeError(e.ErrorKind(), "set", name, TypeName(e))
	}
	if !a.HasSetter() {
		return errors.NewMissingSetterError(e.ErrorKind(), name, TypeName(e), a.SetterCandidates)
	}

	arg, err := coerce(value, a.SetterParam())
	if err != nil {
		return errors.WithKind(e.ErrorKind(), errors.NewValidationError(name, err.Error()))
	}
	if err := a.Set(reflect.ValueOf(e), arg); err != nil {
		return errors.Wrapf(err, "set attribute %q", name)
	}
	return nil
}

// SetFromMap sets every key of data as an attribute, in ascending key order.
// It stops at the first failure; attributes set before it keep their new values.
func SetFromMap(e Entity, data map[string]any) error {
	if err := checkEntity(e); err != nil {
		return err
	}
	for _, key := range slices.Sorted(maps.Keys(data)) {
		if err := SetAttribute(e, key, data[key]); err != nil {
			return err
		}
	}
	return nil
}

// SetFromOrderedMap is SetFromMap applying the keys of data in insertion
// order, e.g. the order of a decoded document.
func SetFromOrderedMap(e Entity, data *orderedmap.OrderedMap[string, any]) error {
	if err := checkEntity(e); err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	for pair := data.Oldest(); pair != nil; pair = pair.Next() {
		if err := SetAttribute(e, pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}
