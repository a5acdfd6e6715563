/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ValueHandler converts a non-entity struct value (or non-nil pointer to one)
// met during export, e.g. a third-party type into a map. Values it does not
// care about must be returned unchanged.
type ValueHandler func(v any) (any, error)

// ValueExporter is implemented by entities that convert their own non-entity
// values during export. It is used when no WithValueHandler option is given,
// and is passed down to the entities nested in e.
type ValueExporter interface {
	ExportValue(v any) (any, error)
}

// ExportOption configures ToMap and ToOrderedMap.
type ExportOption func(*exportConfig)

// WithValueHandler sets the handler applied to non-entity struct values at
// every nesting level. It takes precedence over ValueExporter.
func WithValueHandler(h ValueHandler) ExportOption {
	return func(c *exportConfig) {
		c.handler = h
	}
}

type exportConfig struct {
	handler ValueHandler
	ordered bool
}

func newExportConfig(opts []ExportOption) exportConfig {
	var c exportConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ToMap exports e as a plain map keyed by attribute name. Nested entities,
// held by pointer or by value, are exported recursively, as are entity
// elements of slices, arrays and string-keyed maps one level deep. Containers
// without entities or handled values are returned as is.
func ToMap(e Entity, opts ...ExportOption) (map[string]any, error) {
	c := newExportConfig(opts)
	c.ordered = false
	return c.plain(e)
}

// ToOrderedMap is ToMap keeping registry order, at every nesting level.
func ToOrderedMap(e Entity, opts ...ExportOption) (*orderedmap.OrderedMap[string, any], error) {
	c := newExportConfig(opts)
	c.ordered = true
	return c.orderedMap(e)
}

// forEntity picks up e's own handler unless one is already in effect.
func (c exportConfig) forEntity(e Entity) exportConfig {
	if c.handler == nil {
		if ve, ok := e.(ValueExporter); ok {
			c.handler = ve.ExportValue
		}
	}
	return c
}

// each calls fn with every attribute of e, exported, in registry order.
func (c exportConfig) each(e Entity, fn func(name string, v any)) error {
	if err := checkEntity(e); err != nil {
		return err
	}
	c = c.forEntity(e)
	info := lookup(e)
	for _, name := range info.Names() {
		a, _ := info.Accessor(name)
		v, err := get(e, a)
		if err != nil {
			return err
		}
		if v, err = c.value(v); err != nil {
			return err
		}
		fn(name, v)
	}
	return nil
}

func (c exportConfig) plain(e Entity) (map[string]any, error) {
	out := make(map[string]any, lookup(e).Len())
	if err := c.each(e, func(name string, v any) { out[name] = v }); err != nil {
		return nil, err
	}
	return out, nil
}

func (c exportConfig) orderedMap(e Entity) (*orderedmap.OrderedMap[string, any], error) {
	out := orderedmap.New[string, any]()
	if err := c.each(e, func(name string, v any) { out.Set(name, v) }); err != nil {
		return nil, err
	}
	return out, nil
}

func (c exportConfig) entity(e Entity) (any, error) {
	if isNil(e) {
		return nil, nil
	}
	if c.ordered {
		return c.orderedMap(e)
	}
	return c.plain(e)
}

func (c exportConfig) value(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if e, ok := asEntity(v); ok {
		return c.entity(e)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 || !c.sliceNeedsCopy(rv) {
			return v, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			el, err := c.element(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = el
		}
		return out, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || !c.mapNeedsCopy(rv) {
			return v, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			el, err := c.element(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = el
		}
		return out, nil
	}
	return c.object(v)
}

// Container elements are exported only if they are entities themselves;
// other struct elements go to the handler.
func (c exportConfig) element(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if e, ok := asEntity(v); ok {
		return c.entity(e)
	}
	return c.object(v)
}

func (c exportConfig) object(v any) (any, error) {
	if c.handler == nil || !isObject(v) {
		return v, nil
	}
	return c.handler(v)
}

func (c exportConfig) needsCopy(v reflect.Value) bool {
	if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
		return false
	}
	el := v.Interface()
	if _, ok := asEntity(el); ok {
		return true
	}
	return c.handler != nil && isObject(el)
}

func (c exportConfig) sliceNeedsCopy(rv reflect.Value) bool {
	for i := 0; i < rv.Len(); i++ {
		if c.needsCopy(rv.Index(i)) {
			return true
		}
	}
	return false
}

func (c exportConfig) mapNeedsCopy(rv reflect.Value) bool {
	iter := rv.MapRange()
	for iter.Next() {
		if c.needsCopy(iter.Value()) {
			return true
		}
	}
	return false
}

// asEntity returns v as an Entity. A struct value whose pointer is an entity
// is exported through a pointer to a copy.
func asEntity(v any) (Entity, bool) {
	if e, ok := v.(Entity); ok {
		return e, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Struct || !reflect.PointerTo(rv.Type()).Implements(entityType) {
		return nil, false
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Interface().(Entity), true
}

func isObject(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Struct:
		return true
	case reflect.Pointer:
		return !rv.IsNil() && rv.Elem().Kind() == reflect.Struct
	}
	return false
}
