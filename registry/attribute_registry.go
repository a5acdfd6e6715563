/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/suparena/entity/logger"
)

// TagName is the struct tag consulted during field discovery. `entity:"-"` excludes a field.
const TagName = "entity"

// AttributeNamer is implemented by types that list their attributes explicitly
// instead of relying on field discovery, e.g. types keeping all values in one map.
// The method is called on a zero value.
type AttributeNamer interface {
	AttributeNames() []string
}

var namerType = reflect.TypeOf((*AttributeNamer)(nil)).Elem()

// Info is the cached metadata of one entity type.
type Info struct {
	Type      reflect.Type
	names     []string
	index     map[string]struct{}
	accessors map[string]*Accessor
}

// Names returns the attribute names in registry order.
func (i *Info) Names() []string {
	return slices.Clone(i.names)
}

// Len returns the number of attributes.
func (i *Info) Len() int {
	return len(i.names)
}

// Has reports whether name is an attribute of the type. Matching is exact.
func (i *Info) Has(name string) bool {
	_, ok := i.index[name]
	return ok
}

// Accessor returns the accessor entry for a registered attribute.
func (i *Info) Accessor(name string) (*Accessor, bool) {
	a, ok := i.accessors[name]
	return a, ok
}

var (
	cache sync.Map // map[reflect.Type]*Info

	mu       sync.RWMutex
	explicit = make(map[reflect.Type][]string)
	reserved = make(map[reflect.Type]struct{})

	// generation is bumped under mu whenever registrations change. Entries
	// built under an older generation are returned but never cached.
	generation atomic.Uint64
)

// Lookup returns the metadata for t, building and caching it on first use.
// Pointer types are dereferenced; non-struct types yield an empty Info.
func Lookup(t reflect.Type) *Info {
	t = indirect(t)
	if t == nil {
		return &Info{}
	}
	if info, ok := cache.Load(t); ok {
		return info.(*Info)
	}

	gen := generation.Load()
	info := build(t)

	mu.RLock()
	if generation.Load() != gen {
		mu.RUnlock()
		return info
	}
	actual, loaded := cache.LoadOrStore(t, info)
	mu.RUnlock()

	if !loaded {
		logger.Debugw("attribute registry populated",
			logger.FieldType, t.String(),
			logger.FieldCount, len(info.names))
	}
	return actual.(*Info)
}

// AttributeNames returns the ordered attribute names of t.
func AttributeNames(t reflect.Type) []string {
	return Lookup(t).Names()
}

// HasAttribute reports whether t has an attribute called name.
func HasAttribute(t reflect.Type, name string) bool {
	return Lookup(t).Has(name)
}

// RegisterAttributes installs an explicit attribute list for t, taking
// precedence over any AttributeNames method and over field discovery.
// Cached entries are dropped because descendants may include t's list.
func RegisterAttributes(t reflect.Type, names ...string) {
	t = indirect(t)
	if t == nil {
		panic("attribute registry: cannot register attributes for nil type")
	}

	mu.Lock()
	defer mu.Unlock()
	explicit[t] = dedupe(names)
	invalidate()
}

// Register is RegisterAttributes for the type parameter T.
func Register[T any](names ...string) {
	RegisterAttributes(reflect.TypeOf((*T)(nil)).Elem(), names...)
}

// Reserve marks a field type as bookkeeping: fields of this type are never attributes
// and, when embedded, are not walked as ancestors.
func Reserve(t reflect.Type) {
	mu.Lock()
	defer mu.Unlock()
	reserved[indirect(t)] = struct{}{}
	invalidate()
}

// Reset drops all cached entries. Explicit registrations and reserved types are kept.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	invalidate()
}

// invalidate must be called with mu held.
func invalidate() {
	generation.Add(1)
	cache.Clear()
}

// Types returns the types currently cached, in unspecified order.
func Types() []reflect.Type {
	var types []reflect.Type
	cache.Range(func(key, _ any) bool {
		types = append(types, key.(reflect.Type))
		return true
	})
	return types
}

func build(t reflect.Type) *Info {
	names := resolveNames(t, map[reflect.Type]bool{t: true})

	info := &Info{
		Type:      t,
		names:     names,
		index:     make(map[string]struct{}, len(names)),
		accessors: make(map[string]*Accessor, len(names)),
	}
	ptr := reflect.PointerTo(t)
	for _, name := range names {
		info.index[name] = struct{}{}
		info.accessors[name] = resolveAccessor(ptr, name)
	}
	return info
}

func resolveNames(t reflect.Type, visiting map[reflect.Type]bool) []string {
	if t.Kind() != reflect.Struct {
		return nil
	}

	mu.RLock()
	names, ok := explicit[t]
	mu.RUnlock()
	if ok {
		return slices.Clone(names)
	}

	if names, ok := namerOverride(t); ok {
		return dedupe(names)
	}

	return structuralNames(t, visiting)
}

func namerOverride(t reflect.Type) (names []string, ok bool) {
	if !reflect.PointerTo(t).Implements(namerType) {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warnw("AttributeNames override panicked on zero value, using field discovery",
				logger.FieldType, t.String(),
				logger.FieldError, fmt.Sprint(r))
			names, ok = nil, false
		}
	}()
	return reflect.New(t).Interface().(AttributeNamer).AttributeNames(), true
}

// structuralNames lists inherited attributes (embedded structs, in declaration
// order) followed by the fields declared directly on t.
func structuralNames(t reflect.Type, visiting map[reflect.Type]bool) []string {
	var inherited, own []string

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if isReserved(f.Type) {
			continue
		}

		if f.Anonymous {
			if et := indirect(f.Type); et != nil && et.Kind() == reflect.Struct {
				if visiting[et] {
					continue
				}
				visiting[et] = true
				inherited = append(inherited, resolveNames(et, visiting)...)
				delete(visiting, et)
				continue
			}
		}

		if f.Name == "_" || f.Tag.Get(TagName) == "-" {
			continue
		}
		own = append(own, f.Name)
	}

	return dedupe(append(inherited, own...))
}

func isReserved(t reflect.Type) bool {
	t = indirect(t)
	mu.RLock()
	defer mu.RUnlock()
	_, ok := reserved[t]
	return ok
}

func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
