/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Factory returns a new, empty entity (a pointer to the concrete struct).
type Factory func() any

type typeEntry struct {
	factory Factory
	typ     reflect.Type
}

var (
	typesMu    sync.RWMutex
	typesByKey = make(map[string]typeEntry)
	keysByType = make(map[reflect.Type]string)
)

// RegisterType registers a factory under a type name.
// If a type is already registered for the name, it panics to prevent accidental overrides.
func RegisterType(name string, fn Factory) {
	typesMu.Lock()
	defer typesMu.Unlock()

	if _, exists := typesByKey[name]; exists {
		panic(fmt.Sprintf("type registry: type %q already registered", name))
	}
	t := indirect(reflect.TypeOf(fn()))
	typesByKey[name] = typeEntry{factory: fn, typ: t}
	keysByType[t] = name
}

// GetFactory returns the registered factory for the given type name.
func GetFactory(name string) (Factory, error) {
	typesMu.RLock()
	defer typesMu.RUnlock()

	entry, ok := typesByKey[name]
	if !ok {
		return nil, fmt.Errorf("type registry: no type registered for %q", name)
	}
	return entry.factory, nil
}

// NewByName returns a new instance of the type registered under name.
func NewByName(name string) (any, error) {
	fn, err := GetFactory(name)
	if err != nil {
		return nil, err
	}
	return fn(), nil
}

// TypeName returns the name t was registered under.
func TypeName(t reflect.Type) (string, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()

	name, ok := keysByType[indirect(t)]
	return name, ok
}

// TypeNames returns all registered type names, sorted.
func TypeNames() []string {
	typesMu.RLock()
	defer typesMu.RUnlock()

	names := make([]string, 0, len(typesByKey))
	for name := range typesByKey {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
