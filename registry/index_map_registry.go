/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"maps"
	"reflect"
	"sync"
)

// Index maps: key attribute name (PK, SK, GSI1PK, ...) to a template whose
// {macros} name entity attributes, e.g. "USER#{email}".
var (
	indexMapRegistry = make(map[reflect.Type]map[string]string)
	indexMu          sync.RWMutex
)

// RegisterIndexMap associates the entity type T with a DynamoDB index map.
func RegisterIndexMap[T any](idxMap map[string]string) {
	RegisterIndexMapFor(reflect.TypeOf((*T)(nil)).Elem(), idxMap)
}

// RegisterIndexMapFor is RegisterIndexMap for a reflect.Type.
func RegisterIndexMapFor(t reflect.Type, idxMap map[string]string) {
	indexMu.Lock()
	defer indexMu.Unlock()
	indexMapRegistry[indirect(t)] = maps.Clone(idxMap)
}

// GetIndexMap retrieves the index map for type T, if any.
func GetIndexMap[T any]() (map[string]string, bool) {
	return IndexMapFor(reflect.TypeOf((*T)(nil)).Elem())
}

// IndexMapFor retrieves the index map registered for t (pointers are dereferenced).
func IndexMapFor(t reflect.Type) (map[string]string, bool) {
	indexMu.RLock()
	defer indexMu.RUnlock()
	m, ok := indexMapRegistry[indirect(t)]
	return maps.Clone(m), ok
}
