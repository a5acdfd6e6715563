/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Stores holds named datastores for a single entity type T.
type Stores[T any] struct {
	mu     sync.RWMutex
	stores map[string]DataStore[T]
}

// NewStores creates an empty Stores for type T.
func NewStores[T any]() *Stores[T] {
	return &Stores[T]{
		stores: make(map[string]DataStore[T]),
	}
}

// Register adds a datastore with the given name.
func (s *Stores[T]) Register(name string, ds DataStore[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stores[name]; exists {
		return fmt.Errorf("datastore %q already registered", name)
	}
	s.stores[name] = ds
	return nil
}

// Get retrieves a datastore by name.
func (s *Stores[T]) Get(name string) (DataStore[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, exists := s.stores[name]
	if !exists {
		return nil, fmt.Errorf("datastore %q not found", name)
	}
	return ds, nil
}

// Remove deletes a datastore by name.
func (s *Stores[T]) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stores[name]; !exists {
		return fmt.Errorf("datastore %q not found", name)
	}
	delete(s.stores, name)
	return nil
}

// Names returns the registered datastore names, sorted.
func (s *Stores[T]) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.stores))
	for name := range s.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog manages a Stores per entity type.
type Catalog struct {
	mu     sync.Mutex
	stores map[reflect.Type]any
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		stores: make(map[reflect.Type]any),
	}
}

// StoresFor returns the Stores for type T, creating it if necessary.
func StoresFor[T any](c *Catalog) *Stores[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	typ := reflect.TypeOf((*T)(nil)).Elem()
	if s, exists := c.stores[typ]; exists {
		return s.(*Stores[T])
	}
	s := NewStores[T]()
	c.stores[typ] = s
	return s
}

// Register registers ds for type T under name.
func Register[T any](c *Catalog, name string, ds DataStore[T]) error {
	return StoresFor[T](c).Register(name, ds)
}

// Get returns the datastore registered for type T under name.
func Get[T any](c *Catalog, name string) (DataStore[T], error) {
	return StoresFor[T](c).Get(name)
}

// Remove removes the datastore registered for type T under name.
func Remove[T any](c *Catalog, name string) error {
	return StoresFor[T](c).Remove(name)
}

// Names lists the datastores registered for type T.
func Names[T any](c *Catalog) []string {
	return StoresFor[T](c).Names()
}
