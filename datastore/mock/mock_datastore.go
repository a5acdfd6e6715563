/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of datastore.DataStore for testing.
package mock

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/suparena/entity"
	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/storagemodels"
)

// ConditionFunc decides whether a conditional update may proceed.
type ConditionFunc[T any] func(current *T, condition string) bool

// Store is an in-memory datastore.DataStore[T]. It keeps the exported
// attribute map of each entity, not the entity itself, so stored values are
// isolated from later changes to the caller's instance.
type Store[T any, PT entity.Pointer[T]] struct {
	mu           sync.RWMutex
	keyAttribute string
	data         map[string]map[string]any

	queryFunc     func(ctx context.Context, params *storagemodels.QueryParams) ([]*T, error)
	conditionFunc ConditionFunc[T]
	getError      error
	putError      error
	deleteError   error
	updateError   error
}

// New creates an empty store keyed by the value of keyAttribute.
func New[T any, PT entity.Pointer[T]](keyAttribute string) *Store[T, PT] {
	return &Store[T, PT]{
		keyAttribute: keyAttribute,
		data:         make(map[string]map[string]any),
	}
}

// WithQueryFunc sets a custom query function for testing
func (m *Store[T, PT]) WithQueryFunc(f func(ctx context.Context, params *storagemodels.QueryParams) ([]*T, error)) *Store[T, PT] {
	m.queryFunc = f
	return m
}

// WithConditionFunc sets the evaluator for Update conditions. Without one,
// every condition passes.
func (m *Store[T, PT]) WithConditionFunc(f ConditionFunc[T]) *Store[T, PT] {
	m.conditionFunc = f
	return m
}

// WithGetError makes GetOne operations return an error
func (m *Store[T, PT]) WithGetError(err error) *Store[T, PT] {
	m.getError = err
	return m
}

// WithPutError makes Put operations return an error
func (m *Store[T, PT]) WithPutError(err error) *Store[T, PT] {
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *Store[T, PT]) WithDeleteError(err error) *Store[T, PT] {
	m.deleteError = err
	return m
}

// WithUpdateError makes Update operations return an error
func (m *Store[T, PT]) WithUpdateError(err error) *Store[T, PT] {
	m.updateError = err
	return m
}

// GetOne rebuilds the entity stored under key.
func (m *Store[T, PT]) GetOne(ctx context.Context, key string) (*T, error) {
	if m.getError != nil {
		return nil, m.getError
	}

	m.mu.RLock()
	snapshot, exists := m.data[key]
	m.mu.RUnlock()

	if !exists {
		return nil, errors.NewNotFoundError(m.typeName(), key)
	}
	return m.rebuild(snapshot)
}

// Put stores e's exported attributes under the value of the key attribute.
func (m *Store[T, PT]) Put(ctx context.Context, e *T) error {
	if m.putError != nil {
		return m.putError
	}

	snapshot, err := entity.ToMap(PT(e))
	if err != nil {
		return err
	}
	key, err := m.extractKey(snapshot)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = snapshot
	return nil
}

// Update applies updates through the entity's setters, so unknown names and
// values the setters cannot take are rejected without changing the stored copy.
func (m *Store[T, PT]) Update(ctx context.Context, key string, updates map[string]any, condition string) error {
	if m.updateError != nil {
		return m.updateError
	}
	if len(updates) == 0 {
		return errors.NewValidationError("updates", "no updates provided")
	}
	if _, ok := updates[m.keyAttribute]; ok {
		return errors.NewValidationError(m.keyAttribute, "key attribute cannot be updated")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, exists := m.data[key]
	if !exists {
		return errors.NewNotFoundError(m.typeName(), key)
	}
	current, err := m.rebuild(snapshot)
	if err != nil {
		return err
	}
	if err := entity.CheckAttributes(PT(current), "set", slices.Sorted(maps.Keys(updates))...); err != nil {
		return err
	}
	if condition != "" && m.conditionFunc != nil && !m.conditionFunc(current, condition) {
		return errors.NewConditionFailedError("update", condition)
	}

	if err := entity.SetFromMap(PT(current), updates); err != nil {
		return err
	}
	updated, err := entity.ToMap(PT(current))
	if err != nil {
		return err
	}
	m.data[key] = updated
	return nil
}

// Query returns the stored entities sorted by key. If params binds ":pk",
// only the entity with that key is returned. Limit is honored.
func (m *Store[T, PT]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]*T, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(m.data))
	if params != nil {
		if pk := params.KeyValue(":pk"); pk != "" {
			keys = slices.DeleteFunc(keys, func(k string) bool { return k != pk })
		}
		if params.Limit != nil && int(*params.Limit) < len(keys) {
			keys = keys[:*params.Limit]
		}
	}

	results := make([]*T, 0, len(keys))
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := m.rebuild(m.data[k])
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, nil
}

// Delete removes an entity by key
func (m *Store[T, PT]) Delete(ctx context.Context, key string) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists {
		return errors.NewNotFoundError(m.typeName(), key)
	}
	delete(m.data, key)
	return nil
}

// Helper methods for testing

// Snapshot returns a copy of the attribute map stored under key.
func (m *Store[T, PT]) Snapshot(key string) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, ok := m.data[key]
	return maps.Clone(snapshot), ok
}

// Keys returns the stored keys, sorted.
func (m *Store[T, PT]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data))
}

// Count returns the number of stored entities
func (m *Store[T, PT]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all data
func (m *Store[T, PT]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[string]any)
}

func (m *Store[T, PT]) rebuild(snapshot map[string]any) (*T, error) {
	e, err := entity.FromMap[T, PT](maps.Clone(snapshot))
	if err != nil {
		return nil, errors.Wrapf(err, "rebuild %s", m.typeName())
	}
	return e, nil
}

func (m *Store[T, PT]) extractKey(snapshot map[string]any) (string, error) {
	v, ok := snapshot[m.keyAttribute]
	if !ok {
		return "", errors.NewValidationError(m.keyAttribute, fmt.Sprintf("%s has no such attribute", m.typeName()))
	}
	key := fmt.Sprint(v)
	if v == nil || key == "" {
		return "", errors.NewValidationError(m.keyAttribute, "empty key")
	}
	return key, nil
}

func (m *Store[T, PT]) typeName() string {
	return entity.TypeName(PT(new(T)))
}
