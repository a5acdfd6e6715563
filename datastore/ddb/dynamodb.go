/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"reflect"

	"github.com/suparena/entity"
	"github.com/suparena/entity/config"
	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/logger"
	"github.com/suparena/entity/registry"
	"github.com/suparena/entity/storagemodels"
)

// DynamodbDataStore implements datastore.DataStore[T] on a Table.
// T must be registered with registry.RegisterType and registry.RegisterIndexMap.
type DynamodbDataStore[T any, PT entity.Pointer[T]] struct {
	table    *Table
	typeName string
}

// NewDynamodbDataStore connects to DynamoDB with cfg and returns a store for T.
func NewDynamodbDataStore[T any, PT entity.Pointer[T]](ctx context.Context, cfg config.AWSConfig) (*DynamodbDataStore[T, PT], error) {
	client, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create DynamoDB client")
	}
	return New[T, PT](NewTable(client, cfg.Table))
}

// New returns a store for T on an existing table.
func New[T any, PT entity.Pointer[T]](table *Table) (*DynamodbDataStore[T, PT], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	name, ok := registry.TypeName(typ)
	if !ok {
		return nil, errors.NewValidationError("type", fmt.Sprintf("%s is not registered", typ))
	}
	if _, ok := registry.IndexMapFor(typ); !ok {
		return nil, errors.Wrapf(errors.ErrNoIndexMap, "%s", name)
	}
	return &DynamodbDataStore[T, PT]{table: table, typeName: name}, nil
}

// Table returns the underlying table.
func (d *DynamodbDataStore[T, PT]) Table() *Table {
	return d.table
}

// GetOne retrieves the entity stored under key. Keys whose PK and SK templates
// use several attributes join the values with KeySeparator.
func (d *DynamodbDataStore[T, PT]) GetOne(ctx context.Context, key string) (*T, error) {
	e, err := d.table.Get(ctx, d.typeName, key)
	if err != nil {
		return nil, err
	}
	pt, ok := e.(PT)
	if !ok {
		return nil, errors.Newf("item under %q is a %s, not a %s", key, entity.TypeName(e), d.typeName)
	}
	return (*T)(pt), nil
}

// Put stores e with its index map keys expanded from its exported attributes.
func (d *DynamodbDataStore[T, PT]) Put(ctx context.Context, e *T) error {
	return d.table.Put(ctx, PT(e))
}

// Update sets attributes on the stored entity.
func (d *DynamodbDataStore[T, PT]) Update(ctx context.Context, key string, updates map[string]any, condition string) error {
	return d.table.Update(ctx, d.typeName, key, updates, condition)
}

// Query returns the items of type T matched by params. Items of other types
// sharing the partition are skipped.
func (d *DynamodbDataStore[T, PT]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]*T, error) {
	results, err := d.table.Query(ctx, params)
	if err != nil {
		return nil, err
	}

	typed := make([]*T, 0, len(results))
	for _, e := range results {
		if pt, ok := e.(PT); ok {
			typed = append(typed, (*T)(pt))
			continue
		}
		logger.Debugw("query skipped item of another type",
			logger.FieldType, entity.TypeName(e))
	}
	return typed, nil
}

// Delete removes the entity stored under key.
func (d *DynamodbDataStore[T, PT]) Delete(ctx context.Context, key string) error {
	return d.table.Delete(ctx, d.typeName, key)
}
