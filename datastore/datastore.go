/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/entity/storagemodels"
)

// DataStore persists entities of type T. Keys are the string form of the
// entity's primary key as understood by the implementation.
type DataStore[T any] interface {
	// GetOne returns the entity stored under key, or a NotFoundError.
	GetOne(ctx context.Context, key string) (*T, error)

	// Put stores the entity's exported attributes, replacing any previous version.
	Put(ctx context.Context, e *T) error

	// Update sets the given attributes on the stored entity. Unknown attribute
	// names are rejected before anything is written. An empty condition means
	// the update is unconditional.
	Update(ctx context.Context, key string, updates map[string]any, condition string) error

	Query(ctx context.Context, params *storagemodels.QueryParams) ([]*T, error)

	Delete(ctx context.Context, key string) error
}
