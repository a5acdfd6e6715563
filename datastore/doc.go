/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package datastore defines the persistence interface for entities.

DataStore[T] provides CRUD operations for an entity type T:

	type DataStore[T any] interface {
	    GetOne(ctx context.Context, key string) (*T, error)
	    Put(ctx context.Context, e *T) error
	    Update(ctx context.Context, key string, updates map[string]any, condition string) error
	    Query(ctx context.Context, params *storagemodels.QueryParams) ([]*T, error)
	    Delete(ctx context.Context, key string) error
	}

Implementations store what entity.ToMap exports and rebuild entities with
entity.FromMap, so only attributes reachable through accessors are persisted:
  - ddb: DynamoDB single-table implementation
  - mock: in-memory implementation for testing

Catalog keeps named datastores per entity type.
*/
package datastore
