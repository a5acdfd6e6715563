/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Single-table design patterns through Table
  - Macro-based key expansion (e.g., "USER#{email}")
  - Global Secondary Index (GSI) queries
  - Conditional updates validated against the entity's attributes
  - Automatic EntityType injection for polymorphic storage
  - Streaming queries with retries and progress reporting
  - Time-range queries on date-time sort keys

Items are built from entity.ToMap, so only attributes with accessors are
stored, and rebuilt with entity.SetFromMap through the type registry.

Macro Expansion:
Index map templates name attributes and are expanded with their exported values:

	registry.RegisterIndexMap[models.Post](map[string]string{
	    "PK":     "USER#{userId}",     // Becomes "USER#7"
	    "SK":     "POST#{datetime}",   // Date-times are stored in their text form
	    "GSI1PK": "TITLE#{title}",
	})

String keys passed to GetOne, Update and Delete supply the PK and SK macro
values in order of appearance, joined with KeySeparator when there are
several: store.GetOne(ctx, "7|2025-01-02T03:04:05.000Z").

Streaming:

	for r := range store.Stream(ctx, params, storagemodels.WithPageSize(50)) {
	    if r.Error != nil {
	        continue
	    }
	    process(r.Item)
	}

The DynamoDB client is used through the API interface, which tests replace
with an in-process fake.
*/
package ddb
