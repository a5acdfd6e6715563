/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package models holds the example entity types used by the tests, the CLI and
the datastore adapters.

Field-backed types (User, Message, Post, Thread) get their attributes from
struct field discovery. Map-backed types (CustomUser, CustomPost) keep values
in a map and list their attributes through an AttributeNames method. BadModel
is deliberately malformed.

Every type is registered by name with the type registry and, where it has a
natural key, with a DynamoDB index map.
*/
package models
