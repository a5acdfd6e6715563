/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/registry"
	"github.com/suparena/entity/storagemodels"
)

// GSIQueryBuilder provides a fluent interface for building GSI queries.
// Key values are placed into the index map templates of T, so
// WithPartitionKey("Greeting") on "TITLE#{title}" queries "TITLE#Greeting".
type GSIQueryBuilder[T any] struct {
	query      func(ctx context.Context, params *storagemodels.QueryParams) ([]*T, error)
	stream     func(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[*T]
	params     *storagemodels.QueryParams
	indexName  string
	pkValue    string
	skValue    string
	skValue2   string
	skOperator string // "=", "begins_with", ">", "<", ">=", "<=", "BETWEEN"
	filters    []string
	filterVals map[string]types.AttributeValue
}

// QueryGSI creates a new GSI query builder on GSI1.
func (d *DynamodbDataStore[T, PT]) QueryGSI() *GSIQueryBuilder[T] {
	return &GSIQueryBuilder[T]{
		query:      d.Query,
		stream:     d.Stream,
		indexName:  "GSI1",
		filterVals: make(map[string]types.AttributeValue),
		params: &storagemodels.QueryParams{
			TableName:                 d.table.Name(),
			ExpressionAttributeValues: make(map[string]types.AttributeValue),
		},
	}
}

// OnIndex selects a GSI from DefaultGSIConfigs.
func (q *GSIQueryBuilder[T]) OnIndex(indexName string) *GSIQueryBuilder[T] {
	q.indexName = indexName
	return q
}

// WithPartitionKey sets the GSI partition key value
func (q *GSIQueryBuilder[T]) WithPartitionKey(value string) *GSIQueryBuilder[T] {
	q.pkValue = value
	return q
}

// WithSortKey sets the GSI sort key value with equals operator
func (q *GSIQueryBuilder[T]) WithSortKey(value string) *GSIQueryBuilder[T] {
	return q.sortKey("=", value)
}

// WithSortKeyPrefix sets the GSI sort key to use begins_with operator
func (q *GSIQueryBuilder[T]) WithSortKeyPrefix(prefix string) *GSIQueryBuilder[T] {
	return q.sortKey("begins_with", prefix)
}

// WithSortKeyGreaterThan sets the GSI sort key to use > operator
func (q *GSIQueryBuilder[T]) WithSortKeyGreaterThan(value string) *GSIQueryBuilder[T] {
	return q.sortKey(">", value)
}

// WithSortKeyLessThan sets the GSI sort key to use < operator
func (q *GSIQueryBuilder[T]) WithSortKeyLessThan(value string) *GSIQueryBuilder[T] {
	return q.sortKey("<", value)
}

// WithSortKeyBetween sets the GSI sort key to use BETWEEN operator
func (q *GSIQueryBuilder[T]) WithSortKeyBetween(start, end string) *GSIQueryBuilder[T] {
	q.skValue2 = end
	return q.sortKey("BETWEEN", start)
}

func (q *GSIQueryBuilder[T]) sortKey(op, value string) *GSIQueryBuilder[T] {
	q.skOperator = op
	q.skValue = value
	return q
}

// WithFilter adds a filter expression
func (q *GSIQueryBuilder[T]) WithFilter(expression string, values map[string]types.AttributeValue) *GSIQueryBuilder[T] {
	q.filters = append(q.filters, expression)
	for k, v := range values {
		q.filterVals[k] = v
	}
	return q
}

// WithLimit sets the query limit
func (q *GSIQueryBuilder[T]) WithLimit(limit int32) *GSIQueryBuilder[T] {
	q.params.Limit = aws.Int32(limit)
	return q
}

// Build constructs the final query parameters
func (q *GSIQueryBuilder[T]) Build() (*storagemodels.QueryParams, error) {
	if q.pkValue == "" {
		return nil, errors.NewValidationError("partition key", "GSI partition key value is required")
	}
	gsi, ok := GetGSIConfig(q.indexName)
	if !ok {
		return nil, errors.NewValidationError("index", fmt.Sprintf("unknown GSI %q", q.indexName))
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	indexMap, ok := registry.IndexMapFor(typ)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoIndexMap, "%s", typ)
	}
	pkTemplate, ok := indexMap[gsi.PartitionKeyName]
	if !ok {
		return nil, errors.NewValidationError(gsi.PartitionKeyName, "not found in index map")
	}

	keyConditions := []string{gsi.PartitionKeyName + " = :pk"}
	q.params.ExpressionAttributeValues[":pk"] = &types.AttributeValueMemberS{Value: fillTemplate(pkTemplate, q.pkValue)}

	if q.skOperator != "" {
		skTemplate, ok := indexMap[gsi.SortKeyName]
		if !ok {
			return nil, errors.NewValidationError(gsi.SortKeyName, "not found in index map")
		}
		q.params.ExpressionAttributeValues[":sk"] = &types.AttributeValueMemberS{Value: fillTemplate(skTemplate, q.skValue)}

		switch q.skOperator {
		case "begins_with":
			keyConditions = append(keyConditions, "begins_with("+gsi.SortKeyName+", :sk)")
		case "BETWEEN":
			keyConditions = append(keyConditions, gsi.SortKeyName+" BETWEEN :sk AND :sk2")
			q.params.ExpressionAttributeValues[":sk2"] = &types.AttributeValueMemberS{Value: fillTemplate(skTemplate, q.skValue2)}
		default:
			keyConditions = append(keyConditions, gsi.SortKeyName+" "+q.skOperator+" :sk")
		}
	}

	q.params.KeyConditionExpression = strings.Join(keyConditions, " AND ")
	q.params.IndexName = aws.String(gsi.IndexName)

	if len(q.filters) > 0 {
		q.params.FilterExpression = aws.String(strings.Join(q.filters, " AND "))
		for k, v := range q.filterVals {
			q.params.ExpressionAttributeValues[k] = v
		}
	}

	return q.params, nil
}

// Execute runs the query and returns results
func (q *GSIQueryBuilder[T]) Execute(ctx context.Context) ([]*T, error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}
	return q.query(ctx, params)
}

// Stream runs the query as a stream. A build failure is sent as the only result.
func (q *GSIQueryBuilder[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[*T] {
	params, err := q.Build()
	if err != nil {
		ch := make(chan storagemodels.StreamResult[*T], 1)
		ch <- storagemodels.StreamResult[*T]{Error: err}
		close(ch)
		return ch
	}
	return q.stream(ctx, params, opts...)
}

// fillTemplate replaces every macro of template with value. A template
// without macros is used as a prefix.
func fillTemplate(template, value string) string {
	if !macroPattern.MatchString(template) {
		return template + value
	}
	return macroPattern.ReplaceAllLiteralString(template, value)
}

// QueryByGSI1PK queries using only the GSI1 partition key
func (d *DynamodbDataStore[T, PT]) QueryByGSI1PK(ctx context.Context, pkValue string) ([]*T, error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		Execute(ctx)
}

// QueryByGSI1PKAndSKPrefix queries using GSI1 partition key and sort key prefix
func (d *DynamodbDataStore[T, PT]) QueryByGSI1PKAndSKPrefix(ctx context.Context, pkValue, skPrefix string) ([]*T, error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		WithSortKeyPrefix(skPrefix).
		Execute(ctx)
}
