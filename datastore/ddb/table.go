/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/entity"
	"github.com/suparena/entity/codec"
	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/logger"
	"github.com/suparena/entity/registry"
	"github.com/suparena/entity/storagemodels"
)

// Table stores entities of any registered type in one DynamoDB table
// (single-table design). Items carry the entity's exported attributes, the
// keys expanded from the type's index map and an EntityType attribute naming
// the registered type, which is how Query rebuilds mixed results.
type Table struct {
	client API
	name   string
}

// NewTable returns a Table backed by client.
func NewTable(client API, name string) *Table {
	return &Table{client: client, name: name}
}

// Name returns the DynamoDB table name.
func (t *Table) Name() string {
	return t.name
}

type typeInfo struct {
	name     string
	typ      reflect.Type
	indexMap map[string]string
}

func resolveType(name string) (*typeInfo, error) {
	v, err := registry.NewByName(name)
	if err != nil {
		return nil, errors.NewValidationError("type", err.Error())
	}
	typ := reflect.TypeOf(v)
	indexMap, ok := registry.IndexMapFor(typ)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoIndexMap, "%s", name)
	}
	return &typeInfo{name: name, typ: typ, indexMap: indexMap}, nil
}

func resolveEntity(e entity.Entity) (*typeInfo, error) {
	name, ok := registry.TypeName(reflect.TypeOf(e))
	if !ok {
		return nil, errors.NewValidationError("type", fmt.Sprintf("%s is not registered", entity.TypeName(e)))
	}
	return resolveType(name)
}

func newEntity(name string) (entity.Entity, error) {
	v, err := registry.NewByName(name)
	if err != nil {
		return nil, errors.NewValidationError("type", err.Error())
	}
	e, ok := v.(entity.Entity)
	if !ok {
		return nil, errors.NewValidationError("type", fmt.Sprintf("%s is not an entity", name))
	}
	entity.Init(e)
	return e, nil
}

// Put stores e, replacing any item with the same key.
func (t *Table) Put(ctx context.Context, e entity.Entity) error {
	info, err := resolveEntity(e)
	if err != nil {
		return err
	}

	exported, err := entity.ToMap(e)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(codec.Normalize(exported))
	if err != nil {
		return errors.Wrap(err, "failed to marshal entity")
	}

	expanded, err := expandMacros(info.indexMap, exported)
	if err != nil {
		return err
	}
	if _, err := buildKeyFromExpanded(expanded); err != nil {
		return err
	}
	for k, v := range expanded {
		item[k] = &types.AttributeValueMemberS{Value: v}
	}
	item[EntityTypeAttribute] = &types.AttributeValueMemberS{Value: info.name}

	_, err = t.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	if err != nil {
		return errors.Wrap(err, "PutItem failed")
	}

	logger.Debugw("item stored",
		logger.FieldTable, t.name,
		logger.FieldType, info.name,
		logger.FieldKey, expanded[partitionKey]+"/"+expanded[sortKey])
	return nil
}

// Get rebuilds the entity of the named type stored under key.
func (t *Table) Get(ctx context.Context, typeName, key string) (entity.Entity, error) {
	info, err := resolveType(typeName)
	if err != nil {
		return nil, err
	}
	keyMap, err := keyFor(info.indexMap, key)
	if err != nil {
		return nil, err
	}

	out, err := t.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: aws.String(t.name),
		Key:       keyMap,
	})
	if err != nil {
		return nil, errors.Wrap(err, "GetItem failed")
	}
	if len(out.Item) == 0 {
		return nil, errors.NewNotFoundError(typeName, key)
	}
	return decodeItem(out.Item)
}

// Delete removes the item of the named type stored under key.
func (t *Table) Delete(ctx context.Context, typeName, key string) error {
	info, err := resolveType(typeName)
	if err != nil {
		return err
	}
	keyMap, err := keyFor(info.indexMap, key)
	if err != nil {
		return err
	}

	_, err = t.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       keyMap,
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete item in DynamoDB")
	}
	return nil
}

// Update sets attributes on a stored item. The updates are first applied to a
// fresh entity of the type, so unknown names, missing setters and values the
// setters reject fail before DynamoDB is called; the values written are the
// ones read back through the getters. Attributes used by the primary key
// cannot be updated. Secondary index keys whose templates only use updated
// attributes are refreshed. An empty condition requires the item to exist.
func (t *Table) Update(ctx context.Context, typeName, key string, updates map[string]any, condition string) error {
	if len(updates) == 0 {
		return errors.NewValidationError("updates", "no updates provided")
	}
	info, err := resolveType(typeName)
	if err != nil {
		return err
	}
	keyVals, err := keyValues(info.indexMap, key)
	if err != nil {
		return err
	}
	keyMap, err := keyFor(info.indexMap, key)
	if err != nil {
		return err
	}

	scratch, err := newEntity(typeName)
	if err != nil {
		return err
	}
	names := slices.Sorted(maps.Keys(updates))
	if err := entity.CheckAttributes(scratch, "set", names...); err != nil {
		return err
	}
	for _, m := range keyMacros(info.indexMap) {
		if _, ok := updates[m]; ok {
			return errors.NewValidationError(m, "key attribute cannot be updated")
		}
	}
	if err := entity.SetFromMap(scratch, updates); err != nil {
		return err
	}

	values := make(map[string]any, len(names))
	for _, name := range names {
		v, err := entity.GetAttribute(scratch, name)
		if err != nil {
			return err
		}
		values[name] = v
	}

	set := make(map[string]types.AttributeValue, len(values))
	for name, v := range values {
		av, err := attributevalue.Marshal(codec.Normalize(v))
		if err != nil {
			return errors.Wrapf(err, "failed to marshal update for %q", name)
		}
		set[name] = av
	}
	for field, template := range info.indexMap {
		if field == partitionKey || field == sortKey {
			continue
		}
		if s, ok := derivedKey(template, values, keyVals); ok {
			set[field] = &types.AttributeValueMemberS{Value: s}
		}
	}

	updateExpr, exprAttrNames, exprAttrValues, err := buildUpdateExpression(set)
	if err != nil {
		return errors.Wrap(err, "failed to build update expression")
	}

	cond := condition
	if cond == "" {
		cond = "attribute_exists(" + partitionKey + ")"
	}
	_, err = t.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       keyMap,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
		ConditionExpression:       aws.String(cond),
		ReturnValues:              types.ReturnValueNone,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			if condition == "" {
				return errors.NewNotFoundError(typeName, key)
			}
			return errors.NewConditionFailedError("update", condition)
		}
		return errors.Wrap(err, "UpdateItem failed")
	}
	return nil
}

// derivedKey expands template if it names at least one updated attribute and
// every attribute it names is either updated or part of the primary key.
func derivedKey(template string, updated, keyVals map[string]any) (string, bool) {
	all := make(map[string]any, len(keyVals)+len(updated))
	maps.Copy(all, keyVals)
	maps.Copy(all, updated)

	touched := false
	for _, m := range templateMacros(template) {
		if _, ok := updated[m]; ok {
			touched = true
		}
		if _, ok := all[m]; !ok {
			return "", false
		}
	}
	if !touched {
		return "", false
	}
	s, err := expandTemplate(template, all)
	return s, err == nil
}

// buildUpdateExpression turns attribute values into "SET #f0 = :v0, ..." with
// its name and value placeholders. Names are sorted so the expression is stable.
func buildUpdateExpression(updates map[string]types.AttributeValue) (string,
	map[string]string,
	map[string]types.AttributeValue,
	error) {

	if len(updates) == 0 {
		return "", nil, nil, errors.New("no updates provided")
	}

	setClauses := make([]string, 0, len(updates))
	exprAttrNames := make(map[string]string, len(updates))
	exprAttrValues := make(map[string]types.AttributeValue, len(updates))

	for i, field := range slices.Sorted(maps.Keys(updates)) {
		placeholderName := fmt.Sprintf("#f%d", i)
		placeholderValue := fmt.Sprintf(":v%d", i)

		setClauses = append(setClauses, placeholderName+" = "+placeholderValue)
		exprAttrNames[placeholderName] = field
		exprAttrValues[placeholderValue] = updates[field]
	}

	return "SET " + strings.Join(setClauses, ", "), exprAttrNames, exprAttrValues, nil
}

// Query runs a DynamoDB query and rebuilds every item through its EntityType.
// Without a limit every page is read. Items of unregistered types are skipped.
func (t *Table) Query(ctx context.Context, params *storagemodels.QueryParams) ([]entity.Entity, error) {
	if params == nil {
		return nil, errors.NewValidationError("params", "query parameters required")
	}
	tableName := params.TableName
	if tableName == "" {
		tableName = t.name
	}
	input := &sdk.QueryInput{
		TableName:                 aws.String(tableName),
		KeyConditionExpression:    aws.String(params.KeyConditionExpression),
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ExclusiveStartKey:         params.ExclusiveStartKey,
		ScanIndexForward:          params.ScanIndexForward,
	}

	var items []map[string]types.AttributeValue
	if params.Limit != nil {
		out, err := t.client.Query(ctx, input)
		if err != nil {
			return nil, errors.Wrap(err, "query error")
		}
		items = out.Items
	} else {
		paginator := sdk.NewQueryPaginator(t.client, input)
		for paginator.HasMorePages() {
			out, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "query error")
			}
			items = append(items, out.Items...)
		}
	}

	results := make([]entity.Entity, 0, len(items))
	for _, item := range items {
		e, err := decodeItem(item)
		if errors.Is(err, errUnregisteredType) {
			logger.Warnw("skipping item of unregistered type",
				logger.FieldTable, tableName,
				logger.FieldError, err.Error())
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, nil
}

var errUnregisteredType = errors.New("unregistered entity type")

// decodeItem rebuilds an entity from an item, dropping the injected
// EntityType and index attributes first.
func decodeItem(item map[string]types.AttributeValue) (entity.Entity, error) {
	var typeName string
	attr, ok := item[EntityTypeAttribute]
	if !ok {
		return nil, errors.New("missing EntityType attribute in item")
	}
	if err := attributevalue.Unmarshal(attr, &typeName); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal EntityType")
	}

	e, err := newEntity(typeName)
	if err != nil {
		return nil, errors.Wrapf(errUnregisteredType, "%s", typeName)
	}

	var raw map[string]any
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal item for EntityType %q", typeName)
	}
	delete(raw, EntityTypeAttribute)
	if indexMap, ok := registry.IndexMapFor(reflect.TypeOf(e)); ok {
		for field := range indexMap {
			delete(raw, field)
		}
	}

	if err := entity.SetFromMap(e, raw); err != nil {
		return nil, errors.Wrapf(err, "failed to rebuild %s", typeName)
	}
	return e, nil
}
