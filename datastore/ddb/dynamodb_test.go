/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entity"
	"github.com/suparena/entity/datastore"
	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/models"
	"github.com/suparena/entity/storagemodels"
)

// fakeDynamo keeps items in memory and understands the expressions the
// datastore generates.
type fakeDynamo struct {
	mu      sync.Mutex
	items     map[string]map[string]types.AttributeValue
	updates   int
	queries   int
	queryErrs int // number of upcoming Query calls that fail
}

var _ API = (*fakeDynamo)(nil)

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func attrString(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemKey(key map[string]types.AttributeValue) string {
	return attrString(key["PK"]) + "\x00" + attrString(key["SK"])
}

func (f *fakeDynamo) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &sdk.GetItemOutput{Item: maps.Clone(f.items[itemKey(in.Key)])}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[itemKey(in.Item)] = maps.Clone(in.Item)
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, itemKey(in.Key))
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++

	k := itemKey(in.Key)
	item, exists := f.items[k]
	switch aws.ToString(in.ConditionExpression) {
	case "attribute_exists(PK)":
		if !exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	case "attribute_not_exists(PK)":
		if exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}
	if !exists {
		item = maps.Clone(in.Key)
	}

	for _, clause := range strings.Split(strings.TrimPrefix(aws.ToString(in.UpdateExpression), "SET "), ", ") {
		name, value, _ := strings.Cut(clause, " = ")
		item[in.ExpressionAttributeNames[name]] = in.ExpressionAttributeValues[value]
	}
	f.items[k] = item
	return &sdk.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.queryErrs > 0 {
		f.queryErrs--
		return nil, &types.InternalServerError{Message: aws.String("try again")}
	}

	type cond struct {
		attr, op, lo, hi string
	}
	var conds []cond
	clauses := strings.Split(aws.ToString(in.KeyConditionExpression), " AND ")
	for i := 0; i < len(clauses); i++ {
		clause := clauses[i]
		if rest, ok := strings.CutPrefix(clause, "begins_with("); ok {
			attr, ph, _ := strings.Cut(strings.TrimSuffix(rest, ")"), ", ")
			conds = append(conds, cond{attr: attr, op: "begins_with", lo: attrString(in.ExpressionAttributeValues[ph])})
			continue
		}
		parts := strings.Fields(clause)
		c := cond{attr: parts[0], op: parts[1], lo: attrString(in.ExpressionAttributeValues[parts[2]])}
		if c.op == "BETWEEN" {
			i++
			c.hi = attrString(in.ExpressionAttributeValues[clauses[i]])
		}
		conds = append(conds, c)
	}

	keys := slices.Sorted(maps.Keys(f.items))
	if in.ScanIndexForward != nil && !*in.ScanIndexForward {
		slices.Reverse(keys)
	}
	start := ""
	if in.ExclusiveStartKey != nil {
		start = itemKey(in.ExclusiveStartKey)
	}

	out := &sdk.QueryOutput{}
	for _, k := range keys {
		if start != "" {
			if k == start {
				start = ""
			}
			continue
		}
		item := f.items[k]
		match := true
		for _, c := range conds {
			v := attrString(item[c.attr])
			switch c.op {
			case "=":
				match = match && v == c.lo
			case "begins_with":
				match = match && strings.HasPrefix(v, c.lo)
			case ">":
				match = match && v > c.lo
			case ">=":
				match = match && v >= c.lo
			case "<":
				match = match && v < c.lo
			case "<=":
				match = match && v <= c.lo
			case "BETWEEN":
				match = match && v >= c.lo && v <= c.hi
			}
		}
		if !match {
			continue
		}
		if in.Limit != nil && len(out.Items) == int(*in.Limit) {
			last := out.Items[len(out.Items)-1]
			out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": last["PK"], "SK": last["SK"]}
			break
		}
		out.Items = append(out.Items, maps.Clone(item))
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func (f *fakeDynamo) item(pk, sk string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[pk+"\x00"+sk]
}

var when = strfmt.DateTime(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))

const whenText = "2025-01-02T03:04:05.000Z"

func newStores(t *testing.T) (*fakeDynamo, *DynamodbDataStore[models.User, *models.User], *DynamodbDataStore[models.Post, *models.Post]) {
	t.Helper()
	fake := newFakeDynamo()
	table := NewTable(fake, "entities")

	users, err := New[models.User](table)
	require.NoError(t, err)
	posts, err := New[models.Post](table)
	require.NoError(t, err)
	return fake, users, posts
}

func TestDataStoreInterface(t *testing.T) {
	var _ datastore.DataStore[models.User] = (*DynamodbDataStore[models.User, *models.User])(nil)
}

func TestPutAndGetOne(t *testing.T) {
	ctx := context.Background()
	fake, users, _ := newStores(t)

	user, err := entity.New[models.User](map[string]any{"name": "John", "email": "john@example.com", "isAdmin": true})
	require.NoError(t, err)
	require.NoError(t, users.Put(ctx, user))

	item := fake.item("USER#john@example.com", "PROFILE")
	require.NotNil(t, item)
	assert.Equal(t, "User", attrString(item[EntityTypeAttribute]))
	assert.Equal(t, "John", attrString(item["name"]))
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, item["isAdmin"])

	got, err := users.GetOne(ctx, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = users.GetOne(ctx, "nobody@example.com")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, users.Delete(ctx, "john@example.com"))
	_, err = users.GetOne(ctx, "john@example.com")
	assert.True(t, errors.IsNotFound(err))
}

func TestCompositeKey(t *testing.T) {
	ctx := context.Background()
	fake, _, posts := newStores(t)

	post, err := entity.New[models.Post](map[string]any{
		"datetime": when,
		"userId":   7,
		"text":     "hello",
		"title":    "Greeting",
		"labels":   []string{"a", "b"},
	})
	require.NoError(t, err)
	require.NoError(t, posts.Put(ctx, post))

	item := fake.item("USER#7", "POST#"+whenText)
	require.NotNil(t, item)
	assert.Equal(t, "TITLE#Greeting", attrString(item["GSI1PK"]))
	assert.Equal(t, &types.AttributeValueMemberN{Value: "7"}, item["userId"])

	got, err := posts.GetOne(ctx, "7"+KeySeparator+whenText)
	require.NoError(t, err)
	assert.Equal(t, 7, got.GetUserId())
	assert.Equal(t, []string{"a", "b"}, got.GetLabels())
	assert.True(t, time.Time(when).Equal(time.Time(got.GetDatetime())))

	_, err = posts.GetOne(ctx, "7")
	assert.True(t, errors.IsValidationError(err))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	fake, users, posts := newStores(t)

	user, err := entity.New[models.User](map[string]any{"name": "John", "email": "john@example.com"})
	require.NoError(t, err)
	require.NoError(t, users.Put(ctx, user))

	t.Run("applies updates", func(t *testing.T) {
		require.NoError(t, users.Update(ctx, "john@example.com", map[string]any{"isAdmin": true, "name": "Johnny"}, ""))
		got, err := users.GetOne(ctx, "john@example.com")
		require.NoError(t, err)
		assert.True(t, got.IsAdmin())
		assert.Equal(t, "Johnny", got.GetName())
	})

	t.Run("unknown attribute is rejected before the call", func(t *testing.T) {
		before := fake.updates
		err := users.Update(ctx, "john@example.com", map[string]any{"nickname": "JJ"}, "")
		assert.True(t, errors.IsUnknownAttribute(err))
		assert.Equal(t, before, fake.updates)
	})

	t.Run("bad value", func(t *testing.T) {
		err := users.Update(ctx, "john@example.com", map[string]any{"disabled": "maybe"}, "")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("key attribute", func(t *testing.T) {
		err := users.Update(ctx, "john@example.com", map[string]any{"email": "x@example.com"}, "")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("missing item", func(t *testing.T) {
		err := users.Update(ctx, "nobody@example.com", map[string]any{"name": "x"}, "")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("condition failed", func(t *testing.T) {
		err := users.Update(ctx, "john@example.com", map[string]any{"name": "x"}, "attribute_not_exists(PK)")
		assert.True(t, errors.IsConditionFailed(err))
	})

	t.Run("refreshes secondary keys", func(t *testing.T) {
		post, err := entity.New[models.Post](map[string]any{"datetime": when, "userId": 7, "title": "Old"})
		require.NoError(t, err)
		require.NoError(t, posts.Put(ctx, post))

		require.NoError(t, posts.Update(ctx, "7|"+whenText, map[string]any{"title": "New"}, ""))
		item := fake.item("USER#7", "POST#"+whenText)
		assert.Equal(t, "TITLE#New", attrString(item["GSI1PK"]))
		assert.Equal(t, "New", attrString(item["title"]))
		assert.Equal(t, "POST#"+whenText, attrString(item["GSI1SK"]))
	})
}

func TestQuerySingleTable(t *testing.T) {
	ctx := context.Background()
	fake, users, posts := newStores(t)

	// a user whose email is "7" shares the partition of user 7's posts
	user, err := entity.New[models.User](map[string]any{"email": "7", "name": "Seven"})
	require.NoError(t, err)
	require.NoError(t, users.Put(ctx, user))
	post, err := entity.New[models.Post](map[string]any{"datetime": when, "userId": 7, "title": "Greeting"})
	require.NoError(t, err)
	require.NoError(t, posts.Put(ctx, post))

	fake.items["USER#7\x00GHOST"] = map[string]types.AttributeValue{
		"PK":                &types.AttributeValueMemberS{Value: "USER#7"},
		"SK":                &types.AttributeValueMemberS{Value: "GHOST"},
		EntityTypeAttribute: &types.AttributeValueMemberS{Value: "Ghost"},
	}

	params := &storagemodels.QueryParams{
		KeyConditionExpression: "PK = :pk",
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "USER#7"},
		},
	}

	mixed, err := posts.Table().Query(ctx, params)
	require.NoError(t, err)
	require.Len(t, mixed, 2)
	assert.IsType(t, &models.Post{}, mixed[0])
	assert.IsType(t, &models.User{}, mixed[1])

	onlyPosts, err := posts.Query(ctx, params)
	require.NoError(t, err)
	require.Len(t, onlyPosts, 1)
	assert.Equal(t, "Greeting", onlyPosts[0].GetTitle())

	// the skipped item still counts against the limit
	params.Limit = aws.Int32(2)
	limited, err := posts.Table().Query(ctx, params)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.IsType(t, &models.Post{}, limited[0])

	_, err = posts.Table().Query(ctx, nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestGSIQueryBuilder(t *testing.T) {
	ctx := context.Background()
	_, _, posts := newStores(t)

	t.Run("BuildBasicGSIQuery", func(t *testing.T) {
		params, err := posts.QueryGSI().WithPartitionKey("Greeting").Build()
		require.NoError(t, err)
		assert.Equal(t, "GSI1", aws.ToString(params.IndexName))
		assert.Equal(t, "GSI1PK = :pk", params.KeyConditionExpression)
		assert.Equal(t, "TITLE#Greeting", params.KeyValue(":pk"))
		assert.Equal(t, "entities", params.TableName)
	})

	t.Run("BuildSortKeyQueries", func(t *testing.T) {
		params, err := posts.QueryGSI().WithPartitionKey("Greeting").WithSortKeyPrefix("2025-01").Build()
		require.NoError(t, err)
		assert.Equal(t, "GSI1PK = :pk AND begins_with(GSI1SK, :sk)", params.KeyConditionExpression)
		assert.Equal(t, "POST#2025-01", params.KeyValue(":sk"))

		params, err = posts.QueryGSI().WithPartitionKey("Greeting").WithSortKeyBetween("2024", "2026").WithLimit(5).Build()
		require.NoError(t, err)
		assert.Equal(t, "GSI1PK = :pk AND GSI1SK BETWEEN :sk AND :sk2", params.KeyConditionExpression)
		assert.Equal(t, "POST#2026", params.KeyValue(":sk2"))
		assert.Equal(t, int32(5), aws.ToInt32(params.Limit))

		params, err = posts.QueryGSI().WithPartitionKey("Greeting").WithSortKeyGreaterThan("2024").
			WithFilter("userId = :uid", map[string]types.AttributeValue{":uid": &types.AttributeValueMemberN{Value: "7"}}).Build()
		require.NoError(t, err)
		assert.Equal(t, "GSI1PK = :pk AND GSI1SK > :sk", params.KeyConditionExpression)
		assert.Equal(t, "userId = :uid", aws.ToString(params.FilterExpression))
		assert.Contains(t, params.ExpressionAttributeValues, ":uid")
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := posts.QueryGSI().Build()
		assert.True(t, errors.IsValidationError(err))
		_, err = posts.QueryGSI().OnIndex("GSI9").WithPartitionKey("x").Build()
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("Execute", func(t *testing.T) {
		for i, title := range []string{"Greeting", "Farewell", "Greeting"} {
			post, err := entity.New[models.Post](map[string]any{"datetime": when, "userId": i, "title": title})
			require.NoError(t, err)
			require.NoError(t, posts.Put(ctx, post))
		}

		found, err := posts.QueryByGSI1PK(ctx, "Greeting")
		require.NoError(t, err)
		assert.Len(t, found, 2)

		found, err = posts.QueryByGSI1PKAndSKPrefix(ctx, "Farewell", "2025")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, 1, found[0].GetUserId())
	})
}

func TestNestedEntities(t *testing.T) {
	ctx := context.Background()
	table := NewTable(newFakeDynamo(), "entities")
	threads, err := New[models.Thread](table)
	require.NoError(t, err)

	thread, err := entity.New[models.Thread](map[string]any{
		"title":  "intro",
		"author": map[string]any{"name": "Ann", "email": "ann@example.com"},
		"posts":  []any{map[string]any{"title": "first", "datetime": when}},
	})
	require.NoError(t, err)
	require.NoError(t, threads.Put(ctx, thread))

	got, err := threads.GetOne(ctx, "intro")
	require.NoError(t, err)
	require.NotNil(t, got.GetAuthor())
	assert.Equal(t, "ann@example.com", got.GetAuthor().GetEmail())
	require.Len(t, got.GetPosts(), 1)
	assert.Equal(t, "first", got.GetPosts()[0].GetTitle())

	e, err := table.Get(ctx, "Thread", "intro")
	require.NoError(t, err)
	assert.IsType(t, &models.Thread{}, e)
}

func TestNewRequiresRegistration(t *testing.T) {
	table := NewTable(newFakeDynamo(), "entities")

	_, err := New[models.Message](table)
	assert.True(t, errors.Is(err, errors.ErrNoIndexMap))

	type unregistered struct{ entity.Base }
	_, err = New[unregistered](table)
	assert.True(t, errors.IsValidationError(err))
}

func TestExpandMacros(t *testing.T) {
	indexMap := map[string]string{
		"PK":     "USER#{userId}",
		"SK":     "POST#{datetime}",
		"GSI1PK": "FLAG#{isAdmin}#{missing}",
		"STATIC": "CONST",
	}
	expanded, err := expandMacros(indexMap, map[string]any{
		"userId":   42,
		"datetime": when,
		"isAdmin":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"PK":     "USER#42",
		"SK":     "POST#" + whenText,
		"GSI1PK": "FLAG#true#",
		"STATIC": "CONST",
	}, expanded)

	assert.Equal(t, []string{"userId", "datetime"}, keyMacros(indexMap))

	values, err := keyValues(indexMap, "42|"+whenText)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"userId": "42", "datetime": whenText}, values)

	// a single key macro takes the whole key, separators included
	values, err = keyValues(map[string]string{"PK": "T#{title}", "SK": "T"}, "a|b")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "a|b"}, values)
}

func TestBuildUpdateExpression(t *testing.T) {
	expr, names, values, err := buildUpdateExpression(map[string]types.AttributeValue{
		"title":  &types.AttributeValueMemberS{Value: "t"},
		"GSI1PK": &types.AttributeValueMemberS{Value: "TITLE#t"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", expr)
	assert.Equal(t, map[string]string{"#f0": "GSI1PK", "#f1": "title"}, names)
	assert.Len(t, values, 2)

	_, _, _, err = buildUpdateExpression(nil)
	assert.Error(t, err)
}
