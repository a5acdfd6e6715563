/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/entity/codec"
	"github.com/suparena/entity/errors"
)

const (
	// EntityTypeAttribute is injected into every item with the registered type name.
	EntityTypeAttribute = "EntityType"

	// KeySeparator joins the values of a string key whose PK and SK templates
	// use more than one attribute, e.g. "7|2025-01-02T03:04:05.000Z".
	KeySeparator = "|"

	partitionKey = "PK"
	sortKey      = "SK"
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// keyMacros lists the distinct attributes named by the PK and SK templates,
// in order of appearance.
func keyMacros(indexMap map[string]string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, field := range []string{partitionKey, sortKey} {
		for _, m := range macroPattern.FindAllStringSubmatch(indexMap[field], -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}

func templateMacros(template string) []string {
	var names []string
	for _, m := range macroPattern.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}

// keyValues splits a string key into values for the key macros.
func keyValues(indexMap map[string]string, key string) (map[string]any, error) {
	macros := keyMacros(indexMap)
	values := make(map[string]any, len(macros))
	if len(macros) == 0 {
		return values, nil
	}

	parts := strings.SplitN(key, KeySeparator, len(macros))
	if len(macros) == 1 {
		parts = []string{key}
	}
	if len(parts) != len(macros) {
		return nil, errors.NewValidationError("key",
			fmt.Sprintf("expected %d values separated by %q for %s", len(macros), KeySeparator, strings.Join(macros, ", ")))
	}
	for i, m := range macros {
		values[m] = parts[i]
	}
	return values, nil
}

// expandMacros fills every template of indexMap with values. Missing values expand to "".
func expandMacros(indexMap map[string]string, values map[string]any) (map[string]string, error) {
	res := make(map[string]string, len(indexMap))
	for field, template := range indexMap {
		expanded, err := expandTemplate(template, values)
		if err != nil {
			return nil, errors.Wrapf(err, "expand %s", field)
		}
		res[field] = expanded
	}
	return res, nil
}

func expandTemplate(template string, values map[string]any) (string, error) {
	var firstErr error
	expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
		v, ok := values[strings.Trim(macro, "{}")]
		if !ok {
			return ""
		}
		s, err := macroValue(v)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return s
	})
	return expanded, firstErr
}

// macroValue renders v the way it is stored, so keys built from an entity and
// keys built from a string agree.
func macroValue(v any) (string, error) {
	av, err := attributevalue.Marshal(codec.Normalize(v))
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal key value")
	}

	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, nil
	case *types.AttributeValueMemberN:
		return tv.Value, nil
	case *types.AttributeValueMemberBOOL:
		return strconv.FormatBool(tv.Value), nil
	default:
		// null, binary, sets, lists and maps cannot be part of a key
		return "", nil
	}
}

// buildKeyFromExpanded builds a DynamoDB key from the expanded index map.
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk := expanded[partitionKey]
	sk := expanded[sortKey]
	if pk == "" || sk == "" {
		return nil, errors.NewValidationError("key", "expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		partitionKey: &types.AttributeValueMemberS{Value: pk},
		sortKey:      &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// keyFor builds the primary key of the item stored under a string key.
func keyFor(indexMap map[string]string, key string) (map[string]types.AttributeValue, error) {
	values, err := keyValues(indexMap, key)
	if err != nil {
		return nil, err
	}
	expanded, err := expandMacros(map[string]string{
		partitionKey: indexMap[partitionKey],
		sortKey:      indexMap[sortKey],
	}, values)
	if err != nil {
		return nil, err
	}
	return buildKeyFromExpanded(expanded)
}
