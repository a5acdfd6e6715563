/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/mitchellh/mapstructure"

	"github.com/suparena/entity/registry"
)

var (
	entityType   = reflect.TypeOf((*Entity)(nil)).Elem()
	dateTimeType = reflect.TypeOf(strfmt.DateTime{})
)

// coerce turns value into something a setter taking `to` accepts. Assignable
// values pass through untouched; everything else goes through mapstructure.
func coerce(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}

	out := reflect.New(to)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			entityHook,
			dateTimeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		Result:  out.Interface(),
		TagName: registry.TagName,
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := decoder.Decode(value); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}

// entityHook builds nested entities from maps.
func entityHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}

	var ptr reflect.Type
	switch {
	case to.Kind() == reflect.Pointer && to.Implements(entityType):
		ptr = to
	case to.Kind() == reflect.Struct && reflect.PointerTo(to).Implements(entityType):
		ptr = reflect.PointerTo(to)
	default:
		return data, nil
	}

	e := reflect.New(ptr.Elem()).Interface().(Entity)
	Init(e)
	if err := SetFromMap(e, m); err != nil {
		return nil, err
	}
	if to.Kind() == reflect.Struct {
		return reflect.ValueOf(e).Elem().Interface(), nil
	}
	return e, nil
}

func dateTimeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != dateTimeType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return strfmt.ParseDateTime(v)
	case time.Time:
		return strfmt.DateTime(v), nil
	}
	return data, nil
}
