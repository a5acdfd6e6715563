/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/suparena/entity"
	"github.com/suparena/entity/errors"
)

// Format is a serialization format for exported entities.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	MsgPack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, MsgPack}

// ParseFormat parses a format name. Common aliases are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "mpk", "mp":
		return MsgPack, nil
	}
	return "", errors.NewValidationError("format", fmt.Sprintf("unsupported format %q", s))
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Marshal exports e and encodes it in f, keeping attribute order.
func Marshal(e entity.Entity, f Format) ([]byte, error) {
	om, err := entity.ToOrderedMap(e)
	if err != nil {
		return nil, err
	}
	return Encode(Normalize(om), f)
}

// Encode encodes an already exported value in f.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case JSON:
		out, err := json.Marshal(v)
		return out, errors.Wrap(err, "encode json")

	case YAML:
		out, err := yaml.Marshal(v)
		return out, errors.Wrap(err, "encode yaml")

	case MsgPack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := encodeMsgpack(enc, v); err != nil {
			return nil, errors.Wrap(err, "encode msgpack")
		}
		return buf.Bytes(), nil
	}
	return nil, errors.NewValidationError("format", fmt.Sprintf("unsupported format %q", f))
}

// ordered maps are written pair by pair so msgpack keeps attribute order
func encodeMsgpack(enc *msgpack.Encoder, v any) error {
	switch t := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if err := enc.EncodeMapLen(t.Len()); err != nil {
			return err
		}
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			if err := enc.EncodeString(pair.Key); err != nil {
				return err
			}
			if err := encodeMsgpack(enc, pair.Value); err != nil {
				return err
			}
		}
		return nil

	case []any:
		if err := enc.EncodeArrayLen(len(t)); err != nil {
			return err
		}
		for _, el := range t {
			if err := encodeMsgpack(enc, el); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(v)
}

// Decode parses data in f into a generic map, suitable for entity.SetFromMap.
func Decode(data []byte, f Format) (map[string]any, error) {
	var m map[string]any
	switch f {
	case JSON:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "decode json")
		}

	case YAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}

	case MsgPack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.UseLooseInterfaceDecoding(true)
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "decode msgpack")
		}

	default:
		return nil, errors.NewValidationError("format", fmt.Sprintf("unsupported format %q", f))
	}
	return m, nil
}

// DecodeOrdered is Decode keeping the document's top-level key order. msgpack
// maps are read into a plain map first, so their keys come back sorted.
func DecodeOrdered(data []byte, f Format) (*orderedmap.OrderedMap[string, any], error) {
	om := orderedmap.New[string, any]()
	switch f {
	case JSON:
		if err := json.Unmarshal(data, om); err != nil {
			return nil, errors.Wrap(err, "decode json")
		}
		return om, nil

	case YAML:
		if err := yaml.Unmarshal(data, om); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
		return om, nil
	}

	m, err := Decode(data, f)
	if err != nil {
		return nil, err
	}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		om.Set(key, m[key])
	}
	return om, nil
}

// Unmarshal decodes data in f and loads it into e, attribute by attribute
// in document order.
func Unmarshal(data []byte, f Format, e entity.Entity) error {
	om, err := DecodeOrdered(data, f)
	if err != nil {
		return err
	}
	return entity.SetFromOrderedMap(e, om)
}

// Normalize replaces encoding.TextMarshaler values (date-times, UUIDs, ...)
// with their text form throughout an exported value, so every format and
// storage backend sees plain strings.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case *orderedmap.OrderedMap[string, any]:
		out := orderedmap.New[string, any](t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, Normalize(pair.Value))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = Normalize(el)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Normalize(el)
		}
		return out
	case encoding.TextMarshaler:
		text, err := t.MarshalText()
		if err != nil {
			return v
		}
		return string(text)
	}
	return v
}
