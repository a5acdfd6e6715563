/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/suparena/entity"
	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		wantErr  bool
	}{
		{"json", JSON, false},
		{"JSON", JSON, false},
		{"yml", YAML, false},
		{" yaml ", YAML, false},
		{"msgpack", MsgPack, false},
		{"mpk", MsgPack, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}

	f, err := FormatFromPath("testdata/user.yml")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)
}

func TestMarshalJSONKeepsOrder(t *testing.T) {
	user, err := entity.New[models.User](map[string]any{"name": "John", "email": "john@example.com"})
	require.NoError(t, err)

	data, err := Marshal(user, JSON)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"John","email":"john@example.com","isAdmin":false,"disabled":false}`, string(data))
}

func TestMarshalYAML(t *testing.T) {
	user, err := entity.New[models.User](map[string]any{"name": "John", "isAdmin": true})
	require.NoError(t, err)

	data, err := Marshal(user, YAML)
	require.NoError(t, err)
	assert.Equal(t, "name: John\nemail: \"\"\nisAdmin: true\ndisabled: false\n", string(data))
}

func TestRoundTrip(t *testing.T) {
	when := strfmt.DateTime(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))

	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			post, err := entity.New[models.Post](map[string]any{
				"datetime": when,
				"userId":   7,
				"text":     "hello",
				"title":    "Greeting",
				"labels":   []string{"a", "b"},
			})
			require.NoError(t, err)

			data, err := Marshal(post, f)
			require.NoError(t, err)

			decoded := &models.Post{}
			require.NoError(t, Unmarshal(data, f, decoded))
			assert.True(t, time.Time(when).Equal(time.Time(decoded.GetDatetime())))
			assert.Equal(t, 7, decoded.GetUserId())
			assert.Equal(t, "hello", decoded.GetText())
			assert.Equal(t, "Greeting", decoded.GetTitle())
			assert.Equal(t, []string{"a", "b"}, decoded.GetLabels())
		})
	}
}

func TestRoundTripNested(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			thread, err := entity.New[models.Thread](map[string]any{
				"title":  "intro",
				"author": map[string]any{"name": "Ann"},
				"posts":  []any{map[string]any{"title": "first"}},
			})
			require.NoError(t, err)

			data, err := Marshal(thread, f)
			require.NoError(t, err)

			decoded := &models.Thread{}
			require.NoError(t, Unmarshal(data, f, decoded))
			require.NotNil(t, decoded.GetAuthor())
			assert.Equal(t, "Ann", decoded.GetAuthor().GetName())
			require.Len(t, decoded.GetPosts(), 1)
			assert.Equal(t, "first", decoded.GetPosts()[0].GetTitle())
		})
	}
}

func TestUnmarshalUnknownAttribute(t *testing.T) {
	user := models.NewCustomUser()
	err := Unmarshal([]byte(`{"name":"John","nickname":"JJ"}`), JSON, user)
	require.Error(t, err)
	assert.True(t, errors.IsUnknownAttribute(err))
	assert.True(t, errors.Is(err, models.ErrCustom))
}

func TestUnmarshalDocumentOrder(t *testing.T) {
	// "nickname" comes first in the document, so "name" is never applied
	for _, tt := range []struct {
		f    Format
		data string
	}{
		{JSON, `{"nickname":"JJ","name":"John"}`},
		{YAML, "nickname: JJ\nname: John\n"},
	} {
		t.Run(string(tt.f), func(t *testing.T) {
			user := models.NewCustomUser()
			err := Unmarshal([]byte(tt.data), tt.f, user)
			assert.True(t, errors.IsUnknownAttribute(err))
			assert.Empty(t, user.GetName())
		})
	}

	user := models.NewCustomUser()
	err := Unmarshal([]byte(`{"name":"John","nickname":"JJ"}`), JSON, user)
	assert.True(t, errors.IsUnknownAttribute(err))
	assert.Equal(t, "John", user.GetName())
}

func TestDecodeOrdered(t *testing.T) {
	om, err := DecodeOrdered([]byte(`{"title":"t","userId":1,"author":{"name":"Ann"}}`), JSON)
	require.NoError(t, err)
	var keys []string
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"title", "userId", "author"}, keys)
	author, _ := om.Get("author")
	assert.Equal(t, map[string]any{"name": "Ann"}, author)

	om, err = DecodeOrdered([]byte("text: hi\ndatetime: now\n"), YAML)
	require.NoError(t, err)
	assert.Equal(t, "text", om.Oldest().Key)

	packed, err := Encode(map[string]any{"b": 1, "a": 2}, MsgPack)
	require.NoError(t, err)
	om, err = DecodeOrdered(packed, MsgPack)
	require.NoError(t, err)
	assert.Equal(t, "a", om.Oldest().Key)

	_, err = DecodeOrdered([]byte(`{`), JSON)
	assert.Error(t, err)
	_, err = DecodeOrdered([]byte("- a\n- b\n"), YAML)
	assert.Error(t, err)
	_, err = DecodeOrdered([]byte(`{}`), Format("xml"))
	assert.True(t, errors.IsValidationError(err))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{`), JSON)
	assert.Error(t, err)
	_, err = Decode([]byte("a: [1, 2"), YAML)
	assert.Error(t, err)
	_, err = Decode([]byte{0xc1}, MsgPack)
	assert.Error(t, err)
	_, err = Decode([]byte(`{}`), Format("xml"))
	assert.True(t, errors.IsValidationError(err))
}

func TestNormalize(t *testing.T) {
	when := strfmt.DateTime(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))

	om := orderedmap.New[string, any]()
	om.Set("when", when)
	om.Set("nested", map[string]any{"at": when, "n": 1})
	om.Set("list", []any{when, "x"})

	out, ok := Normalize(om).(*orderedmap.OrderedMap[string, any])
	require.True(t, ok)

	v, _ := out.Get("when")
	assert.Equal(t, "2025-01-02T03:04:05.000Z", v)
	v, _ = out.Get("nested")
	assert.Equal(t, map[string]any{"at": "2025-01-02T03:04:05.000Z", "n": 1}, v)
	v, _ = out.Get("list")
	assert.Equal(t, []any{"2025-01-02T03:04:05.000Z", "x"}, v)

	// the input is left untouched
	v, _ = om.Get("when")
	assert.Equal(t, when, v)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"when":"2025-01-02T03:04:05.000Z"`)
}
