// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !integration

package jsonschema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateJSON generates a schema and returns its JSON text.
func generateJSON(t *testing.T, template any, opts ...GenerateOption) string {
	t.Helper()

	schema, err := Generate(template, opts...)
	require.NoError(t, err)

	raw, err := json.Marshal(schema)
	require.NoError(t, err)

	return string(raw)
}

func TestGenerate_TypeMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template any
		opts     []GenerateOption
		want     string
	}{
		{
			name:     "bool",
			template: true,
			opts:     []GenerateOption{WithTitle("Flag")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"Flag","type":"boolean"}`,
		},
		{
			name:     "integer widths collapse",
			template: int16(0),
			opts:     []GenerateOption{WithTitle("N")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"N","type":"integer"}`,
		},
		{
			name:     "float is number",
			template: float32(0),
			opts:     []GenerateOption{WithTitle("N")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"N","type":"number"}`,
		},
		{
			name:     "string",
			template: "",
			opts:     []GenerateOption{WithTitle("S")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"S","type":"string"}`,
		},
		{
			name:     "slice",
			template: []string{},
			opts:     []GenerateOption{WithTitle("L")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"L","type":"array","items":{"type":"string"}}`,
		},
		{
			name:     "fixed array is a bounded tuple",
			template: [3]int{},
			opts:     []GenerateOption{WithTitle("T")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"T","type":"array","items":{"type":"integer"},"minItems":3,"maxItems":3}`,
		},
		{
			name:     "string-keyed map",
			template: map[string]int{},
			opts:     []GenerateOption{WithTitle("M")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"M","type":"object","additionalProperties":{"type":"integer"}}`,
		},
		{
			name:     "map of any leaves values open",
			template: map[string]any{},
			opts:     []GenerateOption{WithTitle("M")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"M","type":"object"}`,
		},
		{
			name:     "set",
			template: map[string]struct{}{},
			opts:     []GenerateOption{WithTitle("Set")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"Set","type":"array","uniqueItems":true,"items":{"type":"string"}}`,
		},
		{
			name:     "time is date-time string",
			template: time.Time{},
			opts:     []GenerateOption{WithTitle("When")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"When","type":"string","format":"date-time"}`,
		},
		{
			name:     "bytes are base64 string",
			template: []byte{},
			opts:     []GenerateOption{WithTitle("Blob")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"Blob","type":"string","contentEncoding":"base64"}`,
		},
		{
			name:     "nil is accept-all",
			template: nil,
			opts:     []GenerateOption{WithTitle("Any")},
			want:     `{"$schema":"https://json-schema.org/draft-07/schema#","title":"Any"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.JSONEq(t, tt.want, generateJSON(t, tt.template, tt.opts...))
		})
	}
}

type genUser struct {
	ID    int    `json:"id" jsonschema:"minimum=1"`
	Name  string `json:"name" jsonschema:"minLength=1"`
	Email string `json:"email" jsonschema:"format=email"`
	Age   *int   `json:"age"`
}

func TestGenerate_Record(t *testing.T) {
	t.Parallel()

	want := `{
		"$schema": "https://json-schema.org/draft-07/schema#",
		"title": "genUser",
		"type": "object",
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"name": {"type": "string", "minLength": 1},
			"email": {"type": "string", "format": "email"},
			"age": {"type": ["integer", "null"]}
		},
		"required": ["id", "name", "email"]
	}`

	assert.JSONEq(t, want, generateJSON(t, genUser{}))
}

func TestGenerate_RecordRoundTrip(t *testing.T) {
	t.Parallel()

	schema, err := Generate(genUser{}, WithTitle("User"))
	require.NoError(t, err)

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		doc := mustJSON(t, `{"id":1,"name":"Alice","email":"alice@example.com","age":30}`)
		assert.NoError(t, schema.Validate(doc))
	})

	t.Run("three violations at three paths", func(t *testing.T) {
		t.Parallel()

		doc := mustJSON(t, `{"id":0,"name":"","email":"x","age":null}`)
		err := schema.Validate(doc)

		var verr *Error
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 3)
		assert.True(t, verr.Has("id"))
		assert.True(t, verr.Has("name"))
		assert.True(t, verr.Has("email"))
	})

	t.Run("typed instances", func(t *testing.T) {
		t.Parallel()

		age := 30
		assert.NoError(t, schema.ValidateTyped(genUser{ID: 1, Name: "Alice", Email: "a@b.co", Age: &age}))
		assert.NoError(t, schema.ValidateTyped(&genUser{ID: 1, Name: "Alice", Email: "a@b.co"}))
		assert.Error(t, schema.ValidateTyped(genUser{ID: 0, Name: "", Email: "x"}))
	})

	t.Run("typed entry rejects foreign types", func(t *testing.T) {
		t.Parallel()

		err := schema.ValidateTyped(struct{ ID int }{ID: 1})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})
}

type genNode struct {
	Value int      `json:"value"`
	Next  *genNode `json:"next"`
}

type genTreeA struct {
	Name string      `json:"name"`
	B    *genTreeB   `json:"b"`
	More []*genTreeB `json:"more"`
}

type genTreeB struct {
	A *genTreeA `json:"a"`
}

func TestGenerate_Refs(t *testing.T) {
	t.Parallel()

	t.Run("self-recursive type", func(t *testing.T) {
		t.Parallel()

		schema, err := Generate(genNode{}, WithRefs(true))
		require.NoError(t, err)

		defs, ok := nodeGet(schema.Root(), "definitions")
		require.True(t, ok)
		assert.Len(t, nodeKeys(defs), 1)

		rootRef, ok := nodeGet(schema.Root(), "$ref")
		require.True(t, ok)
		assert.Equal(t, "#/definitions/jsonschema.genNode", rootRef)

		assert.NoError(t, schema.Validate(mustJSON(t, `{"value":1,"next":{"value":2,"next":null}}`)))
		assert.NoError(t, schema.ValidateTyped(genNode{Value: 1, Next: &genNode{Value: 2}}))
		assert.Error(t, schema.Validate(mustJSON(t, `{"value":"x"}`)))
	})

	t.Run("mutually recursive types", func(t *testing.T) {
		t.Parallel()

		schema, err := Generate(genTreeA{}, WithRefs(true))
		require.NoError(t, err)

		defs, ok := nodeGet(schema.Root(), "definitions")
		require.True(t, ok)
		assert.ElementsMatch(t,
			[]string{"jsonschema.genTreeA", "jsonschema.genTreeB"},
			nodeKeys(defs))

		assert.NoError(t, schema.Validate(mustJSON(t, `{"name":"root","b":{"a":null},"more":[{"a":{"name":"n","b":null,"more":[]}}]}`)))
	})

	t.Run("every ref resolves against the root", func(t *testing.T) {
		t.Parallel()

		schema, err := Generate(genTreeA{}, WithRefs(true))
		require.NoError(t, err)

		raw, err := json.Marshal(schema)
		require.NoError(t, err)

		var doc any
		require.NoError(t, json.Unmarshal(raw, &doc))

		for _, ref := range collectRefs(doc) {
			_, err := ResolveRef(ref, doc)
			assert.NoError(t, err, "ref %s must resolve", ref)
		}
	})

	t.Run("defs key can be switched", func(t *testing.T) {
		t.Parallel()

		schema, err := Generate(genNode{}, WithRefs(true), WithDefsKey("$defs"))
		require.NoError(t, err)

		_, ok := nodeGet(schema.Root(), "$defs")
		assert.True(t, ok)

		rootRef, _ := nodeGet(schema.Root(), "$ref")
		assert.Equal(t, "#/$defs/jsonschema.genNode", rootRef)

		assert.NoError(t, schema.Validate(mustJSON(t, `{"value":1,"next":null}`)))
	})

	t.Run("recursion without refs degrades to accept-all", func(t *testing.T) {
		t.Parallel()

		schema, err := Generate(genNode{})
		require.NoError(t, err)
		assert.NoError(t, schema.Validate(mustJSON(t, `{"value":1,"next":{"value":"anything goes here"}}`)))
	})
}

// collectRefs gathers every $ref string in a parsed schema document.
func collectRefs(node any) []string {
	var refs []string

	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			if k == "$ref" {
				if s, ok := v.(string); ok {
					refs = append(refs, s)
				}
				continue
			}
			refs = append(refs, collectRefs(v)...)
		}
	case []any:
		for _, v := range n {
			refs = append(refs, collectRefs(v)...)
		}
	}

	return refs
}

func TestGenerate_Determinism(t *testing.T) {
	t.Parallel()

	first := generateJSON(t, genTreeA{}, WithRefs(true), WithAdditionalProperties(false))
	second := generateJSON(t, genTreeA{}, WithRefs(true), WithAdditionalProperties(false))

	assert.Equal(t, first, second, "generation must be byte-stable")
}

func TestGenerate_Envelope(t *testing.T) {
	t.Parallel()

	schema, err := Generate(genUser{},
		WithTitle("Customer"),
		WithDescription("A customer record"),
		WithID("https://example.com/customer.json"),
		WithDraft("https://json-schema.org/draft-07/schema#"),
	)
	require.NoError(t, err)

	root := schema.Root()
	title, _ := nodeGet(root, "title")
	assert.Equal(t, "Customer", title)
	desc, _ := nodeGet(root, "description")
	assert.Equal(t, "A customer record", desc)
	id, _ := nodeGet(root, "$id")
	assert.Equal(t, "https://example.com/customer.json", id)

	keys := nodeKeys(root)
	require.GreaterOrEqual(t, len(keys), 2)
	assert.Equal(t, "$schema", keys[0], "$schema leads the document")
}

func TestGenerate_AllFieldsRequired(t *testing.T) {
	t.Parallel()

	schema, err := Generate(genUser{}, WithAllFieldsRequired(true))
	require.NoError(t, err)

	required, ok := nodeList(schema.Root(), "required")
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"id", "name", "email", "age"}, required)
}

func TestGenerate_AdditionalPropertiesStamp(t *testing.T) {
	t.Parallel()

	type inner struct {
		X int `json:"x"`
	}
	type outer struct {
		In   inner          `json:"in"`
		List []inner        `json:"list"`
		Map  map[string]int `json:"map"`
	}

	schema, err := Generate(outer{}, WithAdditionalProperties(false))
	require.NoError(t, err)

	root := schema.Root()
	ap, ok := nodeGet(root, "additionalProperties")
	require.True(t, ok)
	assert.Equal(t, false, ap)

	props, _ := nodeGet(root, "properties")
	in, _ := nodeGet(props, "in")
	inAP, ok := nodeGet(in, "additionalProperties")
	require.True(t, ok)
	assert.Equal(t, false, inAP)

	list, _ := nodeGet(props, "list")
	items, _ := nodeGet(list, "items")
	itemsAP, ok := nodeGet(items, "additionalProperties")
	require.True(t, ok)
	assert.Equal(t, false, itemsAP)

	// A map's value schema must survive the stamp.
	m, _ := nodeGet(props, "map")
	mAP, ok := nodeGet(m, "additionalProperties")
	require.True(t, ok)
	assert.True(t, isNode(mAP), "map value schema must not be overwritten")
}

func TestGenerate_StampReachesDefinitions(t *testing.T) {
	t.Parallel()

	schema, err := Generate(genNode{}, WithRefs(true), WithAdditionalProperties(false))
	require.NoError(t, err)

	defs, ok := nodeGet(schema.Root(), "definitions")
	require.True(t, ok)
	node, ok := nodeGet(defs, "jsonschema.genNode")
	require.True(t, ok)

	ap, ok := nodeGet(node, "additionalProperties")
	require.True(t, ok)
	assert.Equal(t, false, ap)

	assert.Error(t, schema.Validate(mustJSON(t, `{"value":1,"extra":2}`)))
}

type moneyAmount struct {
	Cents int64
}

func (moneyAmount) JSONSchema() (string, string) {
	return "money-v1", `{"type":"string","pattern":"^\\d+\\.\\d{2}$"}`
}

type badProvider struct{}

func (badProvider) JSONSchema() (string, string) {
	return "bad-v1", `{not json`
}

func TestGenerate_Provider(t *testing.T) {
	t.Parallel()

	type order struct {
		Total moneyAmount `json:"total"`
	}

	schema, err := Generate(order{})
	require.NoError(t, err)

	assert.True(t, schema.IsValid(mustJSON(t, `{"total":"12.50"}`)))
	assert.False(t, schema.IsValid(mustJSON(t, `{"total":"12.5"}`)))
}

func TestGenerate_ProviderErrors(t *testing.T) {
	t.Parallel()

	type holder struct {
		B badProvider `json:"b"`
	}

	// Lenient mode degrades to accept-all.
	schema, err := Generate(holder{})
	require.NoError(t, err)
	assert.True(t, schema.IsValid(mustJSON(t, `{"b":"anything"}`)))

	// Strict mode surfaces the broken provider.
	_, err = Generate(holder{}, WithStrictTags(true))
	require.Error(t, err)
}

func TestGenerate_EmbeddedFields(t *testing.T) {
	t.Parallel()

	type base struct {
		ID int `json:"id"`
	}
	type derived struct {
		base

		Name string `json:"name"`
	}

	schema, err := Generate(derived{})
	require.NoError(t, err)

	props, ok := nodeGet(schema.Root(), "properties")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"id", "name"}, nodeKeys(props))
}

func TestGenerate_VerifiesAgainstMetaschema(t *testing.T) {
	t.Parallel()

	templates := []struct {
		name     string
		template any
		opts     []GenerateOption
	}{
		{name: "record", template: genUser{}},
		{name: "recursive with refs", template: genNode{}, opts: []GenerateOption{WithRefs(true)}},
		{name: "mutual recursion stamped", template: genTreeA{}, opts: []GenerateOption{WithRefs(true), WithAdditionalProperties(false)}},
		{name: "collections", template: map[string][]*genUser{}},
	}

	for _, tt := range templates {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			schema, err := Generate(tt.template, tt.opts...)
			require.NoError(t, err)
			assert.NoError(t, schema.VerifyDraft07())
		})
	}
}

func TestGenerate_InvalidDefsKey(t *testing.T) {
	t.Parallel()

	_, err := Generate(genUser{}, WithDefsKey("defs"))
	require.Error(t, err)
}

func TestMustGenerate_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustGenerate(genUser{}, WithDefsKey("nope"))
	})
}
