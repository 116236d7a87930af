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

package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	jsv6 "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// draft07 is the $schema URI stamped on generated documents.
const draft07 = "https://json-schema.org/draft-07/schema#"

// metaschemaURL is the embedded draft-07 metaschema compiled by
// [Schema.VerifyDraft07].
const metaschemaURL = "http://json-schema.org/draft-07/schema#"

// Schema is a parsed or generated JSON Schema document. A Schema is
// immutable after construction and safe for concurrent Validate calls.
//
// The root node is either a JSON object tree (map[string]any from [Parse],
// an insertion-ordered object from [Generate]) and may contain boolean
// sub-schemas anywhere a schema is expected. Schemas that [Generate] derives
// from a struct type (or a pointer to one) additionally carry that source
// type, which enables [Schema.ValidateTyped]; schemas generated from other
// types carry none.
type Schema struct {
	root   any
	source reflect.Type
}

// JSONSchemaProvider is implemented by types that supply their own JSON
// Schema instead of the reflected one. The generator embeds the returned
// schema verbatim for fields of such types.
//
// This is the same interface rivaas.dev/validation consumes for its JSON
// Schema strategy, so one implementation serves both packages.
//
// Example:
//
//	func (Money) JSONSchema() (id string, schema string) {
//	    return "money-v1", `{"type": "string", "pattern": "^\\d+\\.\\d{2}$"}`
//	}
type JSONSchemaProvider interface {
	JSONSchema() (id string, schema string)
}

// Loader fetches the raw bytes of a schema document by URI, returning false
// when the URI is unknown. The validator itself never performs I/O; Loader
// exists for test harnesses that pre-populate cross-document references
// before validation begins.
type Loader func(uri string) ([]byte, bool)

// Parse constructs a [Schema] from JSON text. The document must be a JSON
// object or a boolean; anything else fails with [ErrUnsupportedSchema].
func Parse(data []byte) (*Schema, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	return FromValue(doc)
}

// MustParse is like [Parse] but panics on error. Use in tests and package
// variable initializers.
func MustParse(data []byte) *Schema {
	s, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("jsonschema.MustParse: %v", err))
	}

	return s
}

// ParseYAML constructs a [Schema] from a YAML document. YAML is a common
// authoring format for schemas embedded in API specifications; the document
// is decoded with gopkg.in/yaml.v3 and then treated exactly like a parsed
// JSON tree.
func ParseYAML(data []byte) (*Schema, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml schema: %w", err)
	}

	return FromValue(normalizeYAML(doc))
}

// FromValue constructs a [Schema] from a pre-parsed value tree. Accepted
// roots are map[string]any, the ordered objects produced by [Generate], and
// booleans: true is the accept-all schema {}, false is {"not": {}}.
func FromValue(v any) (*Schema, error) {
	switch root := v.(type) {
	case bool:
		if root {
			return &Schema{root: map[string]any{}}, nil
		}

		return &Schema{root: map[string]any{"not": map[string]any{}}}, nil
	case map[string]any:
		return &Schema{root: root}, nil
	case *schemaObject:
		return &Schema{root: root}, nil
	}

	return nil, fmt.Errorf("%T: %w", v, ErrUnsupportedSchema)
}

// Root returns the underlying root node of the document.
func (s *Schema) Root() any {
	return s.root
}

// SourceType returns the struct type this schema was generated from, or nil
// for parsed schemas and for schemas generated from non-struct types.
func (s *Schema) SourceType() reflect.Type {
	return s.source
}

// MarshalJSON serializes the document. Generated schemas marshal with their
// insertion order preserved; parsed schemas marshal with encoding/json's
// sorted map keys. Both are stable across runs.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.root)
}

// VerifyDraft07 validates this document against the draft-07 metaschema
// using the santhosh-tekuri/jsonschema compiler's embedded copy. It is the
// generator's self-check: every schema [Generate] produces should pass.
func (s *Schema) VerifyDraft07() error {
	compiler := jsv6.NewCompiler()

	meta, err := compiler.Compile(metaschemaURL)
	if err != nil {
		return fmt.Errorf("compile draft-07 metaschema: %w", err)
	}

	raw, err := json.Marshal(s.root)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("reparse schema: %w", err)
	}

	if err := meta.Validate(doc); err != nil {
		return fmt.Errorf("schema is not valid draft-07: %w", err)
	}

	return nil
}

// Diagnose validates instance and returns the collected report, or nil when
// the instance is valid. The result is the concrete [*Error] rather than an
// error interface, so callers can read its fields and test it directly
// against nil.
func Diagnose(s *Schema, instance any) *Error {
	err := s.Validate(instance)
	if err == nil {
		return nil
	}

	var verr *Error
	if errors.As(err, &verr) {
		return verr
	}

	return &Error{Fields: []FieldError{{Code: "validation_error", Message: err.Error()}}}
}

// normalizeYAML rewrites the map[any]any nodes yaml.v3 can produce for
// non-scalar keys into string-keyed maps so the rest of the package sees
// one object shape.
func normalizeYAML(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[k] = normalizeYAML(val)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}

		return out
	case []any:
		out := make([]any, len(n))
		for i, val := range n {
			out[i] = normalizeYAML(val)
		}

		return out
	}

	return v
}
