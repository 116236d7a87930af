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
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// fieldTags is the annotation bag of one struct field: the control entries
// (ignore, rename, required) resolved during parsing, plus the ordered
// keyword entries applied to the field schema afterwards.
type fieldTags struct {
	ignore   bool
	name     string
	required *bool
	entries  []tagEntry
}

// tagEntry is one key=value pair from a jsonschema struct tag.
type tagEntry struct {
	key   string
	value string
}

// jsonTypeNames are the primitive names accepted by the type-valued
// annotations (oneOf, anyOf, not, contains).
var jsonTypeNames = map[string]bool{
	"null": true, "boolean": true, "integer": true, "number": true,
	"string": true, "array": true, "object": true,
}

// parseFieldTags reads the json and jsonschema tags of a field into its
// annotation bag. The JSON name comes from the json tag; a name= entry in
// the jsonschema tag overrides it. In strict mode a malformed entry is an
// error; otherwise it is skipped.
func parseFieldTags(f reflect.StructField, strict bool) (fieldTags, error) {
	tags := fieldTags{name: jsonFieldName(f.Tag.Get("json"), f.Name)}

	jsTag := f.Tag.Get("json")
	if jsTag == "-" {
		tags.ignore = true
		return tags, nil
	}

	raw, ok := f.Tag.Lookup("jsonschema")
	if !ok || raw == "" {
		return tags, nil
	}
	if raw == "-" {
		tags.ignore = true
		return tags, nil
	}

	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, "=")
		switch {
		case key == "required" && !hasValue:
			tags.required = boolPtr(true)
		case key == "optional" && !hasValue:
			tags.required = boolPtr(false)
		case key == "required" && hasValue:
			b, err := strconv.ParseBool(value)
			if err != nil {
				if strict {
					return tags, fmt.Errorf("field %s: invalid required value %q", f.Name, value)
				}
				continue
			}
			tags.required = &b
		case key == "name" && hasValue:
			tags.name = value
		case key == "uniqueItems" && !hasValue:
			tags.entries = append(tags.entries, tagEntry{key: "uniqueItems", value: "true"})
		case hasValue:
			tags.entries = append(tags.entries, tagEntry{key: key, value: value})
		default:
			// Unrecognized bare flags are ignored.
			if strict {
				return tags, fmt.Errorf("field %s: unknown annotation %q", f.Name, key)
			}
		}
	}

	return tags, nil
}

func boolPtr(b bool) *bool {
	return &b
}

// applyAnnotations copies the keyword entries of the annotation bag onto the
// field schema and returns the decorated node. A $ref node never carries
// sibling keywords, so annotations on a referenced type wrap the reference
// in an allOf instead.
func applyAnnotations(node any, f reflect.StructField, tags fieldTags, strict bool) (any, error) {
	if len(tags.entries) == 0 {
		return node, nil
	}

	target, ok := node.(*schemaObject)
	if !ok || hasKey(target, "$ref") {
		wrap := newSchemaObject()
		wrap.Set("allOf", []any{node})
		target = wrap
		node = wrap
	}

	for _, entry := range tags.entries {
		if err := applyEntry(target, entry); err != nil {
			if strict {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
	}

	return node, nil
}

func hasKey(node *schemaObject, key string) bool {
	_, ok := node.Get(key)
	return ok
}

// applyEntry writes a single annotation onto the field schema. An
// unrecognized key is ignored; a recognized key with an unparseable value
// is an error (reported only in strict mode by the caller).
func applyEntry(s *schemaObject, entry tagEntry) error {
	switch entry.key {
	case "minLength", "maxLength", "minItems", "maxItems", "minProperties", "maxProperties":
		n, err := strconv.Atoi(entry.value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q", entry.key, entry.value)
		}
		s.Set(entry.key, n)

	case "minimum", "maximum", "multipleOf":
		x, err := strconv.ParseFloat(entry.value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value %q", entry.key, entry.value)
		}
		s.Set(entry.key, x)

	case "exclusiveMinimum", "exclusiveMaximum":
		// Numbers are the draft-06 standalone bound; "true"/"false" keep the
		// draft-04 modifier form. Numeric parsing goes first so that =0 and
		// =1 are bounds, not booleans.
		if x, err := strconv.ParseFloat(entry.value, 64); err == nil {
			s.Set(entry.key, x)
			return nil
		}
		b, err := strconv.ParseBool(entry.value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q", entry.key, entry.value)
		}
		s.Set(entry.key, b)

	case "uniqueItems":
		b, err := strconv.ParseBool(entry.value)
		if err != nil {
			return fmt.Errorf("invalid uniqueItems value %q", entry.value)
		}
		s.Set("uniqueItems", b)

	case "pattern", "format", "title", "description":
		s.Set(entry.key, entry.value)

	case "default", "const":
		s.Set(entry.key, tagScalar(entry.value))

	case "example":
		examples, _ := s.Get("examples")
		list, _ := examples.([]any)
		s.Set("examples", append(list, tagScalar(entry.value)))

	case "enum":
		values := strings.Split(entry.value, ";")
		list := make([]any, 0, len(values))
		for _, v := range values {
			list = append(list, tagScalar(v))
		}
		s.Set("enum", list)

	case "oneof_type", "anyof_type":
		keyword := "oneOf"
		if entry.key == "anyof_type" {
			keyword = "anyOf"
		}
		variants, err := typeVariants(entry.value)
		if err != nil {
			return err
		}
		s.Set(keyword, variants)

	case "not", "contains":
		if !jsonTypeNames[entry.value] {
			return fmt.Errorf("invalid %s type %q", entry.key, entry.value)
		}
		sub := newSchemaObject()
		sub.Set("type", entry.value)
		s.Set(entry.key, sub)

	default:
		// Unrecognized annotation keys are ignored.
	}

	return nil
}

// typeVariants expands a semicolon-separated list of primitive type names
// into a list of {"type": name} schemas.
func typeVariants(value string) ([]any, error) {
	names := strings.Split(value, ";")
	out := make([]any, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if !jsonTypeNames[name] {
			return nil, fmt.Errorf("invalid type name %q", name)
		}
		sub := newSchemaObject()
		sub.Set("type", name)
		out = append(out, sub)
	}

	return out, nil
}

// tagScalar interprets an annotation value as a JSON scalar: numbers and
// booleans parse as themselves, anything else is a string.
func tagScalar(value string) any {
	var v any
	if err := json.Unmarshal([]byte(value), &v); err == nil {
		switch v.(type) {
		case float64, bool, string, nil:
			return v
		}
	}

	return value
}
