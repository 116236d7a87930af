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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// schemaObject is the insertion-ordered object used for generated schema
// nodes. Parsed schemas use plain map[string]any; the node accessors below
// handle both representations.
type schemaObject = orderedmap.OrderedMap[string, any]

func newSchemaObject() *schemaObject {
	return orderedmap.New[string, any]()
}

// nodeGet looks up a key in a schema node, which may be a parsed
// map[string]any or a generated ordered object.
func nodeGet(node any, key string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[key]
		return v, ok
	case *schemaObject:
		return n.Get(key)
	}

	return nil, false
}

// nodeKeys returns the keys of a schema node. Ordered objects keep insertion
// order; plain maps are sorted so traversal stays deterministic.
func nodeKeys(node any) []string {
	switch n := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		return keys
	case *schemaObject:
		keys := make([]string, 0, n.Len())
		for pair := n.Oldest(); pair != nil; pair = pair.Next() {
			keys = append(keys, pair.Key)
		}

		return keys
	}

	return nil
}

// nodeSet writes a key into a schema node in either representation.
func nodeSet(node any, key string, v any) {
	switch n := node.(type) {
	case map[string]any:
		n[key] = v
	case *schemaObject:
		n.Set(key, v)
	}
}

// isNode reports whether v is a schema object node in either representation.
func isNode(v any) bool {
	switch v.(type) {
	case map[string]any, *schemaObject:
		return true
	}

	return false
}

// nodeString reads a string-valued key from a schema node.
func nodeString(node any, key string) (string, bool) {
	v, ok := nodeGet(node, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)

	return s, ok
}

// nodeNumber reads a numeric key from a schema node.
func nodeNumber(node any, key string) (float64, bool) {
	v, ok := nodeGet(node, key)
	if !ok {
		return 0, false
	}

	return numberValue(v)
}

// nodeList reads an array-valued key from a schema node.
func nodeList(node any, key string) ([]any, bool) {
	v, ok := nodeGet(node, key)
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)

	return l, ok
}

// isNull reports whether v is JSON null: nil itself, or a nil pointer, map,
// slice or interface from a reflected instance.
func isNull(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}

	return false
}

// deref unwraps pointers and interfaces so the keyword checks see the
// underlying value. Nil pointers are left alone; isNull handles them.
func deref(v any) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}

	return rv.Interface()
}

// isBool reports whether v is a boolean, following named bool types.
func isBool(v any) bool {
	if v == nil {
		return false
	}

	return reflect.ValueOf(v).Kind() == reflect.Bool
}

// boolValue returns the boolean in v, if any.
func boolValue(v any) (bool, bool) {
	if v == nil {
		return false, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return false, false
	}

	return rv.Bool(), true
}

// numberValue extracts a float64 from any numeric value: JSON numbers
// (float64, json.Number) and every Go numeric kind from reflected
// instances. Booleans are never numbers.
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}

		return f, true
	case nil:
		return 0, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}

	return 0, false
}

// isIntegral reports whether v is a number with no fractional part.
func isIntegral(v any) bool {
	f, ok := numberValue(v)
	if !ok {
		return false
	}

	return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Trunc(f) == f
}

// stringValue extracts a string from v. []byte values are reported as their
// base64 encoding, matching how encoding/json marshals them.
func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return base64.StdEncoding.EncodeToString(s), true
	case time.Time:
		return s.Format(time.RFC3339Nano), true
	case json.Number:
		return "", false
	case nil:
		return "", false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}

	return "", false
}

// arrayValue materializes v as a []any if it is an ordered sequence.
// Reflected slices and fixed-size arrays qualify; map[E]struct{} sets are
// flattened to their sorted key list. []byte is a string, not an array.
func arrayValue(v any) ([]any, bool) {
	switch a := v.(type) {
	case []any:
		return a, true
	case []byte:
		return nil, false
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = rv.Index(i).Interface()
		}

		return out, true
	case reflect.Map:
		if !isSetType(rv.Type()) {
			return nil, false
		}
		out := make([]any, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			out = append(out, k.Interface())
		}
		sort.Slice(out, func(i, j int) bool {
			return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
		})

		return out, true
	}

	return nil, false
}

// isSetType reports whether t is map[E]struct{}, the idiomatic Go set.
func isSetType(t reflect.Type) bool {
	return t.Kind() == reflect.Map &&
		t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

// isObjectValue reports whether v is a mapping for the purposes of the
// object keywords: a JSON object, a string-keyed Go map, or a struct
// instance. Sets (map[E]struct{}) count as arrays, not objects.
func isObjectValue(v any) bool {
	switch v.(type) {
	case map[string]any:
		return true
	case time.Time:
		return false
	case nil:
		return false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String && !isSetType(rv.Type())
	case reflect.Struct:
		return true
	}

	return false
}

// objectKeys returns the property names of an object value: sorted keys for
// maps, declared field order for structs.
func objectKeys(v any) []string {
	if m, ok := v.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		return keys
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)

		return keys
	case reflect.Struct:
		fields := structFields(rv.Type())
		keys := make([]string, 0, len(fields))
		for _, f := range fields {
			keys = append(keys, f.name)
		}

		return keys
	}

	return nil
}

// objectGet looks up a property on an object value. For struct instances the
// lookup goes through the reflected field list using JSON names.
func objectGet(v any, key string) (any, bool) {
	if m, ok := v.(map[string]any); ok {
		val, ok := m[key]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		mv := rv.MapIndex(reflect.ValueOf(key))
		if !mv.IsValid() {
			return nil, false
		}

		return mv.Interface(), true
	case reflect.Struct:
		for _, f := range structFields(rv.Type()) {
			if f.name == key {
				return rv.FieldByIndex(f.index).Interface(), true
			}
		}
	}

	return nil, false
}

// propertyPresent reports whether a property counts as present for the
// required keyword. A JSON object key holding null is present; a struct
// field holding a nil pointer is the null sentinel and counts as absent.
// Nil slices and maps are not the sentinel: they validate as their empty
// collections.
func propertyPresent(v any, key string) bool {
	if reflect.ValueOf(v).Kind() == reflect.Struct {
		val, ok := objectGet(v, key)
		if !ok || val == nil {
			return false
		}

		rv := reflect.ValueOf(val)
		if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return false
		}

		return true
	}

	_, ok := objectGet(v, key)

	return ok
}

// objectLen returns the number of properties on an object value.
func objectLen(v any) int {
	return len(objectKeys(v))
}

// structField pairs a JSON property name with the reflect index path that
// reaches it, including promoted fields from embedded structs.
type structField struct {
	name  string
	index []int
}

// structFields enumerates the JSON-visible fields of a struct type in
// declaration order, walking embedded structs the way encoding/json does.
// Unexported fields and fields tagged json:"-" are omitted.
func structFields(t reflect.Type) []structField {
	var fields []structField

	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := range t.NumField() {
			f := t.Field(i)
			idx := append(append([]int(nil), prefix...), i)

			if f.Anonymous {
				ft := f.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					walk(ft, idx)
					continue
				}
			}

			if !f.IsExported() {
				continue
			}

			jsonTag := f.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}

			fields = append(fields, structField{
				name:  jsonFieldName(jsonTag, f.Name),
				index: idx,
			})
		}
	}
	walk(t, nil)

	return fields
}

// jsonFieldName extracts the JSON property name from a json tag, falling
// back to the Go field name.
func jsonFieldName(tag, fallback string) string {
	if tag == "" {
		return fallback
	}

	p := strings.Split(tag, ",")
	if p[0] != "" {
		return p[0]
	}

	return fallback
}

// jsonTypeOf names the JSON type of an instance value for error messages.
func jsonTypeOf(v any) string {
	switch {
	case isNull(v):
		return "null"
	case isBool(v):
		return "boolean"
	case isIntegral(v):
		return "integer"
	default:
	}
	if _, ok := numberValue(v); ok {
		return "number"
	}
	if _, ok := stringValue(v); ok {
		return "string"
	}
	if _, ok := arrayValue(deref(v)); ok {
		return "array"
	}
	if isObjectValue(deref(v)) {
		return "object"
	}

	return fmt.Sprintf("%T", v)
}

// deepEqual implements JSON structural equality over instance values.
// Numerically equal numbers compare equal regardless of Go type (1 == 1.0);
// booleans never equal numbers.
func deepEqual(a, b any) bool {
	if isNull(a) || isNull(b) {
		return isNull(a) && isNull(b)
	}

	if ab, ok := boolValue(a); ok {
		bb, ok := boolValue(b)
		return ok && ab == bb
	}
	if _, ok := boolValue(b); ok {
		return false
	}

	if af, ok := numberValue(a); ok {
		bf, ok := numberValue(b)
		return ok && af == bf
	}
	if _, ok := numberValue(b); ok {
		return false
	}

	if as, ok := stringValue(a); ok {
		bs, ok := stringValue(b)
		return ok && as == bs
	}
	if _, ok := stringValue(b); ok {
		return false
	}

	a, b = deref(a), deref(b)

	if aa, ok := arrayValue(a); ok {
		ba, ok := arrayValue(b)
		if !ok || len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !deepEqual(aa[i], ba[i]) {
				return false
			}
		}

		return true
	}

	if isObjectValue(a) && isObjectValue(b) {
		ak, bk := objectKeys(a), objectKeys(b)
		if len(ak) != len(bk) {
			return false
		}
		for _, k := range ak {
			bv, ok := objectGet(b, k)
			if !ok {
				return false
			}
			av, _ := objectGet(a, k)
			if !deepEqual(av, bv) {
				return false
			}
		}

		return true
	}

	return false
}
