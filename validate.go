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
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxValidationDepth bounds schema recursion so a $ref cycle that never
// consumes a structural level of the instance is reported instead of
// overflowing the stack.
const maxValidationDepth = 512

// multipleOfTolerance absorbs floating-point rounding in the multipleOf
// check: a remainder within the tolerance of 0 or of the divisor counts as
// an exact multiple.
const multipleOfTolerance = 1e-8

// Validate checks instance against the schema and returns nil when every
// applicable keyword is satisfied, or a [*Error] carrying one [FieldError]
// per keyword failure. Keyword failures are collected, never raised;
// malformed $ref values surface as validation errors.
//
// The instance may be a generic JSON tree (the output of encoding/json) or
// an in-memory Go value: structs validate as objects through their
// reflected field list, slices and fixed-size arrays as arrays,
// map[E]struct{} sets as unique-item arrays.
func (s *Schema) Validate(instance any) error {
	var errs Error
	w := &walker{root: s.root}
	w.walk(s.root, instance, "", 0, &errs)

	if !errs.HasErrors() {
		return nil
	}
	errs.Sort()

	return &errs
}

// IsValid reports whether instance is valid against the schema.
func (s *Schema) IsValid(instance any) bool {
	return s.Validate(instance) == nil
}

// IsValidVerbose is [Schema.IsValid] with diagnostics: on failure every
// report line is written to w (standard error when w is nil).
func (s *Schema) IsValidVerbose(instance any, w io.Writer) bool {
	err := s.Validate(instance)
	if err == nil {
		return true
	}

	if w == nil {
		w = os.Stderr
	}

	var verr *Error
	if errors.As(err, &verr) {
		for _, msg := range verr.Messages() {
			fmt.Fprintln(w, msg)
		}
	}

	return false
}

// ValidateTyped validates an in-memory instance of the schema's source
// type. It fails with [ErrTypeMismatch] when the schema has no source type
// (parsed schemas, and schemas generated from non-struct types), or when the
// instance (after unwrapping pointers) is of a different type.
func (s *Schema) ValidateTyped(instance any) error {
	if s.source == nil {
		return fmt.Errorf("schema has no source type: %w", ErrTypeMismatch)
	}

	t := reflect.TypeOf(instance)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != s.source {
		return fmt.Errorf("have %v, want %v: %w", t, s.source, ErrTypeMismatch)
	}

	return s.Validate(instance)
}

// walker carries the document root through the recursive descent so $ref
// always resolves against it.
type walker struct {
	root any
}

// walk validates value against one schema node, appending keyword failures
// to errs. path is the dotted JSON path of value; depth counts schema
// recursion for the cycle guard.
func (w *walker) walk(schema, value any, path string, depth int, errs *Error) {
	if depth > maxValidationDepth {
		errs.Add(path, "ref.depth", "schema recursion exceeds the depth limit")
		return
	}

	if b, ok := schema.(bool); ok {
		if !b {
			errs.Add(path, "schema.false", "schema allows no values")
		}

		return
	}

	if !isNode(schema) {
		return
	}

	// $ref short-circuits: siblings of $ref are ignored per draft-07.
	if ref, ok := nodeGet(schema, "$ref"); ok {
		rs, ok := ref.(string)
		if !ok {
			errs.Add(path, "ref.resolve", fmt.Sprintf("$ref must be a string, got %T", ref))
			return
		}

		target, err := ResolveRef(rs, w.root)
		if err != nil {
			errs.Add(path, "ref.resolve", err.Error())
			return
		}
		w.walk(target, value, path, depth+1, errs)

		return
	}

	value = deref(value)

	w.checkType(schema, value, path, errs)
	w.checkEnum(schema, value, path, errs)

	if sv, ok := stringValue(value); ok {
		w.checkString(schema, sv, path, errs)
	}
	if n, ok := numberValue(value); ok {
		w.checkNumber(schema, n, path, errs)
	}
	if items, ok := arrayValue(value); ok {
		w.checkArray(schema, items, path, depth, errs)
	}
	if isObjectValue(value) {
		w.checkObject(schema, value, path, depth, errs)
	}

	w.checkComposition(schema, value, path, depth, errs)
	w.checkConditional(schema, value, path, depth, errs)
}

// valid probes value against a sub-schema without contributing to the
// report. anyOf, oneOf, not, contains and if all use it.
func (w *walker) valid(schema, value any, depth int) bool {
	var probe Error
	w.walk(schema, value, "", depth, &probe)

	return !probe.HasErrors()
}

// typeMatches implements the type keyword's primitive type names.
func typeMatches(name string, v any) bool {
	switch name {
	case "null":
		return isNull(v)
	case "boolean":
		return isBool(v)
	case "integer":
		return !isBool(v) && isIntegral(v)
	case "number":
		if isBool(v) {
			return false
		}
		_, ok := numberValue(v)

		return ok
	case "string":
		_, ok := stringValue(v)
		return ok
	case "array":
		_, ok := arrayValue(v)
		return ok
	case "object":
		return isObjectValue(v)
	}

	return false
}

func (w *walker) checkType(schema, value any, path string, errs *Error) {
	t, ok := nodeGet(schema, "type")
	if !ok {
		return
	}

	switch names := t.(type) {
	case string:
		if !typeMatches(names, value) {
			errs.Add(path, "schema.type", fmt.Sprintf("expected %s, got %s", names, jsonTypeOf(value)))
		}
	case []any:
		for _, n := range names {
			if s, ok := n.(string); ok && typeMatches(s, value) {
				return
			}
		}
		want := make([]string, 0, len(names))
		for _, n := range names {
			want = append(want, fmt.Sprint(n))
		}
		errs.Add(path, "schema.type", fmt.Sprintf("expected one of [%s], got %s",
			strings.Join(want, ", "), jsonTypeOf(value)))
	}
}

func (w *walker) checkEnum(schema, value any, path string, errs *Error) {
	if choices, ok := nodeList(schema, "enum"); ok {
		matched := false
		for _, c := range choices {
			if deepEqual(value, c) {
				matched = true
				break
			}
		}
		if !matched {
			errs.Add(path, "schema.enum", "value is not one of the enumerated values")
		}
	}

	if sentinel, ok := nodeGet(schema, "const"); ok {
		if !deepEqual(value, sentinel) {
			errs.Add(path, "schema.const", "value does not equal the const value")
		}
	}
}

func (w *walker) checkString(schema any, s, path string, errs *Error) {
	length := utf8.RuneCountInString(s)

	if minLen, ok := nodeNumber(schema, "minLength"); ok && float64(length) < minLen {
		errs.Add(path, "schema.min_length", fmt.Sprintf("length %d is less than minLength %v", length, minLen))
	}
	if maxLen, ok := nodeNumber(schema, "maxLength"); ok && float64(length) > maxLen {
		errs.Add(path, "schema.max_length", fmt.Sprintf("length %d is greater than maxLength %v", length, maxLen))
	}

	// Invalid patterns are skipped, never reported: the schema author's
	// regex dialect may exceed RE2.
	if pat, ok := nodeString(schema, "pattern"); ok {
		if re, err := regexp.Compile(pat); err == nil && !re.MatchString(s) {
			errs.Add(path, "schema.pattern", fmt.Sprintf("%q does not match pattern %q", s, pat))
		}
	}

	if name, ok := nodeString(schema, "format"); ok {
		if fn, ok := lookupFormat(name); ok && !fn(s) {
			errs.Add(path, "schema.format", fmt.Sprintf("%q is not a valid %s", s, name))
		}
	}
}

func (w *walker) checkNumber(schema any, n float64, path string, errs *Error) {
	exclMinFlag := false
	exclMaxFlag := false
	if v, ok := nodeGet(schema, "exclusiveMinimum"); ok {
		if b, isBool := boolValue(v); isBool {
			exclMinFlag = b
		} else if bound, isNum := numberValue(v); isNum && n <= bound {
			errs.Add(path, "schema.exclusive_minimum",
				fmt.Sprintf("%v is not greater than the exclusive minimum of %v", n, bound))
		}
	}
	if v, ok := nodeGet(schema, "exclusiveMaximum"); ok {
		if b, isBool := boolValue(v); isBool {
			exclMaxFlag = b
		} else if bound, isNum := numberValue(v); isNum && n >= bound {
			errs.Add(path, "schema.exclusive_maximum",
				fmt.Sprintf("%v is not less than the exclusive maximum of %v", n, bound))
		}
	}

	if minimum, ok := nodeNumber(schema, "minimum"); ok {
		if exclMinFlag {
			if n <= minimum {
				errs.Add(path, "schema.minimum",
					fmt.Sprintf("%v is not greater than the exclusive minimum of %v", n, minimum))
			}
		} else if n < minimum {
			errs.Add(path, "schema.minimum", fmt.Sprintf("%v is less than the minimum of %v", n, minimum))
		}
	}
	if maximum, ok := nodeNumber(schema, "maximum"); ok {
		if exclMaxFlag {
			if n >= maximum {
				errs.Add(path, "schema.maximum",
					fmt.Sprintf("%v is not less than the exclusive maximum of %v", n, maximum))
			}
		} else if n > maximum {
			errs.Add(path, "schema.maximum", fmt.Sprintf("%v is greater than the maximum of %v", n, maximum))
		}
	}

	if m, ok := nodeNumber(schema, "multipleOf"); ok && m != 0 {
		rem := math.Abs(math.Mod(n, m))
		if rem > multipleOfTolerance && math.Abs(rem-math.Abs(m)) > multipleOfTolerance {
			errs.Add(path, "schema.multiple_of", fmt.Sprintf("%v is not a multiple of %v", n, m))
		}
	}
}

func (w *walker) checkArray(schema any, items []any, path string, depth int, errs *Error) {
	if minItems, ok := nodeNumber(schema, "minItems"); ok && float64(len(items)) < minItems {
		errs.Add(path, "schema.min_items",
			fmt.Sprintf("array has %d items, below the minimum of %v", len(items), minItems))
	}
	if maxItems, ok := nodeNumber(schema, "maxItems"); ok && float64(len(items)) > maxItems {
		errs.Add(path, "schema.max_items",
			fmt.Sprintf("array has %d items, above the maximum of %v", len(items), maxItems))
	}

	if unique, ok := nodeGet(schema, "uniqueItems"); ok {
		if b, isBool := boolValue(unique); isBool && b {
		scan:
			for i := 1; i < len(items); i++ {
				for j := range i {
					if deepEqual(items[i], items[j]) {
						errs.Add(path, "schema.unique_items", "items must be unique")
						break scan
					}
				}
			}
		}
	}

	if contains, ok := nodeGet(schema, "contains"); ok {
		found := false
		for _, item := range items {
			if w.valid(contains, item, depth+1) {
				found = true
				break
			}
		}
		if !found {
			errs.Add(path, "schema.contains", "no items match the contains schema")
		}
	}

	it, ok := nodeGet(schema, "items")
	if !ok {
		return
	}

	if tuple, isTuple := it.([]any); isTuple {
		additional, hasAdditional := nodeGet(schema, "additionalItems")
		for i, item := range items {
			if i < len(tuple) {
				w.walk(tuple[i], item, indexPath(path, i), depth+1, errs)
				continue
			}
			if !hasAdditional {
				continue
			}
			if b, isBool := boolValue(additional); isBool {
				if !b {
					errs.Add(indexPath(path, i), "schema.additional_items",
						fmt.Sprintf("additional item beyond position %d is not allowed", len(tuple)-1))
				}
				continue
			}
			w.walk(additional, item, indexPath(path, i), depth+1, errs)
		}

		return
	}

	for i, item := range items {
		w.walk(it, item, indexPath(path, i), depth+1, errs)
	}
}

func (w *walker) checkObject(schema, value any, path string, depth int, errs *Error) {
	props, hasProps := nodeGet(schema, "properties")

	if hasProps && isNode(props) {
		for _, key := range nodeKeys(props) {
			sub, _ := nodeGet(props, key)
			if pv, present := objectGet(value, key); present {
				w.walk(sub, pv, childPath(path, key), depth+1, errs)
			}
		}
	}

	if required, ok := nodeList(schema, "required"); ok {
		for _, r := range required {
			name, ok := r.(string)
			if !ok {
				continue
			}
			if !propertyPresent(value, name) {
				errs.Add(path, "schema.required", fmt.Sprintf("required property '%s' is missing", name))
			}
		}
	}

	patterns := compiledPatternProperties(schema)
	for _, pp := range patterns {
		for _, key := range objectKeys(value) {
			if pp.re.MatchString(key) {
				pv, _ := objectGet(value, key)
				w.walk(pp.schema, pv, childPath(path, key), depth+1, errs)
			}
		}
	}

	if additional, ok := nodeGet(schema, "additionalProperties"); ok {
		for _, key := range objectKeys(value) {
			if hasProps {
				if _, named := nodeGet(props, key); named {
					continue
				}
			}
			if matchesAnyPattern(patterns, key) {
				continue
			}

			if b, isBool := boolValue(additional); isBool {
				if !b {
					errs.Add(path, "schema.additional_properties",
						fmt.Sprintf("additional property '%s' not allowed", key))
				}
				continue
			}
			pv, _ := objectGet(value, key)
			w.walk(additional, pv, childPath(path, key), depth+1, errs)
		}
	}

	if names, ok := nodeGet(schema, "propertyNames"); ok {
		for _, key := range objectKeys(value) {
			w.walk(names, key, childPath(path, key), depth+1, errs)
		}
	}

	if minProps, ok := nodeNumber(schema, "minProperties"); ok && float64(objectLen(value)) < minProps {
		errs.Add(path, "schema.min_properties",
			fmt.Sprintf("object has %d properties, below the minimum of %v", objectLen(value), minProps))
	}
	if maxProps, ok := nodeNumber(schema, "maxProperties"); ok && float64(objectLen(value)) > maxProps {
		errs.Add(path, "schema.max_properties",
			fmt.Sprintf("object has %d properties, above the maximum of %v", objectLen(value), maxProps))
	}

	if deps, ok := nodeGet(schema, "dependencies"); ok && isNode(deps) {
		for _, depKey := range nodeKeys(deps) {
			if !propertyPresent(value, depKey) {
				continue
			}
			entry, _ := nodeGet(deps, depKey)

			if coRequired, isList := entry.([]any); isList {
				for _, c := range coRequired {
					name, ok := c.(string)
					if !ok {
						continue
					}
					if !propertyPresent(value, name) {
						errs.Add(path, "schema.dependencies",
							fmt.Sprintf("property '%s' is required when '%s' is present", name, depKey))
					}
				}
				continue
			}

			w.walk(entry, value, path, depth+1, errs)
		}
	}
}

func (w *walker) checkComposition(schema, value any, path string, depth int, errs *Error) {
	if all, ok := nodeList(schema, "allOf"); ok {
		for _, sub := range all {
			w.walk(sub, value, path, depth+1, errs)
		}
	}

	if anyOf, ok := nodeList(schema, "anyOf"); ok {
		matched := false
		for _, sub := range anyOf {
			if w.valid(sub, value, depth+1) {
				matched = true
				break
			}
		}
		if !matched {
			errs.Add(path, "schema.any_of", "value does not match any of the anyOf schemas")
		}
	}

	if oneOf, ok := nodeList(schema, "oneOf"); ok {
		count := 0
		for _, sub := range oneOf {
			if w.valid(sub, value, depth+1) {
				count++
			}
		}
		switch {
		case count == 0:
			errs.Add(path, "schema.one_of", "value matches none of the oneOf schemas")
		case count > 1:
			errs.Add(path, "schema.one_of", "value matches multiple oneOf schemas")
		}
	}

	if not, ok := nodeGet(schema, "not"); ok {
		if w.valid(not, value, depth+1) {
			errs.Add(path, "schema.not", "value must not match the not schema")
		}
	}
}

func (w *walker) checkConditional(schema, value any, path string, depth int, errs *Error) {
	cond, ok := nodeGet(schema, "if")
	if !ok {
		return
	}

	if w.valid(cond, value, depth+1) {
		if then, ok := nodeGet(schema, "then"); ok {
			w.walk(then, value, path, depth+1, errs)
		}

		return
	}

	if els, ok := nodeGet(schema, "else"); ok {
		w.walk(els, value, path, depth+1, errs)
	}
}

// patternProperty pairs a compiled patternProperties regex with its
// sub-schema. Invalid regexes are dropped.
type patternProperty struct {
	re     *regexp.Regexp
	schema any
}

func compiledPatternProperties(schema any) []patternProperty {
	node, ok := nodeGet(schema, "patternProperties")
	if !ok || !isNode(node) {
		return nil
	}

	var out []patternProperty
	for _, pat := range nodeKeys(node) {
		re, err := regexp.Compile(pat)
		if err != nil {
			continue
		}
		sub, _ := nodeGet(node, pat)
		out = append(out, patternProperty{re: re, schema: sub})
	}

	return out
}

func matchesAnyPattern(patterns []patternProperty, key string) bool {
	for _, p := range patterns {
		if p.re.MatchString(key) {
			return true
		}
	}

	return false
}

// childPath descends into a named property: "" + "foo" is "foo",
// "a" + "b" is "a.b".
func childPath(path, key string) string {
	if path == "" {
		return key
	}

	return path + "." + key
}

// indexPath descends into array position i, zero-based.
func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
