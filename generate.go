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
	"strings"
	"time"
)

// Generate derives a draft-07 schema from a Go type. The template may be a
// value of the type or a reflect.Type. Field constraints come from
// jsonschema struct tags; names and omissions follow json tags; types that
// implement [JSONSchemaProvider] contribute their own schema verbatim.
//
// When the template is a struct type (or a pointer to one), the generated
// document carries that source type, so [Schema.ValidateTyped] accepts
// in-memory instances directly; for other types no source type is recorded. Generation is deterministic: two
// calls over the same type produce byte-identical JSON.
func Generate(template any, opts ...GenerateOption) (*Schema, error) {
	cfg := newGenerateConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	t, _ := template.(reflect.Type)
	if t == nil && template != nil {
		t = reflect.TypeOf(template)
	}

	g := &generator{
		cfg:         cfg,
		typeNames:   make(map[reflect.Type]string),
		usedNames:   make(map[string]bool),
		definitions: newSchemaObject(),
	}

	body, err := g.schemaFor(t)
	if err != nil {
		return nil, err
	}

	base := t
	for base != nil && base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	root := newSchemaObject()
	root.Set("$schema", cfg.draft)
	if cfg.id != "" {
		root.Set("$id", cfg.id)
	}
	title := cfg.title
	if title == "" && base != nil {
		title = base.Name()
	}
	if title != "" {
		root.Set("title", title)
	}
	if cfg.description != "" {
		root.Set("description", cfg.description)
	}

	if node, ok := body.(*schemaObject); ok {
		for pair := node.Oldest(); pair != nil; pair = pair.Next() {
			root.Set(pair.Key, pair.Value)
		}
	}
	if g.definitions.Len() > 0 {
		root.Set(cfg.defsKey, g.definitions)
	}

	if cfg.additionalProperties != nil {
		stampAdditionalProperties(root, *cfg.additionalProperties)
	}

	s := &Schema{root: root}
	if base != nil && base.Kind() == reflect.Struct {
		s.source = base
	}

	return s, nil
}

// MustGenerate is like [Generate] but panics on error. Use in main() or
// init() where panic on startup is acceptable.
func MustGenerate(template any, opts ...GenerateOption) *Schema {
	s, err := Generate(template, opts...)
	if err != nil {
		panic(fmt.Sprintf("jsonschema.MustGenerate: %v", err))
	}

	return s
}

// generator is the context of one Generate call: the ref table mapping
// types to definition names, the definitions being accumulated, and the
// stack of types currently being generated for cycle detection. It is owned
// by exactly one call and never shared.
type generator struct {
	cfg         *generateConfig
	typeNames   map[reflect.Type]string
	usedNames   map[string]bool
	definitions *schemaObject
	stack       []reflect.Type
}

var (
	providerIface = reflect.TypeFor[JSONSchemaProvider]()
	timeType      = reflect.TypeFor[time.Time]()
)

// schemaFor maps one Go type to a schema node.
func (g *generator) schemaFor(t reflect.Type) (any, error) {
	if t == nil {
		return newSchemaObject(), nil
	}

	if t.Kind() != reflect.Interface {
		if node, ok, err := g.providerSchema(t); ok {
			return node, err
		}
	}

	if t == timeType {
		s := newSchemaObject()
		s.Set("type", "string")
		s.Set("format", "date-time")

		return s, nil
	}

	// []byte marshals as a base64 string.
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		s := newSchemaObject()
		s.Set("type", "string")
		s.Set("contentEncoding", "base64")

		return s, nil
	}

	if t.Kind() == reflect.Pointer {
		inner, err := g.schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}

		return nullableSchema(inner), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return typeSchema("boolean"), nil
	case reflect.String:
		return typeSchema("string"), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return typeSchema("integer"), nil
	case reflect.Float32, reflect.Float64:
		return typeSchema("number"), nil
	case reflect.Interface:
		return newSchemaObject(), nil
	case reflect.Slice:
		items, err := g.schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}
		s := typeSchema("array")
		s.Set("items", items)

		return s, nil
	case reflect.Array:
		items, err := g.schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}
		s := typeSchema("array")
		s.Set("items", items)
		s.Set("minItems", t.Len())
		s.Set("maxItems", t.Len())

		return s, nil
	case reflect.Map:
		return g.mapSchema(t)
	case reflect.Struct:
		return g.recordSchema(t)
	default:
		// Channels, funcs and unsafe pointers have no JSON shape.
		return newSchemaObject(), nil
	}
}

// mapSchema handles string-keyed maps, and map[E]struct{} as the idiomatic
// Go set.
func (g *generator) mapSchema(t reflect.Type) (any, error) {
	if isSetType(t) {
		items, err := g.schemaFor(t.Key())
		if err != nil {
			return nil, err
		}
		s := typeSchema("array")
		s.Set("uniqueItems", true)
		s.Set("items", items)

		return s, nil
	}

	s := typeSchema("object")
	if t.Key().Kind() != reflect.String || t.Elem().Kind() == reflect.Interface {
		// Unknown value shapes leave additionalProperties unconstrained.
		return s, nil
	}

	values, err := g.schemaFor(t.Elem())
	if err != nil {
		return nil, err
	}
	s.Set("additionalProperties", values)

	return s, nil
}

// recordSchema handles a concrete struct type, consulting the ref table
// when definitions are enabled.
func (g *generator) recordSchema(t reflect.Type) (any, error) {
	if !g.cfg.refs {
		if g.onStack(t) {
			// Inlining a recursive type would never terminate; the cycle
			// point degrades to the accept-all schema.
			return newSchemaObject(), nil
		}
		g.stack = append(g.stack, t)
		defer func() { g.stack = g.stack[:len(g.stack)-1] }()

		return g.structSchema(t)
	}

	// Already named: either generated, or a placeholder for a type still on
	// the stack whose frame will store the definition on exit.
	if name, ok := g.typeNames[t]; ok {
		return refNode(g.cfg.defsKey, name), nil
	}

	name := g.definitionName(t)
	g.typeNames[t] = name
	g.usedNames[name] = true
	g.stack = append(g.stack, t)

	s, err := g.structSchema(t)

	g.stack = g.stack[:len(g.stack)-1]
	if err != nil {
		delete(g.typeNames, t)
		return nil, err
	}
	g.definitions.Set(name, s)

	return refNode(g.cfg.defsKey, name), nil
}

// structSchema emits the object schema of one struct type.
func (g *generator) structSchema(t reflect.Type) (any, error) {
	s := typeSchema("object")
	props := newSchemaObject()

	var required []any
	var walkErr error

	walkStructFields(t, func(f reflect.StructField) {
		if walkErr != nil || !f.IsExported() {
			return
		}

		tags, err := parseFieldTags(f, g.cfg.strictTags)
		if err != nil {
			walkErr = err
			return
		}
		if tags.ignore {
			return
		}

		fs, err := g.schemaFor(f.Type)
		if err != nil {
			if g.cfg.strictTags {
				walkErr = err
				return
			}
			// Generation always produces a usable schema; a field that
			// cannot be reflected accepts anything.
			fs = newSchemaObject()
		}

		fs, err = applyAnnotations(fs, f, tags, g.cfg.strictTags)
		if err != nil {
			walkErr = err
			return
		}

		props.Set(tags.name, fs)

		if g.isRequired(f, tags) {
			required = append(required, tags.name)
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if props.Len() > 0 {
		s.Set("properties", props)
	}
	if len(required) > 0 {
		s.Set("required", required)
	}

	return s, nil
}

// isRequired decides required-ness: the explicit annotation wins, nullable
// (pointer) fields default to optional, everything else to required.
func (g *generator) isRequired(f reflect.StructField, tags fieldTags) bool {
	if g.cfg.allFieldsRequired {
		return true
	}
	if tags.required != nil {
		return *tags.required
	}

	return f.Type.Kind() != reflect.Pointer
}

// providerSchema embeds the schema of a type implementing
// [JSONSchemaProvider], checking both value and pointer method sets.
func (g *generator) providerSchema(t reflect.Type) (any, bool, error) {
	var inst JSONSchemaProvider
	switch {
	case t.Implements(providerIface):
		inst, _ = reflect.New(t).Elem().Interface().(JSONSchemaProvider)
	case reflect.PointerTo(t).Implements(providerIface):
		inst, _ = reflect.New(t).Interface().(JSONSchemaProvider)
	default:
		return nil, false, nil
	}

	_, raw := inst.JSONSchema()

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		if g.cfg.strictTags {
			return nil, true, fmt.Errorf("%s: invalid provider schema: %w", t, err)
		}

		return newSchemaObject(), true, nil
	}
	if !isNode(doc) {
		if g.cfg.strictTags {
			return nil, true, fmt.Errorf("%s: provider schema must be an object", t)
		}

		return newSchemaObject(), true, nil
	}

	return doc, true, nil
}

// nullableSchema extends a schema to also accept null. A $ref cannot carry
// siblings, so referenced types wrap in a oneOf with the null schema;
// otherwise the type keyword widens to an array including "null".
func nullableSchema(inner any) any {
	node, ok := inner.(*schemaObject)
	if !ok || hasKey(node, "$ref") {
		null := typeSchema("null")
		wrap := newSchemaObject()
		wrap.Set("oneOf", []any{inner, null})

		return wrap
	}

	tv, ok := node.Get("type")
	if !ok {
		// The empty schema accepts null already.
		return node
	}

	switch t := tv.(type) {
	case string:
		node.Set("type", []any{t, "null"})
	case []any:
		for _, n := range t {
			if n == "null" {
				return node
			}
		}
		node.Set("type", append(t, "null"))
	}

	return node
}

// typeSchema returns a fresh node carrying a single type keyword.
func typeSchema(name string) *schemaObject {
	s := newSchemaObject()
	s.Set("type", name)

	return s
}

// refNode returns a node whose sole key references a definitions entry.
func refNode(defsKey, name string) *schemaObject {
	s := newSchemaObject()
	s.Set("$ref", "#/"+defsKey+"/"+name)

	return s
}

// onStack reports whether t is currently being generated.
func (g *generator) onStack(t reflect.Type) bool {
	for _, s := range g.stack {
		if s == t {
			return true
		}
	}

	return false
}

// definitionName derives the stable definitions key for a type:
// "pkgname.TypeName", the package name being the last path component, with
// slashes from generic type arguments flattened. Collisions between
// same-named types from different paths get a numeric suffix.
func (g *generator) definitionName(t reflect.Type) string {
	name := t.Name()
	if name == "" {
		name = "anonymous"
	}

	if pkg := t.PkgPath(); pkg != "" {
		parts := strings.Split(pkg, "/")
		if last := parts[len(parts)-1]; last != "" && last != name {
			name = last + "." + name
		}
	}
	name = strings.ReplaceAll(name, "/", "_")

	if !g.usedNames[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if !g.usedNames[candidate] {
			return candidate
		}
	}
}

// walkStructFields visits the fields of a struct type in declaration order,
// recursing through embedded structs so promoted fields are seen.
func walkStructFields(t reflect.Type, fn func(reflect.StructField)) {
	for i := range t.NumField() {
		f := t.Field(i)

		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				walkStructFields(ft, fn)
				continue
			}
		}

		fn(f)
	}
}
