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

import "fmt"

// GenerateOption configures a [Generate] call.
type GenerateOption func(*generateConfig)

// generateConfig holds internal generation configuration.
type generateConfig struct {
	title                string
	description          string
	id                   string
	draft                string
	refs                 bool
	defsKey              string
	allFieldsRequired    bool
	additionalProperties *bool
	strictTags           bool
}

func newGenerateConfig() *generateConfig {
	return &generateConfig{
		draft:   draft07,
		defsKey: "definitions",
	}
}

// validate checks the configuration for errors.
func (c *generateConfig) validate() error {
	if c.defsKey != "definitions" && c.defsKey != "$defs" {
		return fmt.Errorf("defs key must be %q or %q, got %q", "definitions", "$defs", c.defsKey)
	}

	return nil
}

// WithTitle overrides the top-level title, which defaults to the unqualified
// name of the source type.
func WithTitle(title string) GenerateOption {
	return func(c *generateConfig) {
		c.title = title
	}
}

// WithDescription adds a top-level description.
func WithDescription(description string) GenerateOption {
	return func(c *generateConfig) {
		c.description = description
	}
}

// WithID adds a top-level $id.
func WithID(id string) GenerateOption {
	return func(c *generateConfig) {
		c.id = id
	}
}

// WithDraft overrides the $schema URI. The default is the draft-07
// metaschema, the dialect this package validates.
func WithDraft(uri string) GenerateOption {
	return func(c *generateConfig) {
		c.draft = uri
	}
}

// WithRefs controls whether nested struct types are emitted as definitions
// entries referenced via $ref instead of inlined. Required for recursive
// types; with refs disabled a recursive reference degrades to the
// accept-all schema.
func WithRefs(refs bool) GenerateOption {
	return func(c *generateConfig) {
		c.refs = refs
	}
}

// WithDefsKey selects the key definitions are emitted under: "definitions"
// (draft-07, the default) or "$defs" (draft 2019-09 spelling, accepted by
// most draft-07 tooling). Implies nothing about [WithRefs]; enable that
// separately.
func WithDefsKey(key string) GenerateOption {
	return func(c *generateConfig) {
		c.defsKey = key
	}
}

// WithAllFieldsRequired, when enabled, adds every field to required,
// regardless of nullability or per-field annotations.
func WithAllFieldsRequired(required bool) GenerateOption {
	return func(c *generateConfig) {
		c.allFieldsRequired = required
	}
}

// WithAdditionalProperties recursively stamps the given boolean onto every
// object sub-schema of the generated document. $ref subtrees are left
// opaque, and map-typed additionalProperties sub-schemas are preserved.
func WithAdditionalProperties(value bool) GenerateOption {
	return func(c *generateConfig) {
		c.additionalProperties = &value
	}
}

// WithStrictTags makes malformed jsonschema tag values and unparseable
// [JSONSchemaProvider] output fail the [Generate] call instead of being
// silently replaced by the accept-all schema. The lenient default hides
// configuration mistakes; strict mode surfaces them.
func WithStrictTags(strict bool) GenerateOption {
	return func(c *generateConfig) {
		c.strictTags = strict
	}
}
