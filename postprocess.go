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

// stampAdditionalProperties recursively writes additionalProperties onto
// every object sub-schema of node. $ref subtrees are opaque. An existing
// additionalProperties holding an object schema (a map value type) is
// preserved; booleans and absent keys are stamped. Applying the stamp twice
// yields the same document as applying it once.
func stampAdditionalProperties(node any, value bool) {
	if !isNode(node) {
		return
	}
	if _, ok := nodeGet(node, "$ref"); ok {
		// A reference carries no validation keywords of its own, but the
		// document root can hold $ref alongside its definitions block.
		stampDefinitions(node, value)
		return
	}

	if isObjectSchemaNode(node) {
		existing, ok := nodeGet(node, "additionalProperties")
		if !ok || !isNode(existing) {
			nodeSet(node, "additionalProperties", value)
		}
	}

	// Object-valued keywords whose entries are sub-schemas.
	for _, key := range []string{"properties", "patternProperties"} {
		if child, ok := nodeGet(node, key); ok && isNode(child) {
			for _, name := range nodeKeys(child) {
				sub, _ := nodeGet(child, name)
				stampAdditionalProperties(sub, value)
			}
		}
	}

	// items is a schema or a tuple of schemas.
	if items, ok := nodeGet(node, "items"); ok {
		if tuple, isTuple := items.([]any); isTuple {
			for _, sub := range tuple {
				stampAdditionalProperties(sub, value)
			}
		} else {
			stampAdditionalProperties(items, value)
		}
	}

	for _, key := range []string{"additionalItems", "if", "then", "else", "not", "contains", "propertyNames"} {
		if sub, ok := nodeGet(node, key); ok {
			stampAdditionalProperties(sub, value)
		}
	}

	for _, key := range []string{"allOf", "anyOf", "oneOf"} {
		if list, ok := nodeList(node, key); ok {
			for _, sub := range list {
				stampAdditionalProperties(sub, value)
			}
		}
	}

	// The schema arm of dependencies; co-required name lists pass through
	// isNode and are skipped.
	if deps, ok := nodeGet(node, "dependencies"); ok && isNode(deps) {
		for _, name := range nodeKeys(deps) {
			sub, _ := nodeGet(deps, name)
			if isNode(sub) {
				stampAdditionalProperties(sub, value)
			}
		}
	}

	stampDefinitions(node, value)
}

// stampDefinitions recurses into the definitions block under either
// spelling.
func stampDefinitions(node any, value bool) {
	for _, key := range []string{"definitions", "$defs"} {
		if defs, ok := nodeGet(node, key); ok && isNode(defs) {
			for _, name := range nodeKeys(defs) {
				sub, _ := nodeGet(defs, name)
				stampAdditionalProperties(sub, value)
			}
		}
	}
}

// isObjectSchemaNode reports whether a schema node describes objects: an
// explicit object type, or a properties keyword.
func isObjectSchemaNode(node any) bool {
	if t, ok := nodeGet(node, "type"); ok {
		switch tt := t.(type) {
		case string:
			if tt == "object" {
				return true
			}
		case []any:
			for _, n := range tt {
				if n == "object" {
					return true
				}
			}
		}
	}

	_, ok := nodeGet(node, "properties")

	return ok
}
