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

// Package jsonschema implements a JSON Schema (draft-07) validator and a
// reflection-driven schema generator for Go types.
//
// # Getting Started
//
// Validate a JSON document against a schema:
//
//	schema, err := jsonschema.Parse([]byte(`{
//		"type": "object",
//		"properties": {"name": {"type": "string", "minLength": 1}},
//		"required": ["name"]
//	}`))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var doc any
//	_ = json.Unmarshal([]byte(`{"name": ""}`), &doc)
//
//	if err := schema.Validate(doc); err != nil {
//		var verr *jsonschema.Error
//		if errors.As(err, &verr) {
//			for _, msg := range verr.Messages() {
//				fmt.Println(msg) // "name: length 0 is less than minLength 1"
//			}
//		}
//	}
//
// Schemas may also be authored in YAML ([ParseYAML]) or supplied as a
// pre-parsed value tree ([FromValue]). Boolean schemas are accepted
// everywhere a schema is expected: true accepts every value, false rejects
// every value.
//
// # Schema Generation
//
// [Generate] derives a draft-07 schema from a Go type. Field constraints are
// declared in jsonschema struct tags; names and omissions follow json tags:
//
//	type User struct {
//		ID    int    `json:"id" jsonschema:"minimum=1"`
//		Name  string `json:"name" jsonschema:"minLength=1"`
//		Email string `json:"email" jsonschema:"format=email"`
//		Age   *int   `json:"age"`
//	}
//
//	schema := jsonschema.MustGenerate(User{},
//		jsonschema.WithRefs(true),
//		jsonschema.WithAdditionalProperties(false),
//	)
//
// A generated schema remembers its source type and can validate in-memory
// instances directly, without a marshal round-trip:
//
//	err := schema.ValidateTyped(User{ID: 1, Name: "Alice", Email: "a@b.co"})
//
// Nested struct types become definitions entries referenced through $ref
// when [WithRefs] is enabled; recursive and mutually recursive types are
// handled by naming definitions eagerly on entry. Generation is
// deterministic: properties and definitions preserve insertion order, so two
// runs over the same type marshal to identical bytes.
//
// Types that need full control over their schema implement
// [JSONSchemaProvider], mirroring the interface of rivaas.dev/validation.
//
// # References
//
// $ref values of the form "#/segment/segment" are resolved against the
// document root. External references are not supported and are reported as
// validation errors. Reference cycles during validation terminate as long as
// the instance has finite depth; a recursion guard converts runaway schemas
// into a reported error rather than a stack overflow.
//
// # Formats
//
// The format keyword checks email, uri, uuid and date-time out of the box,
// plus hostname, ipv4 and ipv6 backed by go-playground/validator. Unknown
// formats are accepted, per the draft-07 recommendation. [RegisterFormat]
// installs custom checkers.
//
// # Error Reporting
//
// Validation never panics on well-formed inputs. All keyword failures are
// collected into a single [*Error] whose [FieldError] entries carry the
// dotted JSON path, a stable code, and a human-readable message. Use
// errors.Is(err, ErrValidation) to detect validation failures.
//
// # Thread Safety
//
// A [Schema] is immutable after construction; concurrent Validate calls
// against the same Schema are safe. Generation contexts are per-call and
// never shared.
package jsonschema
