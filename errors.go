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
	"sort"
	"strings"
)

// ErrValidation is a sentinel error for validation failures.
// Use errors.Is(err, ErrValidation) to check if an error is a validation error.
var ErrValidation = errors.New("validation")

// Predefined errors returned from schema construction and reference resolution.
var (
	// ErrUnsupportedSchema is returned when a schema is constructed from a
	// value that is neither a JSON object tree nor a boolean.
	ErrUnsupportedSchema = errors.New("unsupported schema value")

	// ErrRefNotFound is returned when a $ref pointer names a path that does
	// not exist in the schema document.
	ErrRefNotFound = errors.New("reference not found")

	// ErrExternalRef is returned for $ref values that do not begin with "#",
	// i.e. references into other documents.
	ErrExternalRef = errors.New("external references are not supported")

	// ErrTypeMismatch is returned by [Schema.ValidateTyped] when the instance
	// type does not match the schema's source type.
	ErrTypeMismatch = errors.New("instance type does not match schema source type")
)

// FieldError represents a single validation error at a specific location in
// the instance. Multiple FieldError values are collected in an [Error].
//
// Example:
//
//	err := FieldError{
//	    Path:    "items[2].price",
//	    Code:    "schema.minimum",
//	    Message: "0 is less than the minimum of 1",
//	}
type FieldError struct {
	Path    string `json:"path"`    // Dotted JSON path ("" for the root)
	Code    string `json:"code"`    // Stable code (e.g. "schema.type", "schema.one_of")
	Message string `json:"message"` // Human-readable message
}

// Error returns a formatted error message as "path: message" or just
// "message" if the path is empty.
func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap returns [ErrValidation] for errors.Is/errors.As compatibility.
func (e FieldError) Unwrap() error {
	return ErrValidation
}

// Error represents validation errors for one or more locations in the
// instance. Error implements error and can be used with errors.Is/errors.As.
//
// Example:
//
//	var verr *Error
//	if errors.As(err, &verr) {
//	    for _, msg := range verr.Messages() {
//	        fmt.Println(msg)
//	    }
//	}
//
//nolint:recvcheck // Error must use value receiver for error interface compatibility, mutating methods use pointer
type Error struct {
	Fields []FieldError `json:"errors"` // List of keyword failures
}

// Error returns a formatted error message.
func (v Error) Error() string {
	if len(v.Fields) == 0 {
		return ""
	}
	if len(v.Fields) == 1 {
		return v.Fields[0].Error()
	}

	var msgs []string
	for _, err := range v.Fields {
		msgs = append(msgs, err.Error())
	}

	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Unwrap returns [ErrValidation] for errors.Is/errors.As compatibility.
func (v Error) Unwrap() error {
	return ErrValidation
}

// Messages returns one path-prefixed string per keyword failure, in the
// order reported.
func (v Error) Messages() []string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Error())
	}

	return msgs
}

// Add appends a new [FieldError] to the collection.
func (v *Error) Add(path, code, message string) {
	v.Fields = append(v.Fields, FieldError{
		Path:    path,
		Code:    code,
		Message: message,
	})
}

// HasErrors returns true if there are any errors.
func (v Error) HasErrors() bool {
	return len(v.Fields) > 0
}

// HasCode returns true if any error has the given code.
func (v Error) HasCode(code string) bool {
	for _, e := range v.Fields {
		if e.Code == code {
			return true
		}
	}

	return false
}

// Has checks if a specific instance path has an error.
func (v Error) Has(path string) bool {
	for _, f := range v.Fields {
		if f.Path == path {
			return true
		}
	}

	return false
}

// Sort sorts errors by path, then by code. Sort modifies the error in place
// and gives map-backed instances a stable presentation order.
func (v *Error) Sort() {
	sort.Slice(v.Fields, func(i, j int) bool {
		if v.Fields[i].Path != v.Fields[j].Path {
			return v.Fields[i].Path < v.Fields[j].Path
		}

		return v.Fields[i].Code < v.Fields[j].Code
	})
}
