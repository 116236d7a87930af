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
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// FormatFunc checks a string against a named format. It returns true when
// the string conforms.
type FormatFunc func(s string) bool

var (
	formatsMu sync.RWMutex
	formats   = map[string]FormatFunc{
		"email":     checkEmail,
		"uri":       checkURI,
		"uuid":      checkUUID,
		"date-time": checkDateTime,
		"hostname":  tagFormat("hostname_rfc1123"),
		"ipv4":      tagFormat("ipv4"),
		"ipv6":      tagFormat("ipv6"),
	}
)

// tagValidator backs the supplementary format checkers with
// go-playground/validator's field-level rules. Var is safe for concurrent
// use.
var tagValidator = validator.New(validator.WithRequiredStructEnabled())

// tagFormat adapts a go-playground/validator tag into a [FormatFunc].
func tagFormat(tag string) FormatFunc {
	return func(s string) bool {
		return tagValidator.Var(s, tag) == nil
	}
}

// RegisterFormat installs a custom checker for the format keyword. It
// replaces any existing checker with the same name and is safe for
// concurrent use. Formats with no registered checker are accepted.
func RegisterFormat(name string, fn FormatFunc) {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats[name] = fn
}

// lookupFormat returns the checker for a format name, if one is registered.
func lookupFormat(name string) (FormatFunc, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	fn, ok := formats[name]

	return fn, ok
}

var (
	uriPattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:\S+$`)
	uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// checkEmail requires exactly one '@', no whitespace, and a dot in the
// domain part.
func checkEmail(s string) bool {
	if strings.ContainsAny(s, " \t\n\r") {
		return false
	}

	at := strings.Count(s, "@")
	if at != 1 {
		return false
	}

	local, domain, _ := strings.Cut(s, "@")

	return local != "" && domain != "" && strings.Contains(domain, ".")
}

// checkURI requires a scheme (ASCII letter followed by alphanumerics or
// "+.-"), a colon, and a non-empty remainder with no whitespace.
func checkURI(s string) bool {
	return uriPattern.MatchString(s)
}

// checkUUID requires the 8-4-4-4-12 hex shape, case-insensitive.
func checkUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// checkDateTime requires an RFC 3339 date-time with an explicit timezone
// ("Z" or a ±HH:MM offset); fractional seconds are optional. Lowercase
// 't'/'z' separators are accepted.
func checkDateTime(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}

	upper := strings.Map(func(r rune) rune {
		switch r {
		case 't':
			return 'T'
		case 'z':
			return 'Z'
		}
		return r
	}, s)
	_, err := time.Parse(time.RFC3339, upper)

	return err == nil
}
