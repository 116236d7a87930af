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
	"fmt"
	"strconv"
	"strings"
)

// ResolveRef resolves an intra-document reference of the form
// "#/segment/segment" against the root of a schema document and returns the
// node it names. The bare fragment "#" resolves to the root itself.
//
// Segments are matched raw; ~0/~1 escape decoding is not applied, inputs are
// expected pre-decoded. Numeric segments index into arrays, so pointers like
// "#/items/0" reach tuple positions.
//
// ResolveRef fails with [ErrExternalRef] when the pointer does not begin
// with "#", and with [ErrRefNotFound] when any segment is absent.
func ResolveRef(ref string, root any) (any, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("%q: %w", ref, ErrExternalRef)
	}

	node := root
	rest := strings.TrimPrefix(ref, "#")
	if rest == "" || rest == "/" {
		return node, nil
	}

	for seg := range strings.SplitSeq(strings.TrimPrefix(rest, "/"), "/") {
		next, ok := refChild(node, seg)
		if !ok {
			return nil, fmt.Errorf("%q: segment %q: %w", ref, seg, ErrRefNotFound)
		}
		node = next
	}

	return node, nil
}

// refChild descends one pointer segment into an object or array node.
func refChild(node any, seg string) (any, bool) {
	if child, ok := nodeGet(node, seg); ok {
		return child, true
	}

	if list, ok := node.([]any); ok {
		i, err := strconv.Atoi(seg)
		if err == nil && i >= 0 && i < len(list) {
			return list[i], true
		}
	}

	return nil, false
}
