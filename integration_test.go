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

package jsonschema_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	jsonschema "rivaas.dev/jsonschema"
)

type Address struct {
	Street  string `json:"street" jsonschema:"minLength=1"`
	City    string `json:"city" jsonschema:"minLength=1"`
	Country string `json:"country" jsonschema:"pattern=^[A-Z]{2}$"`
}

type Customer struct {
	ID       int              `json:"id" jsonschema:"minimum=1"`
	Name     string           `json:"name" jsonschema:"minLength=1,maxLength=100"`
	Email    string           `json:"email" jsonschema:"format=email"`
	Age      *int             `json:"age" jsonschema:"minimum=0"`
	Address  Address          `json:"address"`
	Tags     []string         `json:"tags" jsonschema:"uniqueItems"`
	Metadata map[string]int   `json:"metadata"`
	Friends  []*Customer      `json:"friends"`
}

var _ = Describe("Generate and Validate", Label("integration"), func() {
	var schema *jsonschema.Schema

	BeforeEach(func() {
		var err error
		schema, err = jsonschema.Generate(Customer{},
			jsonschema.WithRefs(true),
			jsonschema.WithDescription("A customer record"),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("produces a schema the reference compiler accepts", func() {
		Expect(schema.VerifyDraft07()).To(Succeed())
	})

	It("round-trips constructible instances", func() {
		age := 34
		customer := Customer{
			ID:    7,
			Name:  "Alice",
			Email: "alice@example.com",
			Age:   &age,
			Address: Address{
				Street:  "1 Main St",
				City:    "Springfield",
				Country: "US",
			},
			Tags:     []string{"vip", "beta"},
			Metadata: map[string]int{"visits": 3},
			Friends: []*Customer{{
				ID:    8,
				Name:  "Bob",
				Email: "bob@example.com",
				Address: Address{
					Street:  "2 Side St",
					City:    "Shelbyville",
					Country: "US",
				},
				Tags:     []string{},
				Metadata: map[string]int{},
				Friends:  []*Customer{},
			}},
		}

		// Directly, through the typed entry point.
		Expect(schema.ValidateTyped(customer)).To(Succeed())

		// And through a marshal round-trip, as a generic JSON tree.
		raw, err := json.Marshal(customer)
		Expect(err).NotTo(HaveOccurred())
		var doc any
		Expect(json.Unmarshal(raw, &doc)).To(Succeed())
		Expect(schema.Validate(doc)).To(Succeed())
	})

	It("rejects annotation violations with one error per path", func() {
		customer := Customer{
			ID:    0,
			Name:  "",
			Email: "not-an-email",
			Address: Address{
				Street:  "1 Main St",
				City:    "Springfield",
				Country: "usa",
			},
		}

		err := schema.ValidateTyped(customer)
		Expect(err).To(HaveOccurred())

		report := jsonschema.Diagnose(schema, customer)
		Expect(report).NotTo(BeNil())
		Expect(report.Has("id")).To(BeTrue())
		Expect(report.Has("name")).To(BeTrue())
		Expect(report.Has("email")).To(BeTrue())
		Expect(report.Has("address.country")).To(BeTrue())
	})

	It("generates byte-identical documents across runs", func() {
		second, err := jsonschema.Generate(Customer{},
			jsonschema.WithRefs(true),
			jsonschema.WithDescription("A customer record"),
		)
		Expect(err).NotTo(HaveOccurred())

		first, err := json.Marshal(schema)
		Expect(err).NotTo(HaveOccurred())
		again, err := json.Marshal(second)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(again)).To(Equal(string(first)))
	})
})

var _ = Describe("oneOf cardinality", Label("integration"), func() {
	oneOfSchema := jsonschema.MustParse([]byte(`{
		"oneOf": [
			{"type": "integer"},
			{"type": "number"},
			{"minimum": 100}
		]
	}`))

	branches := []*jsonschema.Schema{
		jsonschema.MustParse([]byte(`{"type": "integer"}`)),
		jsonschema.MustParse([]byte(`{"type": "number"}`)),
		jsonschema.MustParse([]byte(`{"minimum": 100}`)),
	}

	DescribeTable("a value is valid iff exactly one branch matches",
		func(raw string) {
			var instance any
			Expect(json.Unmarshal([]byte(raw), &instance)).To(Succeed())

			count := 0
			for _, branch := range branches {
				if branch.IsValid(instance) {
					count++
				}
			}

			Expect(oneOfSchema.IsValid(instance)).To(Equal(count == 1))
		},
		Entry("fractional number", `1.5`),
		Entry("small integer", `1`),
		Entry("large integer", `150`),
		Entry("large fraction", `150.5`),
		Entry("string above nothing", `"x"`),
		Entry("boolean", `true`),
		Entry("null", `null`),
	)
})
