package tools

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	invopop "github.com/invopop/jsonschema"
)

// schemaFor reflects a JSON schema from the argument struct A and converts
// it onto the SDK's schema type. Reflection happens through
// invopop/jsonschema so struct tags carry descriptions and enums; the
// result is strict (additionalProperties=false) and inlined (no $defs).
// Panics on reflection failure: argument structs are compile-time fixtures,
// so a failure here is a programming error, not an input condition.
func schemaFor[A any]() *jsonschema.Schema {
	r := &invopop.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(A))
	if s == nil {
		panic(fmt.Sprintf("tools: no schema reflected for %T", *new(A)))
	}

	raw, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("tools: encode schema for %T: %v", *new(A), err))
	}
	var out jsonschema.Schema
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("tools: convert schema for %T: %v", *new(A), err))
	}
	return &out
}
