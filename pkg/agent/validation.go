package agent

import (
	"bytes"
	"encoding/json"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateFunc validates data against a JSON schema (bytes) and returns error on failure.
type ValidateFunc func(schema []byte, data any) error

// compiled caches schemas by their source text; tool schemas are static.
var compiled sync.Map // string -> *jsonschema.Schema

// JSONSchemaValidator is a ValidateFunc using jsonschema/v6.
func JSONSchemaValidator(schema []byte, data any) error {
	if len(schema) == 0 {
		return nil
	}
	sch, err := compile(schema)
	if err != nil {
		return err
	}
	// Round-trip through JSON so Go values (ints, typed maps) validate as their wire form.
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return err
	}
	return sch.Validate(v)
}

// CompileJSONSchema compiles the provided JSON schema and returns error only if the schema is invalid.
// It does not validate any instance data.
func CompileJSONSchema(schema []byte) error {
	if len(schema) == 0 {
		return nil
	}
	_, err := compile(schema)
	return err
}

func compile(schema []byte) (*jsonschema.Schema, error) {
	key := string(schema)
	if s, ok := compiled.Load(key); ok {
		return s.(*jsonschema.Schema), nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile("mem://schema.json")
	if err != nil {
		return nil, err
	}
	compiled.Store(key, sch)
	return sch, nil
}
