package bol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks serialized records against the record schema. The schema
// is compiled once at construction and reused for every document.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the record schema.
func NewValidator() (*Validator, error) {
	raw, err := json.Marshal(BuildRecordSchema())
	if err != nil {
		return nil, fmt.Errorf("bol: marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("bol_record.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("bol: add schema: %w", err)
	}
	schema, err := compiler.Compile("bol_record.json")
	if err != nil {
		return nil, fmt.Errorf("bol: compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks one serialized record.
func (v *Validator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("bol: unmarshal record: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("bol: record does not match schema: %w", err)
	}
	return nil
}
