package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const paramsSchemaURL = "horde://params.schema.json"

var (
	paramsSchemaOnce sync.Once
	paramsSchema     *jsonschema.Schema
	paramsSchemaErr  error
)

func compiledParamsSchema() (*jsonschema.Schema, error) {
	paramsSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(paramsSchemaURL, bytes.NewReader(paramsSchemaJSON)); err != nil {
			paramsSchemaErr = fmt.Errorf("config: cannot load params schema: %w", err)
			return
		}
		paramsSchema, paramsSchemaErr = c.Compile(paramsSchemaURL)
	})
	return paramsSchema, paramsSchemaErr
}

// ValidateParams checks a YAML params document against the embedded JSON
// Schema before it is decoded.
func ValidateParams(data []byte) error {
	s, err := compiledParamsSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: cannot parse params: %w", err)
	}
	// Round trip through JSON so the validator sees JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: cannot convert params: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("config: cannot convert params: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("config: invalid params: %w", err)
	}
	return nil
}
