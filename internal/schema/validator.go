package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
)

//go:embed pipeline.schema.yaml
var pipelineSchemaYAML []byte

// Validator handles JSON schema validation of pipeline documents.
type Validator struct {
	pipelineSchema *jsonschema.Schema
}

// NewValidator creates a new schema validator from the embedded schema.
func NewValidator() (*Validator, error) {
	schema, err := compileSchema("pipeline.schema.json", pipelineSchemaYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline schema: %w", err)
	}
	return &Validator{pipelineSchema: schema}, nil
}

// ValidatePipeline validates a decoded pipeline document against the schema.
func (v *Validator) ValidatePipeline(doc interface{}) error {
	return v.pipelineSchema.Validate(doc)
}

// UnknownCaches returns the cache kinds declared by the document's steps
// that the registry has no directory for, in declaration order.
func UnknownCaches(doc interface{}, registry *cachedir.Registry) []string {
	root, ok := doc.(map[string]interface{})
	if !ok {
		return nil
	}

	steps, ok := root["steps"].([]interface{})
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var unknown []string
	for _, raw := range steps {
		step, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		caches, ok := step["caches"].([]interface{})
		if !ok {
			continue
		}
		for _, entry := range caches {
			kind, ok := entry.(string)
			if !ok || seen[kind] || registry.Supported(kind) {
				continue
			}
			seen[kind] = true
			unknown = append(unknown, kind)
		}
	}

	return unknown
}

// compileSchema parses a YAML schema document, converts it to JSON and
// compiles it.
func compileSchema(url string, data []byte) (*jsonschema.Schema, error) {
	var schemaData interface{}
	if err := yaml.Unmarshal(data, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	jsonData, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schema, err := jsonschema.CompileString(url, string(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return schema, nil
}
