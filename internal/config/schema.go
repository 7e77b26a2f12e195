package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// configSchema is the structural contract for the config file. Semantic rules
// that a schema cannot express (cross-field constraints, enum-dependent
// bounds) live in Validate.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "listen": { "type": "string" },
    "workers": { "type": "integer", "minimum": 0 },
    "queueSize": { "type": "integer", "minimum": 0 },
    "requestTimeout": { "type": "string" },
    "source": { "type": "string", "enum": ["thread", "process"] },
    "sieveLimit": { "type": "integer", "minimum": 0 },
    "targetPrimes": { "type": "integer", "minimum": 0 },
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": { "type": "string", "enum": ["trace", "debug", "info", "warn", "error"] }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("config.schema.json", configSchema)

// validateSchema checks the raw YAML document against the embedded schema.
// The document is round-tripped through JSON so the validator sees the value
// types it understands.
func validateSchema(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if doc == nil {
		return nil // empty file: defaults apply
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalizing config: %w", err)
	}
	var jsonDoc interface{}
	if err := json.Unmarshal(jsonBytes, &jsonDoc); err != nil {
		return fmt.Errorf("normalizing config: %w", err)
	}

	if err := compiledSchema.Validate(jsonDoc); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}
