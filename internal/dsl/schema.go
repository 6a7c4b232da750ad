package dsl

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	yaml "gopkg.in/yaml.v3"
)

func GetJSONSchema() string {
	return `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["version", "name", "chatbot_id", "cases"],
		"properties": {
			"version": {
				"type": "string",
				"enum": ["v1"]
			},
			"name": {
				"type": "string",
				"minLength": 1
			},
			"description": {
				"type": "string"
			},
			"chatbot_id": {
				"type": "string",
				"minLength": 1
			},
			"cases": {
				"type": "array",
				"items": {
					"$ref": "#/definitions/case"
				},
				"minItems": 1
			}
		},
		"definitions": {
			"case": {
				"type": "object",
				"required": ["message"],
				"properties": {
					"id": {
						"type": "string",
						"pattern": "^[a-zA-Z0-9][a-zA-Z0-9_-]*$"
					},
					"message": {
						"type": "string",
						"minLength": 1
					},
					"expect_contains": {
						"type": "string"
					}
				}
			}
		}
	}`
}

func ValidateYAMLWithSchema(yamlPayload []byte) error {
	var data interface{}
	if err := yaml.Unmarshal(yamlPayload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(GetJSONSchema())
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}

	if !result.Valid() {
		var errMsg string
		for _, desc := range result.Errors() {
			errMsg += fmt.Sprintf("- %s\n", desc)
		}
		return fmt.Errorf("schema validation failed:\n%s", errMsg)
	}

	return nil
}
