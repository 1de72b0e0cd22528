package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/pai-tos/internal/tos"
)

const requestSchemaTemplate = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"metadata": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"school":  {"type": "string"},
				"teacher": {"type": "string"},
				"grade":   {"type": "string"},
				"subject": {"type": "string"},
				"quarter": {"type": "string"},
				"date":    {"type": "string"}
			}
		},
		"total_items": {"type": "integer", "minimum": %d, "maximum": %d},
		"competencies": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["code"],
				"properties": {
					"code":        {"type": "string", "minLength": 1},
					"description": {"type": "string"}
				}
			}
		},
		"codes": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"free_text": {"type": "string"}
	}
}`

func newRequestSchema(minItems, maxItems int) (*gojsonschema.Schema, error) {
	src := fmt.Sprintf(requestSchemaTemplate, minItems, maxItems)
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compiling request schema: %w", err)
	}
	return schema, nil
}

// validateBody checks a raw request body against the schema. Violations are
// joined into a single invalid-input error.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", tos.ErrInvalidInput, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", tos.ErrInvalidInput, strings.Join(msgs, "; "))
}
