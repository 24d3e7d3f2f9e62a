// internal/api/schema.go
package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// entitySchema validates the extractor payload at the HTTP boundary, so a
// malformed extractor never reaches the pipeline as a half-parsed struct.
const entitySchema = `{
	"type": "object",
	"properties": {
		"location": {
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"type": {"type": "string"},
				"confidence": {"type": "number", "minimum": 0, "maximum": 1}
			}
		},
		"temporal": {
			"type": "object",
			"properties": {
				"year": {"type": "string"},
				"month": {"type": "string"},
				"season": {"type": "string"},
				"relative": {"type": "string"},
				"explicit_range": {"type": "string"}
			}
		},
		"topic": {
			"type": "object",
			"properties": {
				"type": {"type": "string"},
				"name": {"type": "string"},
				"confidence": {"type": "number", "minimum": 0, "maximum": 1}
			}
		},
		"intent": {
			"type": "object",
			"properties": {
				"type": {"type": "string"}
			}
		}
	},
	"additionalProperties": false
}`

var entitySchemaLoader = gojsonschema.NewStringLoader(entitySchema)

// validateEntities checks the raw entities document against the schema and
// flattens violations into one message.
func validateEntities(raw []byte) error {
	result, err := gojsonschema.Validate(entitySchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("entities are not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("entities failed validation: %s", strings.Join(msgs, "; "))
}
