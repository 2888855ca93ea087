package sources

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// venueSchema is the minimum an AI-generated element must carry before it
// is mapped. Stricter checks happen in domain.Validate.
var venueSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "category", "description", "latitude", "longitude", "cost_range"},
	"properties": map[string]any{
		"name":        map[string]any{"type": "string", "minLength": 1},
		"category":    map[string]any{"type": "string"},
		"description": map[string]any{"type": "string", "minLength": 1},
		"latitude":    map[string]any{"type": "number"},
		"longitude":   map[string]any{"type": "number"},
		"cost_range": map[string]any{
			"oneOf": []any{
				map[string]any{"type": "array", "items": map[string]any{"type": "number", "minimum": 0}, "minItems": 2, "maxItems": 2},
				map[string]any{
					"type":     "object",
					"required": []any{"max"},
					"properties": map[string]any{
						"min": map[string]any{"type": "number", "minimum": 0},
						"max": map[string]any{"type": "number", "minimum": 0},
					},
				},
			},
		},
		"accessibility":       map[string]any{"type": "object"},
		"dietary_options":     map[string]any{"type": "object"},
		"weather_suitability": map[string]any{"type": "string"},
		"difficulty":          map[string]any{"type": "number", "minimum": 1, "maximum": 5},
	},
}

func validateVenue(data map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(venueSchema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("venue does not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
