package llm

// outlineFormat asks providers that support constrained decoding for a bare
// {"slides": [...]} object. Strict mode requires every property to be listed
// as required and additionalProperties to be false.
func outlineFormat() *responseFormat {
	slide := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title": map[string]interface{}{"type": "string"},
			"content": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"notes": map[string]interface{}{"type": "string"},
		},
		"required":             []string{"title", "content", "notes"},
		"additionalProperties": false,
	}

	return &responseFormat{
		Type: "json_schema",
		JSONSchema: &jsonSchema{
			Name:   "slide_outline",
			Strict: true,
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"slides": map[string]interface{}{
						"type":  "array",
						"items": slide,
					},
				},
				"required":             []string{"slides"},
				"additionalProperties": false,
			},
		},
	}
}
