package tools

// ObjectSchema returns an object schema with the given properties. A nil
// properties map yields a schema that accepts any object.
func ObjectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringSchema returns a plain string property
func StringSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// NonEmptyStringSchema returns a string property that must not be empty
func NonEmptyStringSchema(description string) map[string]interface{} {
	s := StringSchema(description)
	s["minLength"] = 1
	return s
}

// BoolSchema returns a boolean property
func BoolSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

// IntegerSchema returns an integer property with an optional lower bound
func IntegerSchema(description string, minimum *int) map[string]interface{} {
	s := map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
	if minimum != nil {
		s["minimum"] = *minimum
	}
	return s
}

// EnumSchema returns a string property restricted to values
func EnumSchema(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}

// StringArraySchema returns an array-of-strings property
func StringArraySchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       map[string]interface{}{"type": "string"},
	}
}

// PaginationSchema returns the page / per_page properties
func PaginationSchema() map[string]interface{} {
	return map[string]interface{}{
		"page": map[string]interface{}{
			"type":        "integer",
			"description": "Page number to retrieve (1-based)",
			"minimum":     1,
		},
		"per_page": map[string]interface{}{
			"type":        "integer",
			"description": "Number of results per page (1-100)",
			"minimum":     1,
			"maximum":     100,
		},
	}
}

// Merge copies every property map into one, later maps winning
func Merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Min is a helper for IntegerSchema bounds
func Min(n int) *int {
	return &n
}
