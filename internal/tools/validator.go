package tools

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const rootField = "(root)"

// validateArguments checks args against a compiled schema and reports every
// violation rather than the first.
func validateArguments(schema *gojsonschema.Schema, name string, args json.RawMessage) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		// not parseable as JSON at all
		return invalidInput(name, []Violation{{Field: rootField, Description: fmt.Sprintf("invalid JSON: %v", err)}})
	}
	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, Violation{
			Field:       violationField(re),
			Description: re.Description(),
		})
	}
	return invalidInput(name, violations)
}

// violationField names the offending property. Required-property errors are
// reported by gojsonschema against the parent object, so the missing
// property is appended.
func violationField(re gojsonschema.ResultError) string {
	field := re.Field()
	if re.Type() != "required" {
		return field
	}
	prop, ok := re.Details()["property"].(string)
	if !ok || prop == "" {
		return field
	}
	if field == rootField || field == "" {
		return prop
	}
	return field + "." + prop
}
