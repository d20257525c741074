package tools

import "github.com/google/jsonschema-go/jsonschema"

// Schema construction helpers. Tool packages declare their input schemas with
// these rather than hand-writing the full jsonschema.Schema literals.

// budgetIDDescription is the shared description of the optional budget_id
// argument accepted by most tools.
const budgetIDDescription = "The ID of the budget. If not provided, the default budget will be used."

// Object returns an object schema with the given properties and required
// property names.
func Object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// String returns a string property schema.
func String(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

// Integer returns an integer property schema.
func Integer(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: description}
}

// Number returns a number property schema.
func Number(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: description}
}

// Boolean returns a boolean property schema.
func Boolean(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: description}
}

// Array returns an array property schema with the given item schema.
func Array(description string, items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Description: description, Items: items}
}

// BudgetIDProperty returns the schema of the optional budget_id argument.
func BudgetIDProperty() *jsonschema.Schema {
	return String(budgetIDDescription)
}
