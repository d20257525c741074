package tools

import (
	"fmt"
	"strings"
)

// UnknownToolError is an invocation of a tool name that is not in the
// catalogue.
type UnknownToolError struct {
	// Name is the unrecognised tool name as received.
	Name string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// ValidationError is a typed-schema rejection of a tool's arguments. It is
// raised before any service call, so no mutation has occurred, and it lists
// every violated constraint rather than only the first.
type ValidationError struct {
	// Tool is the name of the tool whose arguments were rejected.
	Tool string

	// Violations holds one message per violated constraint.
	Violations []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid arguments: %s", e.Tool, strings.Join(e.Violations, "; "))
}

// InvalidArgumentsError is an ad hoc required-key check failure. Like
// [ValidationError] it is raised before any service call.
type InvalidArgumentsError struct {
	// Tool is the name of the tool whose arguments were rejected.
	Tool string

	// Missing lists the required keys that were absent (or null).
	Missing []string
}

// Error implements the error interface.
func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("%s: missing required arguments: %s", e.Tool, strings.Join(e.Missing, ", "))
}
