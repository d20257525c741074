package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// Decode unmarshals a tool's raw argument object into T. A shape mismatch
// (wrong JSON type, malformed JSON) is reported as a [*ValidationError] for
// the named tool, before any service call is made.
func Decode[T any](tool string, raw json.RawMessage) (T, error) {
	var args T
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, &ValidationError{
			Tool:       tool,
			Violations: []string{fmt.Sprintf("arguments do not match the tool's schema: %v", err)},
		}
	}
	return args, nil
}

// RequireKeys performs the ad hoc required-key check used by a subset of
// tools: every listed key must be present in the argument object with a
// non-null value. All missing keys are reported together as a
// [*InvalidArgumentsError]; on failure no service call has been made.
func RequireKeys(tool string, raw json.RawMessage, keys ...string) error {
	present := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &present); err != nil {
			return &InvalidArgumentsError{Tool: tool, Missing: keys}
		}
	}

	var missing []string
	for _, key := range keys {
		v, ok := present[key]
		if !ok || string(v) == "null" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &InvalidArgumentsError{Tool: tool, Missing: missing}
	}
	return nil
}

// BudgetResolver is the capability needed to resolve an implicit budget:
// satisfied by [ynab.Service].
type BudgetResolver interface {
	DefaultBudget(ctx context.Context) (ynab.Budget, error)
}

// ResolveBudgetID resolves the effective budget for an invocation: an
// explicit non-empty budget_id argument wins verbatim; otherwise the
// service's default budget is looked up. Called once per invocation, after
// validation and before any listing or mutating call.
func ResolveBudgetID(ctx context.Context, r BudgetResolver, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	budget, err := r.DefaultBudget(ctx)
	if err != nil {
		return "", err
	}
	return budget.ID, nil
}
