// Package accounttool provides the account listing tool of the YNAB MCP
// server.
package accounttool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// listArgs is the decoded input for the "list-accounts" tool.
type listArgs struct {
	BudgetID string `json:"budget_id"`
}

// makeListHandler returns the handler for "list-accounts".
func makeListHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := tools.Decode[listArgs]("list-accounts", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		accounts, err := svc.Accounts(ctx, budgetID)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return []string{"No accounts found for this budget."}, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Here are the accounts for budget %s:", budgetID)
		for _, acc := range accounts {
			fmt.Fprintf(&sb, "\n- %s (ID: %s): %s (Type: %s)",
				acc.Name, acc.ID, tools.Amount(acc.Balance), acc.Type)
		}
		return []string{sb.String()}, nil
	}
}

// Tools returns the account tools ready for registration.
func Tools(svc ynab.Service) []tools.Tool {
	return []tools.Tool{
		{
			Name:        "list-accounts",
			Description: "List all accounts for a given budget",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id": tools.BudgetIDProperty(),
			}),
			Handler: makeListHandler(svc),
		},
	}
}
