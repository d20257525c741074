// Package categorytool provides the category listing tool of the YNAB MCP
// server.
//
// "list-categories" renders every visible category group with per-category
// budgeted / spent / balance amounts, and appends goal progress for
// categories that carry a goal. Hidden groups and hidden categories are
// skipped.
package categorytool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// listArgs is the decoded input for the "list-categories" tool.
type listArgs struct {
	BudgetID string `json:"budget_id"`
}

// makeListHandler returns the handler for "list-categories".
func makeListHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := tools.Decode[listArgs]("list-categories", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		groups, err := svc.Categories(ctx, budgetID)
		if err != nil {
			return nil, err
		}
		if len(groups) == 0 {
			return []string{"No categories found for this budget."}, nil
		}

		var sb strings.Builder
		sb.WriteString("Here are the available categories and their status for the current month:\n")
		for _, group := range groups {
			if group.Hidden || len(group.Categories) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "\n--- %s ---\n", group.Name)
			for _, cat := range group.Categories {
				if cat.Hidden {
					continue
				}
				fmt.Fprintf(&sb, "- %s (ID: %s)\n  - Budgeted: %s, Spent: %s, Balance: %s\n",
					cat.Name, cat.ID,
					tools.Amount(cat.Budgeted), tools.AbsAmount(cat.Activity), tools.Amount(cat.Balance))
				if cat.GoalType != nil {
					sb.WriteString(goalLine(cat))
				}
			}
		}
		return []string{sb.String()}, nil
	}
}

// goalLine renders a category's goal progress: goal type, target amount (or
// "N/A" when unset), and percent complete (0 when unset).
func goalLine(cat ynab.Category) string {
	target := "N/A"
	if cat.GoalTarget != nil && *cat.GoalTarget != 0 {
		target = tools.Amount(*cat.GoalTarget)
	}
	percent := 0
	if cat.GoalPercentageComplete != nil {
		percent = *cat.GoalPercentageComplete
	}
	return fmt.Sprintf("  - Goal (%s): Target %s, %d%% complete\n", *cat.GoalType, target, percent)
}

// Tools returns the category tools ready for registration.
func Tools(svc ynab.Service) []tools.Tool {
	return []tools.Tool{
		{
			Name: "list-categories",
			Description: "List all categories for a given budget, including their budgeted amounts, " +
				"activity, and goals.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id": tools.BudgetIDProperty(),
			}),
			Handler: makeListHandler(svc),
		},
	}
}
