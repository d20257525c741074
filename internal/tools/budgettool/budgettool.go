// Package budgettool provides the budget-level tools of the YNAB MCP server.
//
// Three tools are exported via [Tools]:
//   - "list-budgets"         — enumerate all budgets visible to the token.
//   - "assign-budget-amount" — set a category's budgeted amount for a month.
//   - "move-budget-amount"   — transfer a budgeted amount between two
//     categories in the same month.
//
// move-budget-amount is a read-then-write two-step without upstream
// atomicity: both categories are read, then two assigns are issued strictly
// sequentially. When the second assign fails, a compensating reversal of the
// first is attempted, and the error reports whichever of rolled-back /
// left-inconsistent actually occurred.
package budgettool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// assignArgs is the decoded input for the "assign-budget-amount" tool.
type assignArgs struct {
	BudgetID   string `json:"budget_id"`
	Month      string `json:"month"`
	CategoryID string `json:"category_id"`
	Amount     int64  `json:"amount"`
}

// moveArgs is the decoded input for the "move-budget-amount" tool.
type moveArgs struct {
	BudgetID       string `json:"budget_id"`
	Month          string `json:"month"`
	FromCategoryID string `json:"from_category_id"`
	ToCategoryID   string `json:"to_category_id"`
	Amount         int64  `json:"amount"`
}

// makeListBudgetsHandler returns the handler for "list-budgets".
func makeListBudgetsHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, _ json.RawMessage) ([]string, error) {
		budgets, err := svc.Budgets(ctx)
		if err != nil {
			return nil, err
		}
		if len(budgets) == 0 {
			return []string{"No budgets found."}, nil
		}

		var sb strings.Builder
		sb.WriteString("Here are your available budgets:")
		for _, b := range budgets {
			fmt.Fprintf(&sb, "\n- %s (ID: %s)", b.Name, b.ID)
		}
		return []string{sb.String()}, nil
	}
}

// makeAssignHandler returns the handler for "assign-budget-amount".
// Required keys are checked ad hoc before any service call.
func makeAssignHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		if err := tools.RequireKeys("assign-budget-amount", raw, "month", "category_id", "amount"); err != nil {
			return nil, err
		}
		args, err := tools.Decode[assignArgs]("assign-budget-amount", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		if err := svc.AssignBudgetAmount(ctx, budgetID, args.Month, args.CategoryID, args.Amount); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Successfully assigned %s to category %s for %s.",
			tools.Amount(args.Amount), args.CategoryID, args.Month)}, nil
	}
}

// makeMoveHandler returns the handler for "move-budget-amount".
//
// The transfer is conservative: from.budgeted + to.budgeted is unchanged by a
// successful move. The two assigns run strictly sequentially (the second
// target value depends on the committed first read, and the upstream API
// offers no atomicity across the writes).
func makeMoveHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		if err := tools.RequireKeys("move-budget-amount", raw,
			"month", "from_category_id", "to_category_id", "amount"); err != nil {
			return nil, err
		}
		args, err := tools.Decode[moveArgs]("move-budget-amount", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		fromCat, err := svc.MonthCategory(ctx, budgetID, args.Month, args.FromCategoryID)
		if err != nil {
			return nil, err
		}
		toCat, err := svc.MonthCategory(ctx, budgetID, args.Month, args.ToCategoryID)
		if err != nil {
			return nil, err
		}

		newFrom := fromCat.Budgeted - args.Amount
		newTo := toCat.Budgeted + args.Amount

		if err := svc.AssignBudgetAmount(ctx, budgetID, args.Month, args.FromCategoryID, newFrom); err != nil {
			return nil, fmt.Errorf("move-budget-amount: debit from category %s failed, no changes were applied: %w",
				args.FromCategoryID, err)
		}

		if err := svc.AssignBudgetAmount(ctx, budgetID, args.Month, args.ToCategoryID, newTo); err != nil {
			// Compensate: restore the debited category to its pre-move value.
			if rbErr := svc.AssignBudgetAmount(ctx, budgetID, args.Month, args.FromCategoryID, fromCat.Budgeted); rbErr != nil {
				return nil, fmt.Errorf("move-budget-amount: credit to category %s failed (%v) and the rollback of category %s also failed; the budget is left inconsistent with only the debit applied, manual reconciliation required: %w",
					args.ToCategoryID, err, args.FromCategoryID, rbErr)
			}
			return nil, fmt.Errorf("move-budget-amount: credit to category %s failed; the debit from category %s was rolled back, no net change: %w",
				args.ToCategoryID, args.FromCategoryID, err)
		}

		return []string{fmt.Sprintf("Successfully moved %s from category %s to %s for %s.",
			tools.Amount(args.Amount), fromCat.Name, toCat.Name, args.Month)}, nil
	}
}

// Tools returns the budget tools ready for registration.
func Tools(svc ynab.Service) []tools.Tool {
	return []tools.Tool{
		{
			Name:        "list-budgets",
			Description: "List all available YNAB budgets",
			InputSchema: tools.Object(nil),
			Handler:     makeListBudgetsHandler(svc),
		},
		{
			Name:        "assign-budget-amount",
			Description: "Assign a specific amount to a category for a given month",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id":   tools.BudgetIDProperty(),
				"month":       tools.String("The month in YYYY-MM-DD format"),
				"category_id": tools.String("The ID of the category"),
				"amount":      tools.Integer("The amount to assign in milliunits"),
			}, "month", "category_id", "amount"),
			Handler: makeAssignHandler(svc),
		},
		{
			Name:        "move-budget-amount",
			Description: "Move a specific amount from one category to another in a given month.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id":        tools.BudgetIDProperty(),
				"month":            tools.String("The month in YYYY-MM-DD format"),
				"from_category_id": tools.String("The ID of the category to move money from"),
				"to_category_id":   tools.String("The ID of the category to move money to"),
				"amount":           tools.Integer("The amount to move in milliunits"),
			}, "month", "from_category_id", "to_category_id", "amount"),
			Handler: makeMoveHandler(svc),
		},
	}
}
