// Package payeetool provides the payee tools of the YNAB MCP server.
//
// Three tools are exported via [Tools]:
//   - "list-payees"           — enumerate all payees of a budget.
//   - "rename-payees"         — set a batch of payees to a single new name,
//     used for cleaning up and merging similar payees.
//   - "find-duplicate-payees" — cluster likely-duplicate payee names by
//     Jaro-Winkler similarity, producing ready-to-merge id groups for
//     rename-payees.
package payeetool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// defaultSimilarityThreshold is the minimum Jaro-Winkler score for two payee
// names to be considered duplicates of each other.
const defaultSimilarityThreshold = 0.85

// listArgs is the decoded input for the "list-payees" tool.
type listArgs struct {
	BudgetID string `json:"budget_id"`
}

// renameArgs is the decoded input for the "rename-payees" tool.
type renameArgs struct {
	BudgetID string   `json:"budget_id"`
	PayeeIDs []string `json:"payee_ids"`
	Name     string   `json:"name"`
}

// duplicatesArgs is the decoded input for the "find-duplicate-payees" tool.
type duplicatesArgs struct {
	BudgetID string `json:"budget_id"`

	// Threshold overrides the minimum similarity score in (0, 1].
	// Zero means the default of 0.85.
	Threshold float64 `json:"threshold"`
}

// makeListHandler returns the handler for "list-payees".
func makeListHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := tools.Decode[listArgs]("list-payees", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		payees, err := svc.Payees(ctx, budgetID)
		if err != nil {
			return nil, err
		}
		if len(payees) == 0 {
			return []string{"No payees found for this budget."}, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Here are the payees for budget %s:", budgetID)
		for _, p := range payees {
			fmt.Fprintf(&sb, "\n- %s (ID: %s)", p.Name, p.ID)
		}
		return []string{sb.String()}, nil
	}
}

// makeRenameHandler returns the handler for "rename-payees". Required keys
// are checked ad hoc. An empty payee_ids list is not an error: the bulk
// update is still issued (as a no-op) and the report counts zero payees.
func makeRenameHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		if err := tools.RequireKeys("rename-payees", raw, "payee_ids", "name"); err != nil {
			return nil, err
		}
		args, err := tools.Decode[renameArgs]("rename-payees", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		if err := svc.RenamePayees(ctx, budgetID, args.PayeeIDs, args.Name); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Successfully renamed %d payees to '%s'.", len(args.PayeeIDs), args.Name)}, nil
	}
}

// makeDuplicatesHandler returns the handler for "find-duplicate-payees".
func makeDuplicatesHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := tools.Decode[duplicatesArgs]("find-duplicate-payees", raw)
		if err != nil {
			return nil, err
		}
		threshold := args.Threshold
		if threshold <= 0 || threshold > 1 {
			threshold = defaultSimilarityThreshold
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		payees, err := svc.Payees(ctx, budgetID)
		if err != nil {
			return nil, err
		}

		clusters := clusterPayees(payees, threshold)
		if len(clusters) == 0 {
			return []string{"No likely duplicate payees found."}, nil
		}

		var sb strings.Builder
		sb.WriteString("Likely duplicate payees (pass the IDs of a group to rename-payees to merge them):")
		for i, cluster := range clusters {
			fmt.Fprintf(&sb, "\n\nGroup %d:", i+1)
			for _, p := range cluster {
				fmt.Fprintf(&sb, "\n- %s (ID: %s)", p.Name, p.ID)
			}
		}
		return []string{sb.String()}, nil
	}
}

// clusterPayees groups payees whose names score at or above threshold against
// any member already in the group. Comparison is case-insensitive on trimmed
// names; groups with fewer than two members are dropped. Input order is
// preserved within and across groups.
func clusterPayees(payees []ynab.Payee, threshold float64) [][]ynab.Payee {
	var clusters [][]ynab.Payee
	assigned := make([]bool, len(payees))

	normalized := make([]string, len(payees))
	for i, p := range payees {
		normalized[i] = strings.ToLower(strings.TrimSpace(p.Name))
	}

	for i := range payees {
		if assigned[i] || normalized[i] == "" {
			continue
		}
		cluster := []ynab.Payee{payees[i]}
		members := []string{normalized[i]}
		assigned[i] = true

		for j := i + 1; j < len(payees); j++ {
			if assigned[j] || normalized[j] == "" {
				continue
			}
			for _, member := range members {
				if matchr.JaroWinkler(member, normalized[j], false) >= threshold {
					cluster = append(cluster, payees[j])
					members = append(members, normalized[j])
					assigned[j] = true
					break
				}
			}
		}

		if len(cluster) > 1 {
			clusters = append(clusters, cluster)
		}
	}
	return clusters
}

// Tools returns the payee tools ready for registration.
func Tools(svc ynab.Service) []tools.Tool {
	return []tools.Tool{
		{
			Name:        "list-payees",
			Description: "List all payees for a given budget",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id": tools.BudgetIDProperty(),
			}),
			Handler: makeListHandler(svc),
		},
		{
			Name: "rename-payees",
			Description: "Update multiple payees to a single new name. " +
				"This is useful for cleaning up and merging similar payees.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"payee_ids": tools.Array("The IDs of the payees to update.", tools.String("")),
				"name":      tools.String("The new name for the payees."),
				"budget_id": tools.BudgetIDProperty(),
			}, "payee_ids", "name"),
			Handler: makeRenameHandler(svc),
		},
		{
			Name: "find-duplicate-payees",
			Description: "Find groups of payees whose names are likely duplicates of each other, " +
				"ready to merge with rename-payees.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id": tools.BudgetIDProperty(),
				"threshold": tools.Number("Minimum name similarity between 0 and 1. Defaults to 0.85."),
			}),
			Handler: makeDuplicatesHandler(svc),
		},
	}
}
