// Package overviewtool provides the financial-overview tools of the YNAB MCP
// server.
//
// Three tools are exported via [Tools]:
//   - "get-financial-overview"            — render the stored document.
//   - "update-financial-overview-section" — replace one section.
//   - "refresh-financial-overview"        — recompute the derived sections
//     (account_balances and monthly_overview) from live budget data.
//
// Refresh only overwrites the sections it derives; manually curated sections
// such as goals or action_items survive every refresh.
package overviewtool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/ynab-mcp/internal/overview"
	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// Category group names the refresh derives its monthly overview from. Groups
// with any other name do not contribute.
const (
	groupBills   = "Bills"
	groupWants   = "Wants"
	groupSavings = "Savings"
)

// makeGetHandler returns the handler for "get-financial-overview".
func makeGetHandler(store overview.Store) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		doc, err := store.Load()
		if err != nil {
			return nil, err
		}

		stamp := doc.LastUpdated()
		if stamp == "" {
			stamp = "Never"
		}

		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("overviewtool: encode overview: %w", err)
		}
		return []string{fmt.Sprintf("Financial Overview (Last Updated: %s):\n\n%s", stamp, body)}, nil
	}
}

// updateSectionArgs is the decoded input for
// "update-financial-overview-section".
type updateSectionArgs struct {
	Section string `json:"section"`
	Data    any    `json:"data"`
}

// makeUpdateSectionHandler returns the handler for
// "update-financial-overview-section".
func makeUpdateSectionHandler(store overview.Store) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		if err := tools.RequireKeys("update-financial-overview-section", raw, "section", "data"); err != nil {
			return nil, err
		}
		args, err := tools.Decode[updateSectionArgs]("update-financial-overview-section", raw)
		if err != nil {
			return nil, err
		}

		if err := store.UpdateSection(args.Section, args.Data); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Successfully updated the %s section of the financial overview.", args.Section)}, nil
	}
}

// refreshArgs is the decoded input for "refresh-financial-overview".
type refreshArgs struct {
	BudgetID string `json:"budget_id"`
}

// makeRefreshHandler returns the handler for "refresh-financial-overview".
func makeRefreshHandler(svc ynab.Service, store overview.Store) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := tools.Decode[refreshArgs]("refresh-financial-overview", raw)
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
		balances := map[string]float64{}
		for _, a := range accounts {
			balances[a.Name] = tools.DisplayUnits(a.Balance)
		}

		groups, err := svc.Categories(ctx, budgetID)
		if err != nil {
			return nil, err
		}
		var bills, wants, savings int64
		for _, g := range groups {
			var total *int64
			switch g.Name {
			case groupBills:
				total = &bills
			case groupWants:
				total = &wants
			case groupSavings:
				total = &savings
			default:
				continue
			}
			for _, c := range g.Categories {
				if c.Hidden {
					continue
				}
				*total += c.Budgeted
			}
		}

		var savingsRate float64
		if total := bills + wants + savings; total != 0 {
			savingsRate = float64(savings) / float64(total) * 100
		}
		monthly := map[string]float64{
			"fixed_bills":            tools.DisplayUnits(bills),
			"discretionary_spending": tools.DisplayUnits(wants),
			"savings_rate":           savingsRate,
		}

		doc, err := store.Load()
		if err != nil {
			return nil, err
		}
		doc["account_balances"] = balances
		doc["monthly_overview"] = monthly
		if err := store.Save(doc); err != nil {
			return nil, err
		}
		return []string{"Successfully refreshed the financial overview with latest YNAB data."}, nil
	}
}

// sectionNames lists the conventional overview sections for the tool
// description. The store itself accepts any section name.
var sectionNames = []string{"account_balances", "monthly_overview", "goals", "action_items"}

// Tools returns the overview tools ready for registration.
func Tools(svc ynab.Service, store overview.Store) []tools.Tool {
	return []tools.Tool{
		{
			Name:        "get-financial-overview",
			Description: "Get the stored financial overview document.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{}),
			Handler:     makeGetHandler(store),
		},
		{
			Name:        "update-financial-overview-section",
			Description: "Update a specific section of the financial overview.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"section": tools.String(fmt.Sprintf("The section to update, e.g. %s.", strings.Join(sectionNames, ", "))),
				"data":    {Description: "The new data for the section."},
			}, "section", "data"),
			Handler: makeUpdateSectionHandler(store),
		},
		{
			Name:        "refresh-financial-overview",
			Description: "Refresh the financial overview document with the latest data from YNAB.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id": tools.BudgetIDProperty(),
			}),
			Handler: makeRefreshHandler(svc, store),
		},
	}
}
