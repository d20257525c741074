// Package transactiontool provides the transaction tools of the YNAB MCP
// server.
//
// Six tools are exported via [Tools]:
//   - "list-transactions"           — transactions of one account.
//   - "list-monthly-transactions"   — one month's transactions across all
//     accounts.
//   - "list-scheduled-transactions" — upcoming recurring transactions.
//   - "create-transaction"          — create a new transaction.
//   - "update-transactions"         — bulk-update existing transactions.
//   - "delete-transaction"          — delete a transaction.
//
// Optional fields of create and update requests are modelled as pointers:
// nil means "not provided" and is stripped from the upstream request rather
// than transmitted as an explicit null, which the YNAB API rejects.
package transactiontool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// listArgs is the decoded input for the "list-transactions" tool.
type listArgs struct {
	BudgetID  string `json:"budget_id"`
	AccountID string `json:"account_id"`
	SinceDate string `json:"since_date"`
	Limit     int    `json:"limit"`
}

// validate reports every violated constraint.
func (a listArgs) validate() []string {
	var violations []string
	if a.AccountID == "" {
		violations = append(violations, "account_id is required")
	}
	if a.Limit < 0 {
		violations = append(violations, "limit must not be negative")
	}
	return violations
}

// monthlyArgs is the decoded input for the "list-monthly-transactions" tool.
type monthlyArgs struct {
	BudgetID string `json:"budget_id"`
	Month    string `json:"month"`
	Limit    int    `json:"limit"`
}

// validate reports every violated constraint.
func (a monthlyArgs) validate() []string {
	var violations []string
	if a.Month == "" {
		violations = append(violations, "month is required")
	}
	if a.Limit < 0 {
		violations = append(violations, "limit must not be negative")
	}
	return violations
}

// scheduledArgs is the decoded input for "list-scheduled-transactions".
type scheduledArgs struct {
	BudgetID string `json:"budget_id"`
}

// createArgs is the decoded input for the "create-transaction" tool.
// Amount is a pointer so that a missing amount is distinguishable from an
// explicit zero.
type createArgs struct {
	BudgetID  string `json:"budget_id"`
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	Amount    *int64 `json:"amount"`

	PayeeID    *string `json:"payee_id"`
	PayeeName  *string `json:"payee_name"`
	CategoryID *string `json:"category_id"`
	Memo       *string `json:"memo"`
	Cleared    *string `json:"cleared"`
	Approved   bool    `json:"approved"`
	FlagColor  *string `json:"flag_color"`
	ImportID   *string `json:"import_id"`
}

// validate reports every violated constraint.
func (a createArgs) validate() []string {
	var violations []string
	if a.AccountID == "" {
		violations = append(violations, "account_id is required")
	}
	if a.Date == "" {
		violations = append(violations, "date is required")
	}
	if a.Amount == nil {
		violations = append(violations, "amount is required")
	}
	return violations
}

// updateRecord is one entry of the "update-transactions" input. Only ID is
// required; nil fields are stripped from the upstream request.
type updateRecord struct {
	ID string `json:"id"`

	AccountID  *string `json:"account_id"`
	Date       *string `json:"date"`
	Amount     *int64  `json:"amount"`
	PayeeID    *string `json:"payee_id"`
	CategoryID *string `json:"category_id"`
	Memo       *string `json:"memo"`
	Cleared    *string `json:"cleared"`
	Approved   *bool   `json:"approved"`
	FlagColor  *string `json:"flag_color"`
}

// updateArgs is the decoded input for the "update-transactions" tool.
type updateArgs struct {
	BudgetID     string         `json:"budget_id"`
	Transactions []updateRecord `json:"transactions"`
}

// validate reports every violated constraint across all records.
func (a updateArgs) validate() []string {
	var violations []string
	if len(a.Transactions) == 0 {
		violations = append(violations, "transactions must contain at least one record")
	}
	for i, tx := range a.Transactions {
		if tx.ID == "" {
			violations = append(violations, fmt.Sprintf("transactions[%d]: id is required", i))
		}
	}
	return violations
}

// deleteArgs is the decoded input for the "delete-transaction" tool.
type deleteArgs struct {
	BudgetID      string `json:"budget_id"`
	TransactionID string `json:"transaction_id"`
}

// validate reports every violated constraint.
func (a deleteArgs) validate() []string {
	if a.TransactionID == "" {
		return []string{"transaction_id is required"}
	}
	return nil
}

// decodeValidated decodes raw into T and applies its validate method,
// reporting all violations as one *tools.ValidationError.
func decodeValidated[T interface{ validate() []string }](tool string, raw json.RawMessage) (T, error) {
	args, err := tools.Decode[T](tool, raw)
	if err != nil {
		return args, err
	}
	if violations := args.validate(); len(violations) > 0 {
		return args, &tools.ValidationError{Tool: tool, Violations: violations}
	}
	return args, nil
}

// makeListHandler returns the handler for "list-transactions".
func makeListHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := decodeValidated[listArgs]("list-transactions", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		txs, err := svc.Transactions(ctx, budgetID, args.AccountID, args.SinceDate, args.Limit)
		if err != nil {
			return nil, err
		}
		if len(txs) == 0 {
			return []string{"No transactions found for this account."}, nil
		}

		var sb strings.Builder
		sb.WriteString("Here are the latest transactions:")
		for _, t := range txs {
			fmt.Fprintf(&sb, "\n- %s: %s | %s | %s (ID: %s)",
				t.Date, tools.OrNA(t.PayeeName), tools.OrNA(t.CategoryName),
				tools.Amount(t.Amount), t.ID)
		}
		return []string{sb.String()}, nil
	}
}

// makeListMonthlyHandler returns the handler for "list-monthly-transactions".
func makeListMonthlyHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := decodeValidated[monthlyArgs]("list-monthly-transactions", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		txs, err := svc.MonthTransactions(ctx, budgetID, args.Month, args.Limit)
		if err != nil {
			return nil, err
		}
		if len(txs) == 0 {
			return []string{"No transactions found for this month."}, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Here are the transactions for %s:", args.Month)
		for _, t := range txs {
			fmt.Fprintf(&sb, "\n- %s: %s | %s | %s | %s (ID: %s)",
				t.Date, tools.OrNA(t.PayeeName), tools.OrNA(t.CategoryName),
				t.AccountName, tools.Amount(t.Amount), t.ID)
		}
		return []string{sb.String()}, nil
	}
}

// makeListScheduledHandler returns the handler for
// "list-scheduled-transactions".
func makeListScheduledHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := tools.Decode[scheduledArgs]("list-scheduled-transactions", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		txs, err := svc.ScheduledTransactions(ctx, budgetID)
		if err != nil {
			return nil, err
		}
		if len(txs) == 0 {
			return []string{"No scheduled transactions found."}, nil
		}

		var sb strings.Builder
		sb.WriteString("Here are the scheduled transactions:")
		for _, t := range txs {
			fmt.Fprintf(&sb, "\n- %s: %s | %s | %s (Frequency: %s)",
				t.DateNext, tools.OrNA(t.PayeeName), tools.OrNA(t.CategoryName),
				tools.Amount(t.Amount), t.Frequency)
		}
		return []string{sb.String()}, nil
	}
}

// makeCreateHandler returns the handler for "create-transaction".
func makeCreateHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := decodeValidated[createArgs]("create-transaction", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		// Pointers carry through unchanged: nil optionals are omitted from
		// the request body entirely. The amount's sign is preserved verbatim.
		created, err := svc.CreateTransaction(ctx, budgetID, ynab.NewTransaction{
			AccountID:  args.AccountID,
			Date:       args.Date,
			Amount:     *args.Amount,
			PayeeID:    args.PayeeID,
			PayeeName:  args.PayeeName,
			CategoryID: args.CategoryID,
			Memo:       args.Memo,
			Cleared:    args.Cleared,
			Approved:   args.Approved,
			FlagColor:  args.FlagColor,
			ImportID:   args.ImportID,
		})
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Successfully created transaction with ID: %s", created.ID)}, nil
	}
}

// makeUpdateHandler returns the handler for "update-transactions".
func makeUpdateHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := decodeValidated[updateArgs]("update-transactions", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		updates := make([]ynab.TransactionUpdate, len(args.Transactions))
		for i, tx := range args.Transactions {
			updates[i] = ynab.TransactionUpdate{
				ID:         tx.ID,
				AccountID:  tx.AccountID,
				Date:       tx.Date,
				Amount:     tx.Amount,
				PayeeID:    tx.PayeeID,
				CategoryID: tx.CategoryID,
				Memo:       tx.Memo,
				Cleared:    tx.Cleared,
				Approved:   tx.Approved,
				FlagColor:  tx.FlagColor,
			}
		}

		n, err := svc.UpdateTransactions(ctx, budgetID, updates)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Successfully updated %d transactions.", n)}, nil
	}
}

// makeDeleteHandler returns the handler for "delete-transaction".
func makeDeleteHandler(svc ynab.Service) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) ([]string, error) {
		args, err := decodeValidated[deleteArgs]("delete-transaction", raw)
		if err != nil {
			return nil, err
		}

		budgetID, err := tools.ResolveBudgetID(ctx, svc, args.BudgetID)
		if err != nil {
			return nil, err
		}

		if err := svc.DeleteTransaction(ctx, budgetID, args.TransactionID); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Successfully deleted transaction %s.", args.TransactionID)}, nil
	}
}

// updateRecordSchema is the schema of one update-transactions record.
func updateRecordSchema() *jsonschema.Schema {
	return tools.Object(map[string]*jsonschema.Schema{
		"id":          tools.String("The ID of the transaction to update."),
		"account_id":  tools.String("The ID of the account."),
		"date":        tools.String("The transaction date in YYYY-MM-DD format."),
		"amount":      tools.Integer("The transaction amount in milliunits."),
		"payee_id":    tools.String("The ID of the payee."),
		"category_id": tools.String("The ID of the category for the transaction."),
		"memo":        tools.String("A memo for the transaction."),
		"cleared":     tools.String("The cleared status of the transaction."),
		"approved":    tools.Boolean("Whether or not the transaction is approved."),
		"flag_color":  tools.String("The flag color of the transaction."),
	}, "id")
}

// Tools returns the transaction tools ready for registration.
func Tools(svc ynab.Service) []tools.Tool {
	return []tools.Tool{
		{
			Name:        "list-transactions",
			Description: "List transactions for a given account",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id":  tools.BudgetIDProperty(),
				"account_id": tools.String("The ID of the account"),
				"since_date": tools.String("The starting date for transactions (YYYY-MM-DD)"),
				"limit":      tools.Integer("The maximum number of transactions to return"),
			}, "account_id"),
			Handler: makeListHandler(svc),
		},
		{
			Name:        "list-monthly-transactions",
			Description: "List all transactions for a given month, across all accounts.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id": tools.BudgetIDProperty(),
				"month":     tools.String("The month to get transactions for (YYYY-MM-DD)"),
				"limit":     tools.Integer("The maximum number of transactions to return"),
			}, "month"),
			Handler: makeListMonthlyHandler(svc),
		},
		{
			Name:        "list-scheduled-transactions",
			Description: "List all scheduled transactions for a given budget.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id": tools.BudgetIDProperty(),
			}),
			Handler: makeListScheduledHandler(svc),
		},
		{
			Name:        "create-transaction",
			Description: "Create a new transaction.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id":   tools.BudgetIDProperty(),
				"account_id":  tools.String("The ID of the account for the transaction."),
				"date":        tools.String("The transaction date in YYYY-MM-DD format."),
				"amount":      tools.Integer("The transaction amount in milliunits."),
				"payee_id":    tools.String("The ID of the payee."),
				"payee_name":  tools.String("The name of the payee. If not provided, a new payee will be created."),
				"category_id": tools.String("The ID of the category for the transaction."),
				"memo":        tools.String("A memo for the transaction."),
				"cleared":     tools.String("The cleared status of the transaction."),
				"approved":    tools.Boolean("Whether or not the transaction is approved."),
				"flag_color":  tools.String("The flag color of the transaction."),
				"import_id":   tools.String("A unique import ID for the transaction. Use for idempotency."),
			}, "account_id", "date", "amount"),
			Handler: makeCreateHandler(svc),
		},
		{
			Name:        "update-transactions",
			Description: "Update one or more transactions with new categories, payees, memos, etc.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id":    tools.BudgetIDProperty(),
				"transactions": tools.Array("A list of transactions to update.", updateRecordSchema()),
			}, "transactions"),
			Handler: makeUpdateHandler(svc),
		},
		{
			Name:        "delete-transaction",
			Description: "Delete a transaction.",
			InputSchema: tools.Object(map[string]*jsonschema.Schema{
				"budget_id":      tools.BudgetIDProperty(),
				"transaction_id": tools.String("The ID of the transaction to delete."),
			}, "transaction_id"),
			Handler: makeDeleteHandler(svc),
		},
	}
}
