package transactiontool_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/tools/transactiontool"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
	"github.com/MrWong99/ynab-mcp/internal/ynab/mock"
)

// invoke runs the named tool from the package's catalogue against svc.
func invoke(t *testing.T, svc ynab.Service, name, args string) ([]string, error) {
	t.Helper()
	for _, tool := range transactiontool.Tools(svc) {
		if tool.Name == name {
			return tool.Handler(context.Background(), json.RawMessage(args))
		}
	}
	t.Fatalf("tool %q not found", name)
	return nil, nil
}

func strPtr(s string) *string { return &s }

func TestListTransactions(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{TransactionsResult: []ynab.Transaction{
		{ID: "t-1", Date: "2025-06-02", Amount: -42500, PayeeName: strPtr("Grocery Store"), CategoryName: strPtr("Groceries")},
		{ID: "t-2", Date: "2025-06-01", Amount: 2500000},
	}}
	blocks, err := invoke(t, svc, "list-transactions", `{"budget_id": "b-1", "account_id": "a-1"}`)
	if err != nil {
		t.Fatalf("list-transactions: %v", err)
	}

	want := "Here are the latest transactions:\n" +
		"- 2025-06-02: Grocery Store | Groceries | -42.50 (ID: t-1)\n" +
		"- 2025-06-01: N/A | N/A | 2500.00 (ID: t-2)"
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}
}

func TestListTransactionsPassesFilters(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	if _, err := invoke(t, svc, "list-transactions",
		`{"budget_id": "b-1", "account_id": "a-1", "since_date": "2025-01-01", "limit": 5}`); err != nil {
		t.Fatalf("list-transactions: %v", err)
	}

	calls := svc.CallsTo("Transactions")
	if len(calls) != 1 {
		t.Fatalf("got %d transaction listings, want 1", len(calls))
	}
	wantArgs := []any{"b-1", "a-1", "2025-01-01", 5}
	for i, arg := range wantArgs {
		if calls[0].Args[i] != arg {
			t.Errorf("listing arg %d = %v, want %v", i, calls[0].Args[i], arg)
		}
	}
}

func TestListTransactionsEmpty(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	blocks, err := invoke(t, svc, "list-transactions", `{"account_id": "a-1", "budget_id": "b-1"}`)
	if err != nil {
		t.Fatalf("list-transactions: %v", err)
	}
	if len(blocks) != 1 || blocks[0] != "No transactions found for this account." {
		t.Errorf("got blocks %q, want [%q]", blocks, "No transactions found for this account.")
	}
}

func TestListTransactionsRequiresAccountID(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	_, err := invoke(t, svc, "list-transactions", `{"budget_id": "b-1"}`)

	var valErr *tools.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got error %v, want *ValidationError", err)
	}
	if !strings.Contains(valErr.Error(), "account_id is required") {
		t.Errorf("error %q does not name the missing account_id", valErr)
	}
	if n := svc.CallCount("Transactions"); n != 0 {
		t.Errorf("%d listings issued despite invalid arguments, want 0", n)
	}
}

func TestListMonthlyTransactions(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{MonthTransactionsResult: []ynab.Transaction{
		{
			ID: "t-1", Date: "2025-06-02", Amount: -42500, AccountName: "Checking",
			PayeeName: strPtr("Grocery Store"), CategoryName: strPtr("Groceries"),
		},
	}}
	blocks, err := invoke(t, svc, "list-monthly-transactions", `{"budget_id": "b-1", "month": "2025-06-01"}`)
	if err != nil {
		t.Fatalf("list-monthly-transactions: %v", err)
	}

	want := "Here are the transactions for 2025-06-01:\n" +
		"- 2025-06-02: Grocery Store | Groceries | Checking | -42.50 (ID: t-1)"
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}
}

func TestListMonthlyTransactionsEmpty(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	blocks, err := invoke(t, svc, "list-monthly-transactions", `{"budget_id": "b-1", "month": "2025-06-01"}`)
	if err != nil {
		t.Fatalf("list-monthly-transactions: %v", err)
	}
	if len(blocks) != 1 || blocks[0] != "No transactions found for this month." {
		t.Errorf("got blocks %q, want [%q]", blocks, "No transactions found for this month.")
	}
}

func TestListScheduledTransactions(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{ScheduledTransactionsResult: []ynab.ScheduledTransaction{
		{ID: "s-1", DateNext: "2025-07-01", Amount: -1500000, PayeeName: strPtr("Landlord"), CategoryName: strPtr("Rent"), Frequency: "monthly"},
		{ID: "s-2", DateNext: "2025-07-03", Amount: -9990, Frequency: "weekly"},
	}}
	blocks, err := invoke(t, svc, "list-scheduled-transactions", `{"budget_id": "b-1"}`)
	if err != nil {
		t.Fatalf("list-scheduled-transactions: %v", err)
	}

	want := "Here are the scheduled transactions:\n" +
		"- 2025-07-01: Landlord | Rent | -1500.00 (Frequency: monthly)\n" +
		"- 2025-07-03: N/A | N/A | -9.99 (Frequency: weekly)"
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}
}

func TestListScheduledTransactionsEmpty(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	blocks, err := invoke(t, svc, "list-scheduled-transactions", `{}`)
	if err != nil {
		t.Fatalf("list-scheduled-transactions: %v", err)
	}
	if len(blocks) != 1 || blocks[0] != "No scheduled transactions found." {
		t.Errorf("got blocks %q, want [%q]", blocks, "No scheduled transactions found.")
	}
}

func TestCreateTransaction(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{CreateTransactionResult: ynab.Transaction{ID: "t-new"}}
	blocks, err := invoke(t, svc, "create-transaction",
		`{"budget_id": "b-1", "account_id": "a-1", "date": "2025-06-15", "amount": -42500, "memo": "lunch"}`)
	if err != nil {
		t.Fatalf("create-transaction: %v", err)
	}

	want := "Successfully created transaction with ID: t-new"
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}

	calls := svc.CallsTo("CreateTransaction")
	if len(calls) != 1 {
		t.Fatalf("got %d creates, want 1", len(calls))
	}
	tx, ok := calls[0].Args[1].(ynab.NewTransaction)
	if !ok {
		t.Fatalf("create argument is %T, want ynab.NewTransaction", calls[0].Args[1])
	}
	if tx.Amount != -42500 {
		t.Errorf("amount %d passed upstream, want -42500 verbatim", tx.Amount)
	}
	if tx.Memo == nil || *tx.Memo != "lunch" {
		t.Errorf("memo %v, want lunch", tx.Memo)
	}
	// Unset optionals stay nil so they are omitted from the request body.
	if tx.PayeeID != nil || tx.PayeeName != nil || tx.CategoryID != nil ||
		tx.Cleared != nil || tx.FlagColor != nil || tx.ImportID != nil {
		t.Errorf("unset optional fields are not nil: %+v", tx)
	}
	if tx.Approved {
		t.Error("approved defaulted to true, want false")
	}
}

func TestCreateTransactionReportsAllViolations(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	_, err := invoke(t, svc, "create-transaction", `{"budget_id": "b-1"}`)

	var valErr *tools.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got error %v, want *ValidationError", err)
	}
	for _, want := range []string{"account_id is required", "date is required", "amount is required"} {
		if !strings.Contains(valErr.Error(), want) {
			t.Errorf("error %q does not report %q", valErr, want)
		}
	}
	if n := svc.CallCount("CreateTransaction"); n != 0 {
		t.Errorf("%d creates issued despite invalid arguments, want 0", n)
	}
}

func TestCreateTransactionZeroAmountIsValid(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{CreateTransactionResult: ynab.Transaction{ID: "t-zero"}}
	if _, err := invoke(t, svc, "create-transaction",
		`{"budget_id": "b-1", "account_id": "a-1", "date": "2025-06-15", "amount": 0}`); err != nil {
		t.Fatalf("create-transaction with explicit zero amount: %v", err)
	}
}

func TestUpdateTransactions(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	blocks, err := invoke(t, svc, "update-transactions",
		`{"budget_id": "b-1", "transactions": [
			{"id": "t-1", "memo": "updated"},
			{"id": "t-2", "category_id": "c-9"}
		]}`)
	if err != nil {
		t.Fatalf("update-transactions: %v", err)
	}

	want := "Successfully updated 2 transactions."
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}

	calls := svc.CallsTo("UpdateTransactions")
	if len(calls) != 1 {
		t.Fatalf("got %d update calls, want 1", len(calls))
	}
	updates, ok := calls[0].Args[1].([]ynab.TransactionUpdate)
	if !ok || len(updates) != 2 {
		t.Fatalf("update argument = %v, want two records", calls[0].Args[1])
	}
	if updates[0].Memo == nil || *updates[0].Memo != "updated" {
		t.Errorf("first record memo %v, want updated", updates[0].Memo)
	}
	// Untouched fields stay nil so partial updates never clear other fields.
	if updates[0].Amount != nil || updates[0].CategoryID != nil || updates[0].Approved != nil {
		t.Errorf("first record carries fields beyond the memo: %+v", updates[0])
	}
}

func TestUpdateTransactionsRecordWithoutID(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	_, err := invoke(t, svc, "update-transactions",
		`{"budget_id": "b-1", "transactions": [{"id": "t-1"}, {"memo": "oops"}]}`)

	var valErr *tools.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got error %v, want *ValidationError", err)
	}
	if !strings.Contains(valErr.Error(), "transactions[1]: id is required") {
		t.Errorf("error %q does not name the offending record", valErr)
	}
	if n := svc.CallCount("UpdateTransactions"); n != 0 {
		t.Errorf("%d updates issued despite invalid arguments, want 0", n)
	}
}

func TestUpdateTransactionsRejectsEmptyList(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	_, err := invoke(t, svc, "update-transactions", `{"budget_id": "b-1", "transactions": []}`)

	var valErr *tools.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got error %v, want *ValidationError", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	blocks, err := invoke(t, svc, "delete-transaction", `{"budget_id": "b-1", "transaction_id": "t-1"}`)
	if err != nil {
		t.Fatalf("delete-transaction: %v", err)
	}

	want := "Successfully deleted transaction t-1."
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}

	calls := svc.CallsTo("DeleteTransaction")
	if len(calls) != 1 || calls[0].Args[0] != "b-1" || calls[0].Args[1] != "t-1" {
		t.Errorf("delete calls = %v, want one call for b-1/t-1", calls)
	}
}

func TestDeleteTransactionRequiresID(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	_, err := invoke(t, svc, "delete-transaction", `{"budget_id": "b-1"}`)

	var valErr *tools.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got error %v, want *ValidationError", err)
	}
	if n := svc.CallCount("DeleteTransaction"); n != 0 {
		t.Errorf("%d deletes issued despite invalid arguments, want 0", n)
	}
}

func TestTransactionToolsResolveDefaultBudget(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{DefaultBudgetResult: ynab.Budget{ID: "default-b"}}
	if _, err := invoke(t, svc, "list-transactions", `{"account_id": "a-1"}`); err != nil {
		t.Fatalf("list-transactions: %v", err)
	}

	calls := svc.CallsTo("Transactions")
	if len(calls) != 1 || calls[0].Args[0] != "default-b" {
		t.Fatalf("listing calls = %v, want one call against the default budget", calls)
	}
}
