// Package mock provides an in-memory test double for the [ynab.Service]
// interface.
//
// [Service] records every method call for assertion in tests and exposes
// exported fields that control what the mock returns. It is safe for
// concurrent use via an internal [sync.Mutex].
//
// Typical usage:
//
//	svc := &mock.Service{}
//	svc.DefaultBudgetResult = ynab.Budget{ID: "b-1", Name: "Main"}
//	svc.AccountsResult = []ynab.Account{{ID: "a-1", Name: "Checking"}}
//
//	// inject svc into the system under test …
//
//	if got := svc.CallCount("DefaultBudget"); got != 0 {
//	    t.Errorf("default budget looked up %d times, want 0", got)
//	}
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// Call records the name and arguments of a single method invocation.
type Call struct {
	// Method is the name of the interface method that was called.
	Method string

	// Args holds the non-context arguments passed to the method, in order.
	Args []any
}

// Service is a configurable test double for [ynab.Service]. All exported
// *Err fields default to nil (success); all *Result fields default to zero
// values.
type Service struct {
	mu sync.Mutex

	// calls records every method invocation in order.
	calls []Call

	BudgetsResult []ynab.Budget
	BudgetsErr    error

	DefaultBudgetResult ynab.Budget
	DefaultBudgetErr    error

	AccountsResult []ynab.Account
	AccountsErr    error

	TransactionsResult []ynab.Transaction
	TransactionsErr    error

	MonthTransactionsResult []ynab.Transaction
	MonthTransactionsErr    error

	CategoriesResult []ynab.CategoryGroup
	CategoriesErr    error

	// MonthCategoryResults maps category id to the category returned for it.
	// Categories absent from the map return the zero value.
	MonthCategoryResults map[string]ynab.Category
	MonthCategoryErr     error

	PayeesResult []ynab.Payee
	PayeesErr    error

	RenamePayeesErr error

	// AssignBudgetAmountErrs is consulted per call, keyed by category id.
	// Lets tests fail the second assign of a two-step move while the first
	// succeeds.
	AssignBudgetAmountErrs map[string]error

	// AssignBudgetAmountErrSeq, when non-empty, overrides
	// AssignBudgetAmountErrs: each call pops the next entry (nil entries
	// succeed). Lets tests fail a later call to the same category that an
	// earlier call succeeded for.
	AssignBudgetAmountErrSeq []error

	CreateTransactionResult ynab.Transaction
	CreateTransactionErr    error

	UpdateTransactionsResult int
	UpdateTransactionsErr    error

	DeleteTransactionErr error

	ScheduledTransactionsResult []ynab.ScheduledTransaction
	ScheduledTransactionsErr    error
}

// Compile-time check: Service must implement ynab.Service.
var _ ynab.Service = (*Service)(nil)

// record appends a call entry.
func (s *Service) record(method string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of all recorded calls in invocation order.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded calls to the named method, in order.
func (s *Service) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many times the named method was invoked.
func (s *Service) CallCount(method string) int {
	return len(s.CallsTo(method))
}

func (s *Service) Budgets(_ context.Context) ([]ynab.Budget, error) {
	s.record("Budgets")
	return s.BudgetsResult, s.BudgetsErr
}

func (s *Service) DefaultBudget(_ context.Context) (ynab.Budget, error) {
	s.record("DefaultBudget")
	return s.DefaultBudgetResult, s.DefaultBudgetErr
}

func (s *Service) Accounts(_ context.Context, budgetID string) ([]ynab.Account, error) {
	s.record("Accounts", budgetID)
	return s.AccountsResult, s.AccountsErr
}

func (s *Service) Transactions(_ context.Context, budgetID, accountID, sinceDate string, limit int) ([]ynab.Transaction, error) {
	s.record("Transactions", budgetID, accountID, sinceDate, limit)
	return s.TransactionsResult, s.TransactionsErr
}

func (s *Service) MonthTransactions(_ context.Context, budgetID, month string, limit int) ([]ynab.Transaction, error) {
	s.record("MonthTransactions", budgetID, month, limit)
	return s.MonthTransactionsResult, s.MonthTransactionsErr
}

func (s *Service) Categories(_ context.Context, budgetID string) ([]ynab.CategoryGroup, error) {
	s.record("Categories", budgetID)
	return s.CategoriesResult, s.CategoriesErr
}

func (s *Service) MonthCategory(_ context.Context, budgetID, month, categoryID string) (ynab.Category, error) {
	s.record("MonthCategory", budgetID, month, categoryID)
	if s.MonthCategoryErr != nil {
		return ynab.Category{}, s.MonthCategoryErr
	}
	return s.MonthCategoryResults[categoryID], nil
}

func (s *Service) Payees(_ context.Context, budgetID string) ([]ynab.Payee, error) {
	s.record("Payees", budgetID)
	return s.PayeesResult, s.PayeesErr
}

func (s *Service) RenamePayees(_ context.Context, budgetID string, payeeIDs []string, name string) error {
	s.record("RenamePayees", budgetID, payeeIDs, name)
	return s.RenamePayeesErr
}

func (s *Service) AssignBudgetAmount(_ context.Context, budgetID, month, categoryID string, amount int64) error {
	s.record("AssignBudgetAmount", budgetID, month, categoryID, amount)
	s.mu.Lock()
	if len(s.AssignBudgetAmountErrSeq) > 0 {
		err := s.AssignBudgetAmountErrSeq[0]
		s.AssignBudgetAmountErrSeq = s.AssignBudgetAmountErrSeq[1:]
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	if s.AssignBudgetAmountErrs != nil {
		return s.AssignBudgetAmountErrs[categoryID]
	}
	return nil
}

func (s *Service) CreateTransaction(_ context.Context, budgetID string, tx ynab.NewTransaction) (ynab.Transaction, error) {
	s.record("CreateTransaction", budgetID, tx)
	return s.CreateTransactionResult, s.CreateTransactionErr
}

func (s *Service) UpdateTransactions(_ context.Context, budgetID string, updates []ynab.TransactionUpdate) (int, error) {
	s.record("UpdateTransactions", budgetID, updates)
	if s.UpdateTransactionsErr != nil {
		return 0, s.UpdateTransactionsErr
	}
	if s.UpdateTransactionsResult == 0 {
		return len(updates), nil
	}
	return s.UpdateTransactionsResult, nil
}

func (s *Service) DeleteTransaction(_ context.Context, budgetID, transactionID string) error {
	s.record("DeleteTransaction", budgetID, transactionID)
	return s.DeleteTransactionErr
}

func (s *Service) ScheduledTransactions(_ context.Context, budgetID string) ([]ynab.ScheduledTransaction, error) {
	s.record("ScheduledTransactions", budgetID)
	return s.ScheduledTransactionsResult, s.ScheduledTransactionsErr
}
