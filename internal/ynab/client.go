// Package ynab provides a typed client for the YNAB v1 REST API
// (https://api.ynab.com/v1).
//
// The [Service] interface enumerates exactly the capabilities the tool layer
// consumes; [Client] is the production implementation and the mock
// subpackage provides a call-recording test double. All operations take a
// [context.Context] and return wrapped errors. HTTP-level failures from the
// API surface as [*APIError] with the upstream status, id, and detail passed
// through unmodified; the client never retries.
//
// Typical usage:
//
//	svc := ynab.New(token)
//	budget, err := svc.DefaultBudget(ctx)
//	accounts, err := svc.Accounts(ctx, budget.ID)
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/MrWong99/ynab-mcp/internal/observe"
)

// defaultBaseURL is the public YNAB API endpoint.
const defaultBaseURL = "https://api.ynab.com/v1"

// defaultTimeout bounds a single API round trip when the caller's context
// carries no deadline of its own.
const defaultTimeout = 30 * time.Second

// Service enumerates the YNAB capabilities consumed by the tool layer.
//
// Implementations must be safe for concurrent use.
type Service interface {
	// Budgets lists all budgets visible to the configured token.
	Budgets(ctx context.Context) ([]Budget, error)

	// DefaultBudget returns the budget YNAB designates as the caller's
	// primary one. Fails when the account has no default budget set.
	DefaultBudget(ctx context.Context) (Budget, error)

	// Accounts lists all accounts of the given budget.
	Accounts(ctx context.Context, budgetID string) ([]Account, error)

	// Transactions lists transactions of one account, optionally restricted
	// to those on or after sinceDate (YYYY-MM-DD) and capped at limit when
	// limit > 0. Results are returned most recent first.
	Transactions(ctx context.Context, budgetID, accountID, sinceDate string, limit int) ([]Transaction, error)

	// MonthTransactions lists all transactions of the given month
	// (YYYY-MM-DD, first of month) across all accounts, capped at limit when
	// limit > 0.
	MonthTransactions(ctx context.Context, budgetID, month string, limit int) ([]Transaction, error)

	// Categories lists all category groups with their nested categories and
	// current-month amounts.
	Categories(ctx context.Context, budgetID string) ([]CategoryGroup, error)

	// MonthCategory returns a single category with its amounts for the given
	// month (YYYY-MM-DD, first of month).
	MonthCategory(ctx context.Context, budgetID, month, categoryID string) (Category, error)

	// Payees lists all payees of the given budget.
	Payees(ctx context.Context, budgetID string) ([]Payee, error)

	// RenamePayees sets the name of every listed payee to name. An empty id
	// list is valid and performs no writes.
	RenamePayees(ctx context.Context, budgetID string, payeeIDs []string, name string) error

	// AssignBudgetAmount sets the category's budgeted amount for the given
	// month to exactly amount milliunits (absolute set, not a delta).
	AssignBudgetAmount(ctx context.Context, budgetID, month, categoryID string, amount int64) error

	// CreateTransaction creates tx and returns the stored transaction as
	// reported by YNAB (including its new id).
	CreateTransaction(ctx context.Context, budgetID string, tx NewTransaction) (Transaction, error)

	// UpdateTransactions applies all updates in a single bulk call and
	// returns the number of transactions YNAB reports as changed.
	UpdateTransactions(ctx context.Context, budgetID string, updates []TransactionUpdate) (int, error)

	// DeleteTransaction deletes the given transaction.
	DeleteTransaction(ctx context.Context, budgetID, transactionID string) error

	// ScheduledTransactions lists all scheduled transactions of the budget.
	ScheduledTransactions(ctx context.Context, budgetID string) ([]ScheduledTransaction, error)
}

// APIError is a non-2xx response from the YNAB API. The Detail message is
// passed through to callers as-is.
type APIError struct {
	// StatusCode is the HTTP status of the failed request.
	StatusCode int

	// ID is YNAB's short error code, e.g. "401" or "404.2".
	ID string

	// Name is YNAB's symbolic error name, e.g. "unauthorized".
	Name string

	// Detail is the human-readable error description.
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ynab: api error %d (%s): %s", e.StatusCode, e.Name, e.Detail)
	}
	return fmt.Sprintf("ynab: api error %d (%s)", e.StatusCode, e.Name)
}

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Useful for tests and proxies.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying [http.Client].
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithMetrics replaces the [observe.Metrics] instance used to count upstream
// round trips. Mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client is the production [Service] implementation. Safe for concurrent use;
// create instances with [New].
type Client struct {
	baseURL string
	http    *http.Client
	metrics *observe.Metrics

	mu    sync.RWMutex
	token string
}

// Compile-time check: Client must implement Service.
var _ Service = (*Client)(nil)

// New creates a Client authenticating with the given personal access token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = observe.DefaultMetrics()
	}
	return c
}

// SetToken replaces the access token used for subsequent requests. In-flight
// requests keep the token they started with.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// currentToken returns the token for the next request.
func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one API round trip. A nil body sends no request payload; a
// non-nil body is JSON-encoded. On 2xx the response body is decoded into out
// (when non-nil); otherwise the YNAB error envelope is returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ynab: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("ynab: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.currentToken())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(ctx, method, "transport_error")
		c.metrics.RecordUpstreamError(ctx, method)
		return fmt.Errorf("ynab: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.RecordUpstreamRequest(ctx, method, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RecordUpstreamError(ctx, method)
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ynab: decode %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeAPIError converts a non-2xx response into an *APIError, falling back
// to the raw status when the error envelope cannot be parsed.
func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Detail string `json:"detail"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.ID = envelope.Error.ID
		apiErr.Name = envelope.Error.Name
		apiErr.Detail = envelope.Error.Detail
	}
	if apiErr.Name == "" {
		apiErr.Name = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// Budgets lists all budgets visible to the configured token.
func (c *Client) Budgets(ctx context.Context) ([]Budget, error) {
	var out struct {
		Data struct {
			Budgets []Budget `json:"budgets"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/budgets", nil, &out); err != nil {
		return nil, err
	}
	return out.Data.Budgets, nil
}

// DefaultBudget returns the budget YNAB designates as the caller's primary
// one (the "default budget" of the /budgets listing).
func (c *Client) DefaultBudget(ctx context.Context) (Budget, error) {
	var out struct {
		Data struct {
			DefaultBudget *Budget `json:"default_budget"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/budgets", nil, &out); err != nil {
		return Budget{}, err
	}
	if out.Data.DefaultBudget == nil {
		return Budget{}, fmt.Errorf("ynab: account has no default budget; pass an explicit budget_id")
	}
	return *out.Data.DefaultBudget, nil
}

// Accounts lists all accounts of the given budget.
func (c *Client) Accounts(ctx context.Context, budgetID string) ([]Account, error) {
	var out struct {
		Data struct {
			Accounts []Account `json:"accounts"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/accounts", url.PathEscape(budgetID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data.Accounts, nil
}

// Transactions lists transactions of one account, most recent first.
func (c *Client) Transactions(ctx context.Context, budgetID, accountID, sinceDate string, limit int) ([]Transaction, error) {
	var out struct {
		Data struct {
			Transactions []Transaction `json:"transactions"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/accounts/%s/transactions",
		url.PathEscape(budgetID), url.PathEscape(accountID))
	if sinceDate != "" {
		path += "?since_date=" + url.QueryEscape(sinceDate)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return capNewestFirst(out.Data.Transactions, limit), nil
}

// MonthTransactions lists all transactions of one month across all accounts.
func (c *Client) MonthTransactions(ctx context.Context, budgetID, month string, limit int) ([]Transaction, error) {
	var out struct {
		Data struct {
			Transactions []Transaction `json:"transactions"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/months/%s/transactions",
		url.PathEscape(budgetID), url.PathEscape(month))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return capNewestFirst(out.Data.Transactions, limit), nil
}

// capNewestFirst reverses the API's oldest-first ordering and applies the
// optional limit.
func capNewestFirst(txs []Transaction, limit int) []Transaction {
	reversed := make([]Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		reversed = append(reversed, txs[i])
	}
	if limit > 0 && len(reversed) > limit {
		reversed = reversed[:limit]
	}
	return reversed
}

// Categories lists all category groups with their nested categories.
func (c *Client) Categories(ctx context.Context, budgetID string) ([]CategoryGroup, error) {
	var out struct {
		Data struct {
			CategoryGroups []CategoryGroup `json:"category_groups"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/categories", url.PathEscape(budgetID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data.CategoryGroups, nil
}

// MonthCategory returns a single category with its amounts for one month.
func (c *Client) MonthCategory(ctx context.Context, budgetID, month, categoryID string) (Category, error) {
	var out struct {
		Data struct {
			Category Category `json:"category"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/months/%s/categories/%s",
		url.PathEscape(budgetID), url.PathEscape(month), url.PathEscape(categoryID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return Category{}, err
	}
	return out.Data.Category, nil
}

// Payees lists all payees of the given budget.
func (c *Client) Payees(ctx context.Context, budgetID string) ([]Payee, error) {
	var out struct {
		Data struct {
			Payees []Payee `json:"payees"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/payees", url.PathEscape(budgetID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data.Payees, nil
}

// RenamePayees sets every listed payee's name to name. The YNAB API has no
// bulk payee endpoint, so this issues one PATCH per payee, sequentially, and
// stops at the first failure.
func (c *Client) RenamePayees(ctx context.Context, budgetID string, payeeIDs []string, name string) error {
	type savePayee struct {
		Name string `json:"name"`
	}
	body := struct {
		Payee savePayee `json:"payee"`
	}{Payee: savePayee{Name: name}}

	for _, payeeID := range payeeIDs {
		path := fmt.Sprintf("/budgets/%s/payees/%s",
			url.PathEscape(budgetID), url.PathEscape(payeeID))
		if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
			return fmt.Errorf("ynab: rename payee %s: %w", payeeID, err)
		}
	}
	return nil
}

// AssignBudgetAmount sets the category's budgeted amount for the month to
// exactly amount milliunits.
func (c *Client) AssignBudgetAmount(ctx context.Context, budgetID, month, categoryID string, amount int64) error {
	body := struct {
		Category struct {
			Budgeted int64 `json:"budgeted"`
		} `json:"category"`
	}{}
	body.Category.Budgeted = amount

	path := fmt.Sprintf("/budgets/%s/months/%s/categories/%s",
		url.PathEscape(budgetID), url.PathEscape(month), url.PathEscape(categoryID))
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// CreateTransaction creates tx and returns the stored transaction.
func (c *Client) CreateTransaction(ctx context.Context, budgetID string, tx NewTransaction) (Transaction, error) {
	body := struct {
		Transaction NewTransaction `json:"transaction"`
	}{Transaction: tx}

	var out struct {
		Data struct {
			Transaction Transaction `json:"transaction"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/transactions", url.PathEscape(budgetID))
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return Transaction{}, err
	}
	return out.Data.Transaction, nil
}

// UpdateTransactions applies all updates in one bulk PATCH and returns the
// number of transactions changed.
func (c *Client) UpdateTransactions(ctx context.Context, budgetID string, updates []TransactionUpdate) (int, error) {
	body := struct {
		Transactions []TransactionUpdate `json:"transactions"`
	}{Transactions: updates}

	var out struct {
		Data struct {
			Transactions []Transaction `json:"transactions"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/transactions", url.PathEscape(budgetID))
	if err := c.do(ctx, http.MethodPatch, path, body, &out); err != nil {
		return 0, err
	}
	return len(out.Data.Transactions), nil
}

// DeleteTransaction deletes the given transaction.
func (c *Client) DeleteTransaction(ctx context.Context, budgetID, transactionID string) error {
	path := fmt.Sprintf("/budgets/%s/transactions/%s",
		url.PathEscape(budgetID), url.PathEscape(transactionID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ScheduledTransactions lists all scheduled transactions of the budget.
func (c *Client) ScheduledTransactions(ctx context.Context, budgetID string) ([]ScheduledTransaction, error) {
	var out struct {
		Data struct {
			ScheduledTransactions []ScheduledTransaction `json:"scheduled_transactions"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/scheduled_transactions", url.PathEscape(budgetID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data.ScheduledTransactions, nil
}

// Ptr returns a pointer to v. Convenience for building [NewTransaction] and
// [TransactionUpdate] values with optional fields set.
func Ptr[T any](v T) *T {
	return &v
}
