package ynab

// Types mirror the YNAB v1 REST API (https://api.ynab.com/v1). All monetary
// amounts are integers in milliunits: 1000 milliunits equal one unit of the
// budget's currency. Outflows are negative, inflows positive; amounts are
// passed through verbatim, never re-signed.

// Budget identifies a single YNAB budget (ledger).
type Budget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Account is a single account within a budget.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Type is the YNAB account type, e.g. "checking", "savings", "creditCard".
	Type string `json:"type"`

	// Balance is the current account balance in milliunits.
	Balance int64 `json:"balance"`

	// Closed marks accounts that have been closed in YNAB.
	Closed bool `json:"closed"`
}

// Transaction is a single (possibly account-scoped or month-scoped)
// transaction as returned by the YNAB API. Optional display fields are
// pointers: nil means YNAB reported no value.
type Transaction struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Amount int64  `json:"amount"`

	PayeeID      *string `json:"payee_id"`
	PayeeName    *string `json:"payee_name"`
	CategoryID   *string `json:"category_id"`
	CategoryName *string `json:"category_name"`

	// AccountName is populated for month-scoped listings where transactions
	// span multiple accounts.
	AccountName string `json:"account_name"`

	Memo      *string `json:"memo"`
	Cleared   string  `json:"cleared"`
	Approved  bool    `json:"approved"`
	FlagColor *string `json:"flag_color"`
	ImportID  *string `json:"import_id"`
}

// ScheduledTransaction is a future recurring transaction.
type ScheduledTransaction struct {
	ID       string `json:"id"`
	DateNext string `json:"date_next"`
	Amount   int64  `json:"amount"`

	PayeeName    *string `json:"payee_name"`
	CategoryName *string `json:"category_name"`

	// Frequency is the YNAB recurrence keyword, e.g. "monthly", "weekly".
	Frequency string `json:"frequency"`
}

// Payee is a transaction counterparty.
type Payee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryGroup is a named collection of categories, e.g. "Bills".
type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Hidden     bool       `json:"hidden"`
	Categories []Category `json:"categories"`
}

// Category is a single budget category with its current-month amounts.
type Category struct {
	ID              string `json:"id"`
	CategoryGroupID string `json:"category_group_id"`
	Name            string `json:"name"`
	Hidden          bool   `json:"hidden"`

	// Budgeted, Activity, and Balance are this month's amounts in milliunits.
	Budgeted int64 `json:"budgeted"`
	Activity int64 `json:"activity"`
	Balance  int64 `json:"balance"`

	// GoalType is nil when the category has no goal. Otherwise one of the
	// YNAB goal kinds ("TB", "TBD", "MF", "NEED", "DEBT").
	GoalType               *string `json:"goal_type"`
	GoalTarget             *int64  `json:"goal_target"`
	GoalPercentageComplete *int    `json:"goal_percentage_complete"`
}

// NewTransaction is the request body for creating a transaction. Optional
// fields are pointers with omitempty so that an unset field is omitted from
// the request entirely; the YNAB API rejects explicit nulls for optional
// fields.
type NewTransaction struct {
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	Amount    int64  `json:"amount"`

	PayeeID    *string `json:"payee_id,omitempty"`
	PayeeName  *string `json:"payee_name,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Memo       *string `json:"memo,omitempty"`
	Cleared    *string `json:"cleared,omitempty"`
	Approved   bool    `json:"approved"`
	FlagColor  *string `json:"flag_color,omitempty"`
	ImportID   *string `json:"import_id,omitempty"`
}

// TransactionUpdate is one record of a bulk transaction update. Only ID is
// required; every other field is a pointer with omitempty and is left out of
// the request when nil, so untouched fields keep their current values.
type TransactionUpdate struct {
	ID string `json:"id"`

	AccountID  *string `json:"account_id,omitempty"`
	Date       *string `json:"date,omitempty"`
	Amount     *int64  `json:"amount,omitempty"`
	PayeeID    *string `json:"payee_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Memo       *string `json:"memo,omitempty"`
	Cleared    *string `json:"cleared,omitempty"`
	Approved   *bool   `json:"approved,omitempty"`
	FlagColor  *string `json:"flag_color,omitempty"`
}
