package health

import (
	"context"

	"github.com/MrWong99/ynab-mcp/internal/overview"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// Upstream returns a [Checker] probing the YNAB API. It lists budgets, the
// cheapest call that exercises both connectivity and the access token.
func Upstream(svc ynab.Service) Checker {
	return Checker{
		Name: "ynab",
		Check: func(ctx context.Context) error {
			_, err := svc.Budgets(ctx)
			return err
		},
	}
}

// OverviewStore returns a [Checker] verifying the overview document can be
// read. A corrupt or unreadable file fails readiness before a tool call
// trips over it.
func OverviewStore(store overview.Store) Checker {
	return Checker{
		Name: "overview",
		Check: func(ctx context.Context) error {
			_, err := store.Load()
			return err
		},
	}
}
