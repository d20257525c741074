package payeetool_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/tools/payeetool"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
	"github.com/MrWong99/ynab-mcp/internal/ynab/mock"
)

// invoke runs the named tool from the package's catalogue against svc.
func invoke(t *testing.T, svc ynab.Service, name, args string) ([]string, error) {
	t.Helper()
	for _, tool := range payeetool.Tools(svc) {
		if tool.Name == name {
			return tool.Handler(context.Background(), json.RawMessage(args))
		}
	}
	t.Fatalf("tool %q not found", name)
	return nil, nil
}

func TestListPayees(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{PayeesResult: []ynab.Payee{
		{ID: "p-1", Name: "Grocery Store"},
		{ID: "p-2", Name: "Landlord"},
	}}
	blocks, err := invoke(t, svc, "list-payees", `{"budget_id": "b-1"}`)
	if err != nil {
		t.Fatalf("list-payees: %v", err)
	}

	want := "Here are the payees for budget b-1:\n- Grocery Store (ID: p-1)\n- Landlord (ID: p-2)"
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}
}

func TestListPayeesEmpty(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	blocks, err := invoke(t, svc, "list-payees", `{"budget_id": "b-1"}`)
	if err != nil {
		t.Fatalf("list-payees: %v", err)
	}
	if len(blocks) != 1 || blocks[0] != "No payees found for this budget." {
		t.Errorf("got blocks %q, want [%q]", blocks, "No payees found for this budget.")
	}
}

func TestRenamePayees(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	blocks, err := invoke(t, svc, "rename-payees",
		`{"budget_id": "b-1", "payee_ids": ["p-1", "p-2"], "name": "Coffee Shop"}`)
	if err != nil {
		t.Fatalf("rename-payees: %v", err)
	}

	want := "Successfully renamed 2 payees to 'Coffee Shop'."
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}

	calls := svc.CallsTo("RenamePayees")
	if len(calls) != 1 {
		t.Fatalf("got %d rename calls, want 1", len(calls))
	}
	if got := calls[0].Args[1]; !reflect.DeepEqual(got, []string{"p-1", "p-2"}) {
		t.Errorf("renamed ids %v, want [p-1 p-2]", got)
	}
	if got := calls[0].Args[2]; got != "Coffee Shop" {
		t.Errorf("renamed to %v, want Coffee Shop", got)
	}
}

func TestRenamePayeesEmptyList(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	blocks, err := invoke(t, svc, "rename-payees",
		`{"budget_id": "b-1", "payee_ids": [], "name": "Coffee Shop"}`)
	if err != nil {
		t.Fatalf("rename-payees: %v", err)
	}

	want := "Successfully renamed 0 payees to 'Coffee Shop'."
	if len(blocks) != 1 || blocks[0] != want {
		t.Errorf("got blocks %q, want [%q]", blocks, want)
	}
}

func TestRenamePayeesMissingKeys(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{}
	_, err := invoke(t, svc, "rename-payees", `{"budget_id": "b-1"}`)

	var argErr *tools.InvalidArgumentsError
	if !errors.As(err, &argErr) {
		t.Fatalf("got error %v, want *InvalidArgumentsError", err)
	}
	if got := strings.Join(argErr.Missing, ","); got != "payee_ids,name" {
		t.Errorf("missing keys %q, want %q", got, "payee_ids,name")
	}
	if n := svc.CallCount("RenamePayees"); n != 0 {
		t.Errorf("%d renames issued despite invalid arguments, want 0", n)
	}
}

func TestFindDuplicatePayees(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{PayeesResult: []ynab.Payee{
		{ID: "p-1", Name: "Starbucks"},
		{ID: "p-2", Name: "Rent"},
		{ID: "p-3", Name: "Starbucks #123"},
		{ID: "p-4", Name: "starbucks"},
	}}

	blocks, err := invoke(t, svc, "find-duplicate-payees", `{"budget_id": "b-1"}`)
	if err != nil {
		t.Fatalf("find-duplicate-payees: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	got := blocks[0]

	if !strings.Contains(got, "Group 1:") {
		t.Errorf("output missing a duplicate group:\n%s", got)
	}
	for _, want := range []string{"- Starbucks (ID: p-1)", "- Starbucks #123 (ID: p-3)", "- starbucks (ID: p-4)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Rent") {
		t.Errorf("unrelated payee grouped as duplicate:\n%s", got)
	}
	if strings.Contains(got, "Group 2:") {
		t.Errorf("singleton reported as a group:\n%s", got)
	}
}

func TestFindDuplicatePayeesNoneFound(t *testing.T) {
	t.Parallel()

	svc := &mock.Service{PayeesResult: []ynab.Payee{
		{ID: "p-1", Name: "Rent"},
		{ID: "p-2", Name: "Groceries"},
		{ID: "p-3", Name: "Utilities"},
	}}

	blocks, err := invoke(t, svc, "find-duplicate-payees", `{"budget_id": "b-1"}`)
	if err != nil {
		t.Fatalf("find-duplicate-payees: %v", err)
	}
	if len(blocks) != 1 || blocks[0] != "No likely duplicate payees found." {
		t.Errorf("got blocks %q, want [%q]", blocks, "No likely duplicate payees found.")
	}
}

func TestFindDuplicatePayeesThreshold(t *testing.T) {
	t.Parallel()

	// At threshold 1.0 only exact (case-insensitive) matches group.
	svc := &mock.Service{PayeesResult: []ynab.Payee{
		{ID: "p-1", Name: "Starbucks"},
		{ID: "p-2", Name: "Starbucks #123"},
		{ID: "p-3", Name: "STARBUCKS"},
	}}

	blocks, err := invoke(t, svc, "find-duplicate-payees", `{"budget_id": "b-1", "threshold": 1.0}`)
	if err != nil {
		t.Fatalf("find-duplicate-payees: %v", err)
	}
	got := blocks[0]

	if !strings.Contains(got, "- STARBUCKS (ID: p-3)") {
		t.Errorf("exact case-insensitive duplicate not grouped:\n%s", got)
	}
	if strings.Contains(got, "Starbucks #123") {
		t.Errorf("inexact name grouped at threshold 1.0:\n%s", got)
	}
}
