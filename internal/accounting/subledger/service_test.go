package subledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/memstore"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// requireReconciled checks the counterparty balance equals the signed sum of
// its sub-ledger rows.
func requireReconciled(t *testing.T, svc *subledger.Service, scope internalShared.Scope, kind subledger.Kind, id int64) {
	t.Helper()
	stmt, err := svc.Statement(context.Background(), scope, kind, id)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, e := range stmt.Entries {
		sum = sum.Add(kind.Delta(e.Debit, e.Credit))
	}
	if !sum.Equal(stmt.Counterparty.Balance) {
		t.Fatalf("%s %d balance %s, ledger sums to %s", kind, id, stmt.Counterparty.Balance, sum)
	}
}

func TestCustomerLedgerReconciles(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	scope := internalShared.TenantScope("t-1")
	svc := subledger.NewService(store.Subledger())
	customer := store.AddCustomer(scope, "Acme Stores")

	_, err := svc.Record(ctx, scope, subledger.RecordInput{Kind: subledger.KindCustomer, CounterpartyID: customer, Debit: amount("500"), Description: "Credit Sale - R-1"})
	require.NoError(t, err)
	row, err := svc.Record(ctx, scope, subledger.RecordInput{Kind: subledger.KindCustomer, CounterpartyID: customer, Credit: amount("200"), Description: "Payment Received"})
	require.NoError(t, err)
	require.Equal(t, "Acme Stores", row.Name, "name falls back to the counterparty row")

	party, err := svc.Balance(ctx, scope, subledger.KindCustomer, customer)
	require.NoError(t, err)
	require.True(t, party.Balance.Equal(amount("300")), "got %s", party.Balance)
	requireReconciled(t, svc, scope, subledger.KindCustomer, customer)
}

func TestVendorLedgerReconciles(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	scope := internalShared.DemoScope("d-1")
	svc := subledger.NewService(store.Subledger())
	vendor := store.AddSupplier(scope, "Supply Co")

	_, err := svc.Record(ctx, scope, subledger.RecordInput{Kind: subledger.KindVendor, CounterpartyID: vendor, Credit: amount("800")})
	require.NoError(t, err)
	_, err = svc.Record(ctx, scope, subledger.RecordInput{Kind: subledger.KindVendor, CounterpartyID: vendor, Debit: amount("300")})
	require.NoError(t, err)

	stmt, err := svc.Statement(ctx, scope, subledger.KindVendor, vendor)
	require.NoError(t, err)
	require.Len(t, stmt.Entries, 2)
	require.True(t, stmt.Counterparty.Balance.Equal(amount("500")))
	requireReconciled(t, svc, scope, subledger.KindVendor, vendor)
}

func TestMissingCounterpartyLeavesNothing(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	scope := internalShared.TenantScope("t-1")
	svc := subledger.NewService(store.Subledger())
	customer := store.AddCustomer(scope, "Acme")

	_, err := svc.Record(ctx, scope, subledger.RecordInput{Kind: subledger.KindCustomer, CounterpartyID: 9999, Debit: amount("10")})
	require.ErrorIs(t, err, shared.ErrCounterpartyNotFound)

	// Kinds do not share ids.
	_, err = svc.Record(ctx, scope, subledger.RecordInput{Kind: subledger.KindVendor, CounterpartyID: customer, Credit: amount("10")})
	require.ErrorIs(t, err, shared.ErrCounterpartyNotFound)

	_, err = svc.Record(ctx, scope, subledger.RecordInput{Kind: subledger.KindCustomer, CounterpartyID: 0, Debit: amount("10")})
	require.ErrorIs(t, err, shared.ErrCounterpartyNotFound)

	stmt, err := svc.Statement(ctx, scope, subledger.KindCustomer, customer)
	require.NoError(t, err)
	require.Empty(t, stmt.Entries)
	require.True(t, stmt.Counterparty.Balance.IsZero())
}

func TestInsertFailureRollsBackBalance(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	scope := internalShared.TenantScope("t-1")
	svc := subledger.NewService(store.Subledger())
	customer := store.AddCustomer(scope, "Acme")

	boom := errors.New("insert failed")
	store.FailNext("subledger.InsertEntry", boom)
	_, err := svc.Record(ctx, scope, subledger.RecordInput{Kind: subledger.KindCustomer, CounterpartyID: customer, Debit: amount("75")})
	require.ErrorIs(t, err, boom)

	party, err := svc.Balance(ctx, scope, subledger.KindCustomer, customer)
	require.NoError(t, err)
	require.True(t, party.Balance.IsZero(), "balance increment must roll back, got %s", party.Balance)
	requireReconciled(t, svc, scope, subledger.KindCustomer, customer)
}

func TestRecordValidation(t *testing.T) {
	svc := subledger.NewService(memstore.New().Subledger())
	ctx := context.Background()

	_, err := svc.Record(ctx, internalShared.Scope{}, subledger.RecordInput{Kind: subledger.KindCustomer, CounterpartyID: 1})
	require.ErrorIs(t, err, internalShared.ErrScopeRequired)

	_, err = svc.Record(ctx, internalShared.TenantScope("t"), subledger.RecordInput{Kind: "employee", CounterpartyID: 1})
	require.ErrorIs(t, err, shared.ErrInvalidEvent)

	_, err = svc.Record(ctx, internalShared.TenantScope("t"), subledger.RecordInput{Kind: subledger.KindCustomer, CounterpartyID: 1, Debit: amount("-1")})
	require.ErrorIs(t, err, shared.ErrInvalidAmount)
}

func TestParseKind(t *testing.T) {
	for raw, want := range map[string]subledger.Kind{
		"customers": subledger.KindCustomer,
		"customer":  subledger.KindCustomer,
		"vendors":   subledger.KindVendor,
		"suppliers": subledger.KindVendor,
	} {
		got, err := subledger.ParseKind(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := subledger.ParseKind("staff")
	require.Error(t, err)
}
