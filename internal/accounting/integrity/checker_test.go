package integrity_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/integrity"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/memstore"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/posting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type ledgerSet struct {
	store     *memstore.Store
	accounts  *accounts.Service
	journals  *journals.Service
	subledger *subledger.Service
	posting   *posting.Service
	checker   *integrity.Checker
}

func newLedgerSet(t *testing.T, scope internalShared.Scope) ledgerSet {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	set := ledgerSet{
		store:     store,
		accounts:  accounts.NewService(store.Accounts()),
		journals:  journals.NewService(store.Journals(), nil, nil, logger),
		subledger: subledger.NewService(store.Subledger()),
	}
	set.posting = posting.NewService(set.journals, set.subledger, nil, logger)
	set.checker = integrity.NewChecker(set.accounts, set.journals, set.subledger, logger)
	_, err := set.accounts.Initialize(context.Background(), scope, "")
	require.NoError(t, err)
	return set
}

func TestCleanLedgerPasses(t *testing.T) {
	ctx := context.Background()
	scope := internalShared.TenantScope("t-1")
	set := newLedgerSet(t, scope)
	customer := set.store.AddCustomer(scope, "Ahmed")
	vendor := set.store.AddSupplier(scope, "Supply Co")

	_, err := set.posting.PostCashSale(ctx, scope, "R-1", decimal.NewFromInt(1000), decimal.NewFromInt(600), nil)
	require.NoError(t, err)
	_, err = set.posting.PostCreditSale(ctx, scope, customer, "Ahmed", "R-2", decimal.NewFromInt(500), decimal.Zero, nil)
	require.NoError(t, err)
	_, err = set.posting.PostPaymentReceived(ctx, scope, customer, "Ahmed", decimal.NewFromInt(200), "cash", nil)
	require.NoError(t, err)
	_, err = set.posting.PostPurchase(ctx, scope, vendor, "Supply Co", "PO-1", decimal.NewFromInt(300), "credit", nil)
	require.NoError(t, err)
	entry, err := set.journals.Post(ctx, scope, journals.PostingInput{Lines: []journals.PostingLineInput{
		{AccountCode: "9999", Debit: decimal.NewFromInt(5)},
		{AccountCode: accounts.CodeCash, Credit: decimal.NewFromInt(5)},
	}})
	require.NoError(t, err)
	_, err = set.journals.Update(ctx, scope, entry.ID, journals.UpdateInput{Lines: []journals.PostingLineInput{
		{AccountCode: accounts.CodeMiscExpense, Debit: decimal.NewFromInt(7)},
		{AccountCode: accounts.CodeBank, Credit: decimal.NewFromInt(7)},
	}})
	require.NoError(t, err)

	report, err := set.checker.Check(ctx, scope)
	require.NoError(t, err)
	require.True(t, report.OK(), "violations: %v", report.Violations)
	require.Equal(t, 5, report.Entries)
	require.Equal(t, 2, report.Counterparties)
	require.Equal(t, accounts.DefaultChartSize, report.Accounts)
}

func TestDetectsAccountDrift(t *testing.T) {
	ctx := context.Background()
	scope := internalShared.DemoScope("d-1")
	set := newLedgerSet(t, scope)
	_, err := set.posting.PostCashSale(ctx, scope, "R-1", decimal.NewFromInt(50), decimal.Zero, nil)
	require.NoError(t, err)

	require.NoError(t, set.accounts.AdjustBalance(ctx, scope, accounts.CodeCash, decimal.RequireFromString("0.01")))

	report, err := set.checker.Check(ctx, scope)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	require.Equal(t, integrity.ViolationAccountBalance, v.Kind)
	require.Equal(t, "1001 Cash", v.Subject)
	require.True(t, v.Stored.Equal(decimal.RequireFromString("50.01")))
	require.True(t, v.Expected.Equal(decimal.NewFromInt(50)))
}

type fixedStatements map[subledger.Kind][]subledger.Statement

func (f fixedStatements) Statements(_ context.Context, _ internalShared.Scope, kind subledger.Kind) ([]subledger.Statement, error) {
	return f[kind], nil
}

func TestDetectsCounterpartyDrift(t *testing.T) {
	ctx := context.Background()
	scope := internalShared.TenantScope("t-1")
	set := newLedgerSet(t, scope)
	stmts := fixedStatements{
		subledger.KindVendor: {{
			Counterparty: subledger.Counterparty{ID: 3, Kind: subledger.KindVendor, Name: "Supply Co", Balance: decimal.NewFromInt(100)},
			Entries: []subledger.Entry{
				{Kind: subledger.KindVendor, CounterpartyID: 3, Credit: decimal.NewFromInt(150)},
				{Kind: subledger.KindVendor, CounterpartyID: 3, Debit: decimal.NewFromInt(40)},
			},
		}},
	}
	checker := integrity.NewChecker(set.accounts, set.journals, stmts, nil)

	report, err := checker.Check(ctx, scope)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	require.Equal(t, integrity.ViolationCounterpartyBalance, report.Violations[0].Kind)
	require.True(t, report.Violations[0].Expected.Equal(decimal.NewFromInt(110)))
}

type fixedEntries []journals.JournalEntry

func (f fixedEntries) List(context.Context, internalShared.Scope, journals.ListFilter) ([]journals.JournalEntry, error) {
	return f, nil
}

func TestDetectsUnbalancedEntry(t *testing.T) {
	scope := internalShared.TenantScope("t-1")
	set := newLedgerSet(t, scope)
	entries := fixedEntries{{
		EntryNumber: "JE-000009",
		Lines: []journals.JournalLine{
			{AccountCode: "x", Debit: decimal.NewFromInt(10)},
			{AccountCode: "y", Credit: decimal.NewFromInt(9)},
		},
	}}
	checker := integrity.NewChecker(set.accounts, entries, nil, nil)
	report, err := checker.Check(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	require.Equal(t, "JE-000009", report.Violations[0].Subject)
	require.Equal(t, integrity.ViolationUnbalancedEntry, report.Violations[0].Kind)
}

func TestCheckRequiresScope(t *testing.T) {
	set := newLedgerSet(t, internalShared.TenantScope("t-1"))
	_, err := set.checker.Check(context.Background(), internalShared.Scope{})
	require.ErrorIs(t, err, internalShared.ErrScopeRequired)
}
