package journals_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/memstore"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type bumpCounter struct {
	mu     sync.Mutex
	scopes []string
}

func (b *bumpCounter) Bump(_ context.Context, scope internalShared.Scope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scopes = append(b.scopes, scope.Key())
	return nil
}

type fixture struct {
	store    *memstore.Store
	accounts *accounts.Service
	journals *journals.Service
	bumps    *bumpCounter
	scope    internalShared.Scope
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memstore.New()
	f := fixture{
		store:    store,
		accounts: accounts.NewService(store.Accounts()),
		bumps:    &bumpCounter{},
		scope:    internalShared.TenantScope("t-1"),
	}
	f.journals = journals.NewService(store.Journals(), store.Audit(), f.bumps, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := f.accounts.Initialize(context.Background(), f.scope, "u-1")
	require.NoError(t, err)
	return f
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(code, debit, credit string) journals.PostingLineInput {
	l := journals.PostingLineInput{AccountCode: code}
	if debit != "" {
		l.Debit = d(debit)
	}
	if credit != "" {
		l.Credit = d(credit)
	}
	return l
}

func (f fixture) balances(t *testing.T) map[string]decimal.Decimal {
	t.Helper()
	list, err := f.accounts.List(context.Background(), f.scope)
	require.NoError(t, err)
	out := make(map[string]decimal.Decimal, len(list))
	for _, acc := range list {
		out[acc.Code] = acc.Balance
	}
	return out
}

// requireReplay checks every account balance equals the sum of debit-credit
// over the linked journal lines that reference it.
func (f fixture) requireReplay(t *testing.T) {
	t.Helper()
	entries, err := f.journals.List(context.Background(), f.scope, journals.ListFilter{})
	require.NoError(t, err)
	replay := map[string]decimal.Decimal{}
	for _, e := range entries {
		require.True(t, shared.WithinTolerance(e.TotalDebit, e.TotalCredit), "entry %s unbalanced", e.EntryNumber)
		for _, l := range e.Lines {
			if l.Linked() {
				replay[l.AccountCode] = replay[l.AccountCode].Add(l.Delta())
			}
		}
	}
	for code, balance := range f.balances(t) {
		require.True(t, balance.Equal(replay[code]), "account %s balance %s replay %s", code, balance, replay[code])
	}
}

func TestPostAppliesLinkedLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entry, err := f.journals.Post(ctx, f.scope, journals.PostingInput{
		Description:   "Owner contribution",
		ReferenceType: journals.RefManual,
		Lines: []journals.PostingLineInput{
			line(accounts.CodeBank, "2500.00", ""),
			line(accounts.CodeOwnerEquity, "", "2500.00"),
		},
		PostedBy: "u-1",
	})
	require.NoError(t, err)
	require.Equal(t, "JE-000001", entry.EntryNumber)
	require.Equal(t, entry.EntryNumber, entry.Reference, "reference defaults to the entry number")
	require.Equal(t, journals.JournalStatusPosted, entry.Status)
	require.Equal(t, "Bank", entry.Lines[0].AccountName)
	require.NotNil(t, entry.Lines[0].AccountID)

	bal := f.balances(t)
	require.True(t, bal[accounts.CodeBank].Equal(d("2500")))
	require.True(t, bal[accounts.CodeOwnerEquity].Equal(d("-2500")))
	require.Equal(t, []string{"tenant:t-1"}, f.bumps.scopes)
	require.Len(t, f.store.Audit().Entries(f.scope), 1)
	f.requireReplay(t)
}

func TestPostRejectsUnbalancedWithoutMutation(t *testing.T) {
	f := newFixture(t)
	before := f.balances(t)
	_, err := f.journals.Post(context.Background(), f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{
			line(accounts.CodeCash, "100", ""),
			line(accounts.CodeSalesRevenue, "", "99"),
		},
	})
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Equal(t, before, f.balances(t))
	entries, err := f.journals.List(context.Background(), f.scope, journals.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Empty(t, f.bumps.scopes)
}

func TestPostValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []struct {
		name  string
		lines []journals.PostingLineInput
		want  error
	}{
		{"single line", []journals.PostingLineInput{line(accounts.CodeCash, "1", "")}, shared.ErrTooFewLines},
		{"negative", []journals.PostingLineInput{line(accounts.CodeCash, "-1", ""), line(accounts.CodeBank, "", "-1")}, shared.ErrInvalidAmount},
		{"missing code", []journals.PostingLineInput{line("", "1", ""), line(accounts.CodeBank, "", "1")}, shared.ErrInvalidLine},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.journals.Post(ctx, f.scope, journals.PostingInput{Lines: tc.lines})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPostToleratesRoundingDrift(t *testing.T) {
	f := newFixture(t)
	_, err := f.journals.Post(context.Background(), f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{
			line(accounts.CodeCash, "33.34", ""),
			line(accounts.CodeSalesRevenue, "", "33.33"),
		},
	})
	require.NoError(t, err)
}

func TestPostChecksBalanceAtCentPrecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.balances(t)
	subCent := []journals.PostingLineInput{
		line(accounts.CodeCash, "0.005", ""),
		line(accounts.CodeBank, "0.005", ""),
		line(accounts.CodeInventory, "0.005", ""),
		line(accounts.CodeFixedAssets, "0.005", ""),
		line(accounts.CodeSalesRevenue, "", "0.02"),
	}
	_, err := f.journals.Post(ctx, f.scope, journals.PostingInput{Lines: subCent})
	require.ErrorIs(t, err, shared.ErrUnbalanced, "each debit stores as 0.01")
	require.Equal(t, before, f.balances(t))

	entry, err := f.journals.Post(ctx, f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{line(accounts.CodeCash, "10", ""), line(accounts.CodeSalesRevenue, "", "10")},
	})
	require.NoError(t, err)
	_, err = f.journals.Update(ctx, f.scope, entry.ID, journals.UpdateInput{Lines: subCent})
	require.ErrorIs(t, err, shared.ErrUnbalanced)

	entry, err = f.journals.Post(ctx, f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{
			line(accounts.CodeCash, "0.004", ""),
			line(accounts.CodeBank, "0.006", ""),
			line(accounts.CodeSalesRevenue, "", "0.01"),
		},
	})
	require.NoError(t, err)
	require.True(t, shared.WithinTolerance(entry.TotalDebit, entry.TotalCredit))
	f.requireReplay(t)
}

func TestUnknownAccountCodeStaysUnlinked(t *testing.T) {
	f := newFixture(t)
	entry, err := f.journals.Post(context.Background(), f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{
			{AccountCode: "7777", AccountName: "Suspense", Debit: d("40")},
			line(accounts.CodeCash, "", "40"),
		},
	})
	require.NoError(t, err)
	require.Nil(t, entry.Lines[0].AccountID)
	require.Equal(t, "Suspense", entry.Lines[0].AccountName)
	require.True(t, f.balances(t)[accounts.CodeCash].Equal(d("-40")))
	f.requireReplay(t)
}

func TestEntryNumbersAreSequentialPerScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := internalShared.DemoScope("d-1")
	_, err := f.accounts.Initialize(ctx, other, "")
	require.NoError(t, err)

	input := journals.PostingInput{Lines: []journals.PostingLineInput{line(accounts.CodeCash, "1", ""), line(accounts.CodeSalesRevenue, "", "1")}}
	var wg sync.WaitGroup
	numbers := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := f.journals.Post(ctx, f.scope, input)
			if err != nil {
				t.Errorf("post: %v", err)
				return
			}
			numbers <- e.EntryNumber
		}()
	}
	wg.Wait()
	close(numbers)
	seen := map[string]bool{}
	for n := range numbers {
		require.False(t, seen[n], "duplicate entry number %s", n)
		seen[n] = true
	}
	require.Len(t, seen, 10)
	require.True(t, seen["JE-000010"])

	e, err := f.journals.Post(ctx, other, input)
	require.NoError(t, err)
	require.Equal(t, "JE-000001", e.EntryNumber)
	require.True(t, f.balances(t)[accounts.CodeCash].Equal(d("10")))
}

// Scenario E plus the update-then-reverse property.
func TestUpdateThenDeleteRestoresBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.balances(t)

	entry, err := f.journals.Post(ctx, f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{
			line(accounts.CodeRentExpense, "300", ""),
			line(accounts.CodeCash, "", "300"),
		},
	})
	require.NoError(t, err)

	desc := "Rent paid from bank"
	updated, err := f.journals.Update(ctx, f.scope, entry.ID, journals.UpdateInput{
		Description: &desc,
		Lines: []journals.PostingLineInput{
			line(accounts.CodeRentExpense, "350", ""),
			line(accounts.CodeBank, "", "350"),
		},
		UpdatedBy: "u-2",
	})
	require.NoError(t, err)
	require.Equal(t, desc, updated.Description)
	require.Equal(t, "u-2", updated.UpdatedBy)
	require.NotNil(t, updated.UpdatedAt)
	require.Equal(t, entry.EntryNumber, updated.EntryNumber)

	bal := f.balances(t)
	require.True(t, bal[accounts.CodeCash].IsZero(), "old account reversed exactly, got %s", bal[accounts.CodeCash])
	require.True(t, bal[accounts.CodeBank].Equal(d("-350")))
	require.True(t, bal[accounts.CodeRentExpense].Equal(d("350")), "no double counting, got %s", bal[accounts.CodeRentExpense])
	f.requireReplay(t)

	require.NoError(t, f.journals.Delete(ctx, f.scope, entry.ID, "u-2"))
	require.Equal(t, len(before), len(f.balances(t)))
	for code, bal := range f.balances(t) {
		require.True(t, bal.Equal(before[code]), "account %s not restored: %s", code, bal)
	}
	_, err = f.journals.Get(ctx, f.scope, entry.ID)
	require.ErrorIs(t, err, shared.ErrJournalNotFound)
}

func TestUpdateRejectsUnbalancedWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entry, err := f.journals.Post(ctx, f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{line(accounts.CodeCash, "50", ""), line(accounts.CodeSalesRevenue, "", "50")},
	})
	require.NoError(t, err)
	before := f.balances(t)

	_, err = f.journals.Update(ctx, f.scope, entry.ID, journals.UpdateInput{
		Lines: []journals.PostingLineInput{line(accounts.CodeCash, "60", ""), line(accounts.CodeSalesRevenue, "", "50")},
	})
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Equal(t, before, f.balances(t))
}

func TestUpdateRollsBackOnStorageFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entry, err := f.journals.Post(ctx, f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{line(accounts.CodeCash, "50", ""), line(accounts.CodeSalesRevenue, "", "50")},
	})
	require.NoError(t, err)
	before := f.balances(t)

	boom := errors.New("disk full")
	f.store.FailNext("journals.ReplaceEntry", boom)
	_, err = f.journals.Update(ctx, f.scope, entry.ID, journals.UpdateInput{
		Lines: []journals.PostingLineInput{line(accounts.CodeBank, "70", ""), line(accounts.CodeSalesRevenue, "", "70")},
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, before, f.balances(t))
	stored, err := f.journals.Get(ctx, f.scope, entry.ID)
	require.NoError(t, err)
	require.Equal(t, accounts.CodeCash, stored.Lines[0].AccountCode)
}

func TestUpdateAndDeleteUnknownEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.balances(t)
	_, err := f.journals.Update(ctx, f.scope, uuid.New(), journals.UpdateInput{
		Lines: []journals.PostingLineInput{line(accounts.CodeCash, "1", ""), line(accounts.CodeBank, "", "1")},
	})
	require.ErrorIs(t, err, shared.ErrJournalNotFound)
	require.ErrorIs(t, err, internalShared.ErrNotFound)
	require.ErrorIs(t, f.journals.Delete(ctx, f.scope, uuid.New(), ""), shared.ErrJournalNotFound)
	require.Equal(t, before, f.balances(t))
}

func TestEntriesAreScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entry, err := f.journals.Post(ctx, f.scope, journals.PostingInput{
		Lines: []journals.PostingLineInput{line(accounts.CodeCash, "5", ""), line(accounts.CodeSalesRevenue, "", "5")},
	})
	require.NoError(t, err)
	_, err = f.journals.Get(ctx, internalShared.TenantScope("t-2"), entry.ID)
	require.ErrorIs(t, err, shared.ErrJournalNotFound)
	_, err = f.journals.Post(ctx, internalShared.Scope{}, journals.PostingInput{})
	require.ErrorIs(t, err, internalShared.ErrScopeRequired)
}

func TestListFiltersAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, ref := range []journals.ReferenceType{journals.RefSale, journals.RefExpense, journals.RefSale} {
		_, err := f.journals.Post(ctx, f.scope, journals.PostingInput{
			Date:          day.AddDate(0, 0, i),
			ReferenceType: ref,
			Lines:         []journals.PostingLineInput{line(accounts.CodeCash, "1", ""), line(accounts.CodeSalesRevenue, "", "1")},
		})
		require.NoError(t, err)
	}
	all, err := f.journals.List(ctx, f.scope, journals.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "JE-000003", all[0].EntryNumber, "newest first")

	from := day.AddDate(0, 0, 1)
	sales, err := f.journals.List(ctx, f.scope, journals.ListFilter{From: &from, ReferenceType: journals.RefSale})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	require.Equal(t, "JE-000003", sales[0].EntryNumber)
}
