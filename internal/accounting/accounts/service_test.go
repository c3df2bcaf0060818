package accounts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/memstore"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	scope := internalShared.TenantScope("t-1")
	svc := accounts.NewService(memstore.New().Accounts())

	created, err := svc.Initialize(ctx, scope, "u-1")
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Initialize(ctx, scope, "u-1")
	require.NoError(t, err)
	require.False(t, created)

	list, err := svc.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, list, accounts.DefaultChartSize)

	counts := map[accounts.AccountType]int{}
	for _, acc := range list {
		counts[acc.Type]++
		if !acc.IsSystem || !acc.IsActive || !acc.Balance.IsZero() {
			t.Fatalf("seeded account %s should be an active zero-balance system account", acc.Code)
		}
	}
	require.Equal(t, map[accounts.AccountType]int{
		accounts.AccountTypeAsset:     5,
		accounts.AccountTypeLiability: 2,
		accounts.AccountTypeEquity:    2,
		accounts.AccountTypeRevenue:   2,
		accounts.AccountTypeExpense:   5,
	}, counts)
}

func TestInitializeSkipsScopeWithUserAccounts(t *testing.T) {
	ctx := context.Background()
	scope := internalShared.DemoScope("demo-7")
	svc := accounts.NewService(memstore.New().Accounts())

	_, err := svc.Create(ctx, scope, accounts.CreateInput{Code: "6100", Name: "Marketing", Type: "Expense"}, "u-1")
	require.NoError(t, err)

	created, err := svc.Initialize(ctx, scope, "u-1")
	require.NoError(t, err)
	require.False(t, created)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	scope := internalShared.TenantScope("t-1")
	svc := accounts.NewService(memstore.New().Accounts())
	_, err := svc.Initialize(ctx, scope, "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, scope, accounts.CreateInput{Code: accounts.CodeCash, Name: "Till", Type: accounts.AccountTypeAsset}, "u-1")
	require.ErrorIs(t, err, shared.ErrDuplicateCode)

	other := internalShared.TenantScope("t-2")
	acc, err := svc.Create(ctx, other, accounts.CreateInput{Code: accounts.CodeCash, Name: "Till", Type: accounts.AccountTypeAsset}, "u-1")
	require.NoError(t, err, "codes are unique per scope only")
	require.False(t, acc.IsSystem)
	require.True(t, acc.Balance.IsZero())
}

func TestCreateValidatesType(t *testing.T) {
	svc := accounts.NewService(memstore.New().Accounts())
	_, err := svc.Create(context.Background(), internalShared.TenantScope("t-1"), accounts.CreateInput{Code: "9000", Name: "Odd", Type: "contra"}, "")
	require.ErrorIs(t, err, shared.ErrInvalidAccountType)
	require.True(t, shared.IsValidation(err))
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	scope := internalShared.TenantScope("t-1")
	svc := accounts.NewService(memstore.New().Accounts())
	_, err := svc.Initialize(ctx, scope, "")
	require.NoError(t, err)

	acc, err := svc.LookupByName(ctx, scope, "  accounts RECEIVABLE ")
	require.NoError(t, err)
	require.Equal(t, accounts.CodeAccountsReceivable, acc.Code)

	_, err = svc.LookupByCode(ctx, scope, "0000")
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
	require.True(t, errors.Is(err, internalShared.ErrNotFound))
}

func TestAdjustBalanceIsTheOnlyMutator(t *testing.T) {
	ctx := context.Background()
	scope := internalShared.TenantScope("t-1")
	svc := accounts.NewService(memstore.New().Accounts())
	_, err := svc.Initialize(ctx, scope, "")
	require.NoError(t, err)

	require.NoError(t, svc.AdjustBalance(ctx, scope, accounts.CodeCash, decimal.RequireFromString("10.005")))
	require.NoError(t, svc.AdjustBalance(ctx, scope, accounts.CodeCash, decimal.RequireFromString("-4")))
	acc, err := svc.LookupByCode(ctx, scope, accounts.CodeCash)
	require.NoError(t, err)
	require.True(t, acc.Balance.Equal(decimal.RequireFromString("6.01")), "got %s", acc.Balance)

	err = svc.AdjustBalance(ctx, scope, "9999", decimal.NewFromInt(1))
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestNormalBalance(t *testing.T) {
	rev := accounts.Account{Type: accounts.AccountTypeRevenue, Balance: decimal.NewFromInt(-250)}
	require.True(t, rev.NormalBalance().Equal(decimal.NewFromInt(250)))
	cash := accounts.Account{Type: accounts.AccountTypeAsset, Balance: decimal.NewFromInt(-5)}
	require.True(t, cash.NormalBalance().Equal(decimal.NewFromInt(-5)))
}
