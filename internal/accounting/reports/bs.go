package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// BalanceSheetAccount summarises an account for assets, liabilities, or equity.
type BalanceSheetAccount struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceSheetSection contains the accounts and totals for a classification.
type BalanceSheetSection struct {
	Accounts []BalanceSheetAccount `json:"accounts"`
	Total    decimal.Decimal       `json:"total"`
}

// EquitySection adds retained earnings to the equity accounts. Total
// includes retained earnings.
type EquitySection struct {
	Accounts         []BalanceSheetAccount `json:"accounts"`
	RetainedEarnings decimal.Decimal       `json:"retained_earnings"`
	Total            decimal.Decimal       `json:"total"`
}

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    EquitySection       `json:"equity"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"total_liabilities_equity"`
	IsBalanced                bool                `json:"is_balanced"`
}

// BuildBalanceSheet sums asset balances signed and liability and equity
// balances by magnitude. Retained earnings are recomputed as revenue minus
// expenses rather than read from a closing entry.
func BuildBalanceSheet(accs []accounts.Account) BalanceSheet {
	assets := BalanceSheetSection{Accounts: []BalanceSheetAccount{}}
	liabilities := BalanceSheetSection{Accounts: []BalanceSheetAccount{}}
	equity := EquitySection{Accounts: []BalanceSheetAccount{}}
	revenue, expenses := decimal.Zero, decimal.Zero

	for _, acc := range accs {
		switch acc.Type {
		case accounts.AccountTypeAsset:
			assets.Accounts = append(assets.Accounts, BalanceSheetAccount{Code: acc.Code, Name: acc.Name, Balance: acc.Balance})
			assets.Total = assets.Total.Add(acc.Balance)
		case accounts.AccountTypeLiability:
			liabilities.Accounts = append(liabilities.Accounts, BalanceSheetAccount{Code: acc.Code, Name: acc.Name, Balance: acc.Balance.Abs()})
			liabilities.Total = liabilities.Total.Add(acc.Balance.Abs())
		case accounts.AccountTypeEquity:
			equity.Accounts = append(equity.Accounts, BalanceSheetAccount{Code: acc.Code, Name: acc.Name, Balance: acc.Balance.Abs()})
			equity.Total = equity.Total.Add(acc.Balance.Abs())
		case accounts.AccountTypeRevenue:
			revenue = revenue.Add(acc.Balance.Abs())
		case accounts.AccountTypeExpense:
			expenses = expenses.Add(acc.Balance.Abs())
		}
	}

	sort.Slice(assets.Accounts, func(i, j int) bool { return assets.Accounts[i].Code < assets.Accounts[j].Code })
	sort.Slice(liabilities.Accounts, func(i, j int) bool { return liabilities.Accounts[i].Code < liabilities.Accounts[j].Code })
	sort.Slice(equity.Accounts, func(i, j int) bool { return equity.Accounts[i].Code < equity.Accounts[j].Code })

	equity.RetainedEarnings = shared.Round2(revenue.Sub(expenses))
	equity.Total = shared.Round2(equity.Total.Add(equity.RetainedEarnings))
	assets.Total = shared.Round2(assets.Total)
	liabilities.Total = shared.Round2(liabilities.Total)
	totalLE := liabilities.Total.Add(equity.Total)

	return BalanceSheet{
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		TotalLiabilitiesAndEquity: totalLE,
		IsBalanced:                assets.Total.Sub(totalLE).Abs().LessThan(shared.Tolerance),
	}
}
