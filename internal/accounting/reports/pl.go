package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// ProfitAndLossAccount represents a revenue or expense account summary.
type ProfitAndLossAccount struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ProfitAndLossSection groups accounts by nature.
type ProfitAndLossSection struct {
	Accounts []ProfitAndLossAccount `json:"accounts"`
	Total    decimal.Decimal        `json:"total"`
}

// Period is an inclusive reporting window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MonthToDate returns the window from the first of now's month to now.
func MonthToDate(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Period{Start: start, End: now}
}

// ProfitAndLoss carries two independent computations: NetProfit comes from
// account balances, GrossProfit from the period's raw sale records.
type ProfitAndLoss struct {
	Period          Period               `json:"period"`
	Revenue         ProfitAndLossSection `json:"revenue"`
	Expenses        ProfitAndLossSection `json:"expenses"`
	NetProfit       decimal.Decimal      `json:"net_profit"`
	GrossSales      decimal.Decimal      `json:"gross_sales"`
	CostOfGoodsSold decimal.Decimal      `json:"cost_of_goods_sold"`
	GrossProfit     decimal.Decimal      `json:"gross_profit"`
}

// BuildProfitAndLoss sums absolute revenue and expense balances and, separately,
// recomputes gross sales and COGS from sales created within the period.
func BuildProfitAndLoss(accs []accounts.Account, sales []Sale, period Period) ProfitAndLoss {
	revenue := ProfitAndLossSection{Accounts: []ProfitAndLossAccount{}}
	expenses := ProfitAndLossSection{Accounts: []ProfitAndLossAccount{}}

	for _, acc := range accs {
		row := ProfitAndLossAccount{Code: acc.Code, Name: acc.Name, Amount: acc.Balance.Abs()}
		switch acc.Type {
		case accounts.AccountTypeRevenue:
			revenue.Accounts = append(revenue.Accounts, row)
			revenue.Total = revenue.Total.Add(row.Amount)
		case accounts.AccountTypeExpense:
			expenses.Accounts = append(expenses.Accounts, row)
			expenses.Total = expenses.Total.Add(row.Amount)
		}
	}
	sort.Slice(revenue.Accounts, func(i, j int) bool { return revenue.Accounts[i].Code < revenue.Accounts[j].Code })
	sort.Slice(expenses.Accounts, func(i, j int) bool { return expenses.Accounts[i].Code < expenses.Accounts[j].Code })

	grossSales, cogs := decimal.Zero, decimal.Zero
	for _, sale := range sales {
		if sale.CreatedAt.Before(period.Start) || sale.CreatedAt.After(period.End) {
			continue
		}
		grossSales = grossSales.Add(sale.TotalAmount)
		cogs = cogs.Add(sale.Cost())
	}

	revenue.Total = shared.Round2(revenue.Total)
	expenses.Total = shared.Round2(expenses.Total)
	return ProfitAndLoss{
		Period:          period,
		Revenue:         revenue,
		Expenses:        expenses,
		NetProfit:       revenue.Total.Sub(expenses.Total),
		GrossSales:      shared.Round2(grossSales),
		CostOfGoodsSold: shared.Round2(cogs),
		GrossProfit:     shared.Round2(grossSales.Sub(cogs)),
	}
}
