package reports

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Summary is the dashboard roll-up. Each figure is computed on its own and
// none is derived from another report.
type Summary struct {
	CashBalance        decimal.Decimal `json:"cash_balance"`
	AccountsReceivable decimal.Decimal `json:"accounts_receivable"`
	AccountsPayable    decimal.Decimal `json:"accounts_payable"`
	NetPosition        decimal.Decimal `json:"net_position"`
	MonthSales         decimal.Decimal `json:"month_sales"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	NetProfit          decimal.Decimal `json:"net_profit"`
}

// SummaryInput bundles the independently loaded inputs of a summary.
type SummaryInput struct {
	Accounts    []accounts.Account
	Receivables []Sale
	Payables    []PurchaseOrder
	MonthSales  []Sale
}

// IsCashLike reports whether the account name mentions cash or bank.
func IsCashLike(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "cash") || strings.Contains(lower, "bank")
}

// BuildSummary rolls up cash, open receivables and payables, month sales,
// and revenue and expense totals.
func BuildSummary(in SummaryInput, now time.Time) Summary {
	var s Summary
	for _, acc := range in.Accounts {
		if IsCashLike(acc.Name) {
			s.CashBalance = s.CashBalance.Add(acc.Balance)
		}
		switch acc.Type {
		case accounts.AccountTypeRevenue:
			s.TotalRevenue = s.TotalRevenue.Add(acc.Balance.Abs())
		case accounts.AccountTypeExpense:
			s.TotalExpenses = s.TotalExpenses.Add(acc.Balance.Abs())
		}
	}
	for _, sale := range in.Receivables {
		if sale.IsOpenReceivable() {
			s.AccountsReceivable = s.AccountsReceivable.Add(sale.AmountDue)
		}
	}
	for _, po := range in.Payables {
		if po.IsOpen() {
			s.AccountsPayable = s.AccountsPayable.Add(po.Due())
		}
	}
	monthStart := MonthToDate(now).Start
	for _, sale := range in.MonthSales {
		if !sale.CreatedAt.Before(monthStart) {
			s.MonthSales = s.MonthSales.Add(sale.TotalAmount)
		}
	}

	s.CashBalance = shared.Round2(s.CashBalance)
	s.AccountsReceivable = shared.Round2(s.AccountsReceivable)
	s.AccountsPayable = shared.Round2(s.AccountsPayable)
	s.MonthSales = shared.Round2(s.MonthSales)
	s.TotalRevenue = shared.Round2(s.TotalRevenue)
	s.TotalExpenses = shared.Round2(s.TotalExpenses)
	s.NetPosition = s.CashBalance.Add(s.AccountsReceivable).Sub(s.AccountsPayable)
	s.NetProfit = s.TotalRevenue.Sub(s.TotalExpenses)
	return s
}
