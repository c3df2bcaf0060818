package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	_ "github.com/odyssey-erp/odyssey-ledger/testing"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func acc(code, name string, typ accounts.AccountType, balance string) accounts.Account {
	return accounts.Account{Code: code, Name: name, Type: typ, Balance: d(balance)}
}

// chartAfterSales is the chart after a 1000 cash sale costing 600 and a
// 500 credit sale with 200 collected.
func chartAfterSales() []accounts.Account {
	return []accounts.Account{
		acc("1001", "Cash", accounts.AccountTypeAsset, "1200"),
		acc("1002", "Bank", accounts.AccountTypeAsset, "0"),
		acc("1100", "Accounts Receivable", accounts.AccountTypeAsset, "300"),
		acc("1200", "Inventory", accounts.AccountTypeAsset, "-600"),
		acc("2001", "Accounts Payable", accounts.AccountTypeLiability, "0"),
		acc("3001", "Owner's Equity", accounts.AccountTypeEquity, "0"),
		acc("4001", "Sales Revenue", accounts.AccountTypeRevenue, "-1500"),
		acc("5001", "Cost of Goods Sold", accounts.AccountTypeExpense, "600"),
	}
}

func TestBuildTrialBalance(t *testing.T) {
	tb := BuildTrialBalance(chartAfterSales())
	if len(tb.Groups) != len(accounts.Types) {
		t.Fatalf("expected %d groups, got %d", len(accounts.Types), len(tb.Groups))
	}
	if !tb.TotalDebit.Equal(d("2100")) {
		t.Fatalf("unexpected total debit: %s", tb.TotalDebit)
	}
	if !tb.TotalCredit.Equal(d("2100")) {
		t.Fatalf("unexpected total credit: %s", tb.TotalCredit)
	}
	if !tb.IsBalanced {
		t.Fatalf("expected balanced trial balance")
	}
	assets := tb.Groups[0]
	if assets.Type != accounts.AccountTypeAsset {
		t.Fatalf("expected assets first, got %s", assets.Type)
	}
	inventory := assets.Accounts[3]
	if inventory.Code != "1200" || !inventory.Credit.Equal(d("600")) || !inventory.Debit.IsZero() {
		t.Fatalf("negative asset should sit on the credit side: %+v", inventory)
	}
	if inventory.Type != "Asset" {
		t.Fatalf("unexpected display type %q", inventory.Type)
	}
	revenue := tb.Groups[3].Accounts[0]
	if !revenue.Credit.Equal(d("1500")) || !revenue.Debit.IsZero() {
		t.Fatalf("revenue should sit on the credit side: %+v", revenue)
	}
}

func TestBuildTrialBalanceFlagsImbalance(t *testing.T) {
	tb := BuildTrialBalance([]accounts.Account{
		acc("1001", "Cash", accounts.AccountTypeAsset, "100"),
		acc("4001", "Sales Revenue", accounts.AccountTypeRevenue, "-99.98"),
	})
	if tb.IsBalanced {
		t.Fatalf("expected imbalance of 0.02 to be reported")
	}
}

func TestBuildProfitAndLossKeepsBothPaths(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	period := MonthToDate(now)
	sales := []Sale{
		{ID: 1, TotalAmount: d("1000"), CreatedAt: now.Add(-time.Hour), Items: []SaleItem{{Cost: d("300"), Quantity: d("2")}}},
		{ID: 2, TotalAmount: d("500"), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 3, TotalAmount: d("999"), CreatedAt: period.Start.Add(-time.Minute)},
	}
	pl := BuildProfitAndLoss(chartAfterSales(), sales, period)
	if !pl.Revenue.Total.Equal(d("1500")) {
		t.Fatalf("expected revenue 1500 got %s", pl.Revenue.Total)
	}
	if !pl.Expenses.Total.Equal(d("600")) {
		t.Fatalf("expected expenses 600 got %s", pl.Expenses.Total)
	}
	if !pl.NetProfit.Equal(d("900")) {
		t.Fatalf("expected net profit 900 got %s", pl.NetProfit)
	}
	if !pl.GrossSales.Equal(d("1500")) {
		t.Fatalf("expected gross sales from in-period sales only, got %s", pl.GrossSales)
	}
	if !pl.CostOfGoodsSold.Equal(d("600")) || !pl.GrossProfit.Equal(d("900")) {
		t.Fatalf("unexpected sales path: cogs=%s gross=%s", pl.CostOfGoodsSold, pl.GrossProfit)
	}
	if !pl.Period.Start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period start %s", pl.Period.Start)
	}
}

func TestBuildBalanceSheet(t *testing.T) {
	bs := BuildBalanceSheet(chartAfterSales())
	if !bs.Assets.Total.Equal(d("900")) {
		t.Fatalf("expected assets 900 got %s", bs.Assets.Total)
	}
	if !bs.Liabilities.Total.IsZero() {
		t.Fatalf("expected no liabilities got %s", bs.Liabilities.Total)
	}
	if !bs.Equity.RetainedEarnings.Equal(d("900")) {
		t.Fatalf("expected retained earnings 900 got %s", bs.Equity.RetainedEarnings)
	}
	if !bs.TotalLiabilitiesAndEquity.Equal(d("900")) || !bs.IsBalanced {
		t.Fatalf("expected balanced sheet, got L+E %s balanced=%v", bs.TotalLiabilitiesAndEquity, bs.IsBalanced)
	}
}

func TestBuildBalanceSheetUsesMagnitudeForCreditSide(t *testing.T) {
	bs := BuildBalanceSheet([]accounts.Account{
		acc("1001", "Cash", accounts.AccountTypeAsset, "700"),
		acc("2001", "Accounts Payable", accounts.AccountTypeLiability, "-200"),
		acc("3001", "Owner's Equity", accounts.AccountTypeEquity, "-500"),
	})
	if !bs.Liabilities.Accounts[0].Balance.Equal(d("200")) {
		t.Fatalf("expected liability magnitude, got %s", bs.Liabilities.Accounts[0].Balance)
	}
	if !bs.Equity.Total.Equal(d("500")) || !bs.IsBalanced {
		t.Fatalf("unexpected equity %s balanced=%v", bs.Equity.Total, bs.IsBalanced)
	}
}

func TestBuildAgingBuckets(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 10, 0, 0, 0, time.UTC)
	cust := int64(7)
	sales := []Sale{
		{ReceiptNumber: "R-1", CustomerID: &cust, CustomerName: "Ahmed", PaymentType: "credit", PaymentStatus: "unpaid", TotalAmount: d("100"), AmountDue: d("100"), CreatedAt: asOf.AddDate(0, 0, -30)},
		{ReceiptNumber: "R-2", PaymentType: "credit", PaymentStatus: "partial", TotalAmount: d("100"), AmountPaid: d("40"), AmountDue: d("60"), CreatedAt: asOf.AddDate(0, 0, -31)},
		{ReceiptNumber: "R-3", PaymentType: "credit", PaymentStatus: "unpaid", TotalAmount: d("25"), AmountDue: d("25"), CreatedAt: asOf.AddDate(0, 0, -90)},
		{ReceiptNumber: "R-4", PaymentType: "credit", PaymentStatus: "unpaid", TotalAmount: d("10"), AmountDue: d("10"), CreatedAt: asOf.AddDate(0, 0, -91)},
		{ReceiptNumber: "R-5", PaymentType: "credit", PaymentStatus: "paid", TotalAmount: d("80"), CreatedAt: asOf},
		{ReceiptNumber: "R-6", PaymentType: "cash", PaymentStatus: "unpaid", TotalAmount: d("80"), AmountDue: d("80"), CreatedAt: asOf},
	}
	report := BuildAging(ReceivableItems(sales), asOf)
	if len(report.Current.Items) != 1 || report.Current.Items[0].DaysOld != 30 {
		t.Fatalf("expected day 30 in current bucket: %+v", report.Current.Items)
	}
	if !report.Days31To60.Total.Equal(d("60")) {
		t.Fatalf("expected 31-60 total 60 got %s", report.Days31To60.Total)
	}
	if !report.Days61To90.Total.Equal(d("25")) || !report.Over90.Total.Equal(d("10")) {
		t.Fatalf("unexpected tail buckets: 61-90=%s 90+=%s", report.Days61To90.Total, report.Over90.Total)
	}
	if !report.GrandTotal.Equal(d("195")) {
		t.Fatalf("expected grand total 195 got %s", report.GrandTotal)
	}
	if report.Days31To60.Items[0].CounterpartyName != "Unknown" {
		t.Fatalf("expected Unknown for missing customer name")
	}
}

func TestPayableItemsFallBackToTotal(t *testing.T) {
	due := d("30")
	orders := []PurchaseOrder{
		{PONumber: "PO-1", SupplierName: "Acme", PaymentStatus: "unpaid", Total: d("120")},
		{PONumber: "PO-2", SupplierName: "Acme", PaymentStatus: "partial", Total: d("50"), AmountPaid: d("20"), AmountDue: &due},
		{PONumber: "PO-3", SupplierName: "Acme", PaymentStatus: "paid", Total: d("70")},
	}
	items := PayableItems(orders)
	if len(items) != 2 {
		t.Fatalf("expected 2 open orders got %d", len(items))
	}
	if !items[0].Due.Equal(d("120")) || !items[1].Due.Equal(d("30")) {
		t.Fatalf("unexpected dues %s %s", items[0].Due, items[1].Due)
	}
}

func TestDaysBetweenTruncates(t *testing.T) {
	from := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	if got := DaysBetween(from, from.Add(47*time.Hour)); got != 1 {
		t.Fatalf("expected 1 whole day got %d", got)
	}
}

func TestBuildSummary(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	due := d("50")
	in := SummaryInput{
		Accounts: append(chartAfterSales(), acc("1003", "Petty CASH box", accounts.AccountTypeAsset, "25")),
		Receivables: []Sale{
			{PaymentType: "credit", PaymentStatus: "partial", AmountDue: d("300")},
		},
		Payables: []PurchaseOrder{
			{PaymentStatus: "unpaid", Total: d("80")},
			{PaymentStatus: "partial", Total: d("90"), AmountDue: &due},
		},
		MonthSales: []Sale{
			{TotalAmount: d("1000"), CreatedAt: now.Add(-time.Hour)},
			{TotalAmount: d("500"), CreatedAt: now.AddDate(0, -1, 0)},
		},
	}
	s := BuildSummary(in, now)
	if !s.CashBalance.Equal(d("1225")) {
		t.Fatalf("expected cash-like balance 1225 got %s", s.CashBalance)
	}
	if !s.AccountsReceivable.Equal(d("300")) || !s.AccountsPayable.Equal(d("130")) {
		t.Fatalf("unexpected AR/AP %s/%s", s.AccountsReceivable, s.AccountsPayable)
	}
	if !s.NetPosition.Equal(d("1395")) {
		t.Fatalf("expected net position 1395 got %s", s.NetPosition)
	}
	if !s.MonthSales.Equal(d("1000")) {
		t.Fatalf("expected month sales 1000 got %s", s.MonthSales)
	}
	if !s.NetProfit.Equal(d("900")) {
		t.Fatalf("expected net profit 900 got %s", s.NetProfit)
	}
}
