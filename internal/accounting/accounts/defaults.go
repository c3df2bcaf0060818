package accounts

// Well-known account codes used by the posting rules.
const (
	CodeCash               = "1001"
	CodeBank               = "1002"
	CodeAccountsReceivable = "1100"
	CodeInventory          = "1200"
	CodeFixedAssets        = "1500"
	CodeAccountsPayable    = "2001"
	CodeSalesTaxPayable    = "2100"
	CodeOwnerEquity        = "3001"
	CodeRetainedEarnings   = "3100"
	CodeSalesRevenue       = "4001"
	CodeServiceRevenue     = "4100"
	CodeCostOfGoodsSold    = "5001"
	CodeSalaryExpense      = "5100"
	CodeRentExpense        = "5200"
	CodeUtilitiesExpense   = "5300"
	CodeMiscExpense        = "5900"
)

type chartEntry struct {
	code     string
	name     string
	typ      AccountType
	category string
}

var defaultChart = []chartEntry{
	{CodeCash, "Cash", AccountTypeAsset, "Current Asset"},
	{CodeBank, "Bank", AccountTypeAsset, "Current Asset"},
	{CodeAccountsReceivable, "Accounts Receivable", AccountTypeAsset, "Current Asset"},
	{CodeInventory, "Inventory", AccountTypeAsset, "Current Asset"},
	{CodeFixedAssets, "Fixed Assets", AccountTypeAsset, "Fixed Asset"},
	{CodeAccountsPayable, "Accounts Payable", AccountTypeLiability, "Current Liability"},
	{CodeSalesTaxPayable, "Sales Tax Payable", AccountTypeLiability, "Current Liability"},
	{CodeOwnerEquity, "Owner Equity", AccountTypeEquity, "Equity"},
	{CodeRetainedEarnings, "Retained Earnings", AccountTypeEquity, "Equity"},
	{CodeSalesRevenue, "Sales Revenue", AccountTypeRevenue, "Operating Revenue"},
	{CodeServiceRevenue, "Service Revenue", AccountTypeRevenue, "Operating Revenue"},
	{CodeCostOfGoodsSold, "Cost of Goods Sold", AccountTypeExpense, "Direct Expense"},
	{CodeSalaryExpense, "Salary Expense", AccountTypeExpense, "Operating Expense"},
	{CodeRentExpense, "Rent Expense", AccountTypeExpense, "Operating Expense"},
	{CodeUtilitiesExpense, "Utilities Expense", AccountTypeExpense, "Operating Expense"},
	{CodeMiscExpense, "Miscellaneous Expense", AccountTypeExpense, "Operating Expense"},
}

// DefaultChartSize is the number of system accounts seeded per scope.
var DefaultChartSize = len(defaultChart)

// DefaultName returns the seeded name for a system code, empty when unknown.
func DefaultName(code string) string {
	for _, entry := range defaultChart {
		if entry.code == code {
			return entry.name
		}
	}
	return ""
}
