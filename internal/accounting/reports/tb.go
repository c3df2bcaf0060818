package reports

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// TrialBalanceAccount represents a row inside a trial balance group. At most
// one of Debit and Credit is non-zero.
type TrialBalanceAccount struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// TrialBalanceGroup aggregates accounts of one type.
type TrialBalanceGroup struct {
	Type     accounts.AccountType  `json:"type"`
	Accounts []TrialBalanceAccount `json:"accounts"`
	Debit    decimal.Decimal       `json:"debit"`
	Credit   decimal.Decimal       `json:"credit"`
}

// TrialBalance is the structure returned by the trial balance endpoint.
type TrialBalance struct {
	Groups      []TrialBalanceGroup `json:"groups"`
	TotalDebit  decimal.Decimal     `json:"total_debit"`
	TotalCredit decimal.Decimal     `json:"total_credit"`
	IsBalanced  bool                `json:"is_balanced"`
}

// BuildTrialBalance places each account's normal balance on its normal side:
// asset and expense balances >= 0 are debits, liability, equity and revenue
// balances >= 0 are credits, and negative normal balances flip sides.
func BuildTrialBalance(accs []accounts.Account) TrialBalance {
	groups := make(map[accounts.AccountType]*TrialBalanceGroup, len(accounts.Types))
	for _, typ := range accounts.Types {
		groups[typ] = &TrialBalanceGroup{Type: typ, Accounts: []TrialBalanceAccount{}}
	}
	for _, acc := range accs {
		grp, ok := groups[acc.Type]
		if !ok {
			continue
		}
		row := TrialBalanceAccount{Code: acc.Code, Name: acc.Name, Type: displayType(acc.Type)}
		balance := acc.NormalBalance()
		debitSide := acc.Type.DebitNormal() == !balance.IsNegative()
		if debitSide {
			row.Debit = balance.Abs()
		} else {
			row.Credit = balance.Abs()
		}
		grp.Accounts = append(grp.Accounts, row)
		grp.Debit = grp.Debit.Add(row.Debit)
		grp.Credit = grp.Credit.Add(row.Credit)
	}

	result := TrialBalance{Groups: make([]TrialBalanceGroup, 0, len(accounts.Types))}
	for _, typ := range accounts.Types {
		grp := groups[typ]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalDebit = result.TotalDebit.Add(grp.Debit)
		result.TotalCredit = result.TotalCredit.Add(grp.Credit)
	}
	result.IsBalanced = result.TotalDebit.Sub(result.TotalCredit).Abs().LessThan(shared.Tolerance)
	result.TotalDebit = shared.Round2(result.TotalDebit)
	result.TotalCredit = shared.Round2(result.TotalCredit)
	return result
}

func displayType(t accounts.AccountType) string {
	return cases.Title(language.English).String(string(t))
}
