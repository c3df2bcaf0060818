package posting

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
)

// slotKind says how a rule side picks its account.
type slotKind int

const (
	slotFixed slotKind = iota
	// slotSettlement is Bank for payment method "bank", otherwise Cash.
	slotSettlement
	// slotExpense is the event's expense account, defaulting to 5900.
	slotExpense
)

type slot struct {
	kind slotKind
	code string
}

type side int

const (
	sideDebit side = iota
	sideCredit
)

// rule is one row of the posting table.
type rule struct {
	debit         slot
	credit        slot
	withCost      bool
	refType       journals.ReferenceType
	counterparty  subledger.Kind
	ledgerSide    side
	describe      func(Event) string
	ledgerMessage func(Event) string
}

func fixed(code string) slot { return slot{kind: slotFixed, code: code} }

var settlement = slot{kind: slotSettlement}

var rules = map[EventKind]rule{
	EventCashSale: {
		debit:    fixed(accounts.CodeCash),
		credit:   fixed(accounts.CodeSalesRevenue),
		withCost: true,
		refType:  journals.RefSale,
		describe: func(e Event) string { return "Cash Sale - " + e.Document },
	},
	EventCreditSale: {
		debit:         fixed(accounts.CodeAccountsReceivable),
		credit:        fixed(accounts.CodeSalesRevenue),
		withCost:      true,
		refType:       journals.RefSale,
		counterparty:  subledger.KindCustomer,
		ledgerSide:    sideDebit,
		describe:      func(e Event) string { return fmt.Sprintf("Credit Sale to %s - %s", e.CounterpartyName, e.Document) },
		ledgerMessage: func(e Event) string { return "Credit Sale - " + e.Document },
	},
	EventPaymentReceived: {
		debit:         settlement,
		credit:        fixed(accounts.CodeAccountsReceivable),
		refType:       journals.RefPaymentReceived,
		counterparty:  subledger.KindCustomer,
		ledgerSide:    sideCredit,
		describe:      func(e Event) string { return "Payment from " + e.CounterpartyName },
		ledgerMessage: func(Event) string { return "Payment Received" },
	},
	EventCreditPurchase: {
		debit:         fixed(accounts.CodeInventory),
		credit:        fixed(accounts.CodeAccountsPayable),
		refType:       journals.RefPurchase,
		counterparty:  subledger.KindVendor,
		ledgerSide:    sideCredit,
		describe:      func(e Event) string { return fmt.Sprintf("Purchase from %s - %s", e.CounterpartyName, e.Document) },
		ledgerMessage: func(e Event) string { return "Purchase - " + e.Document },
	},
	EventCashPurchase: {
		debit:    fixed(accounts.CodeInventory),
		credit:   fixed(accounts.CodeCash),
		refType:  journals.RefPurchase,
		describe: func(e Event) string { return fmt.Sprintf("Purchase from %s - %s", e.CounterpartyName, e.Document) },
	},
	EventPaymentMade: {
		debit:         fixed(accounts.CodeAccountsPayable),
		credit:        settlement,
		refType:       journals.RefPaymentMade,
		counterparty:  subledger.KindVendor,
		ledgerSide:    sideDebit,
		describe:      func(e Event) string { return "Payment to " + e.CounterpartyName },
		ledgerMessage: func(Event) string { return "Payment Made" },
	},
	EventExpense: {
		debit:   slot{kind: slotExpense},
		credit:  settlement,
		refType: journals.RefExpense,
		describe: func(e Event) string {
			if strings.TrimSpace(e.Description) != "" {
				return e.Description
			}
			return "Expense"
		},
	},
}

// SettlementAccount maps a payment method to the account it settles through.
func SettlementAccount(method string) string {
	if method == "bank" {
		return accounts.CodeBank
	}
	return accounts.CodeCash
}

// resolve turns a slot into an account code and display name.
func (s slot) resolve(e Event) (string, string) {
	switch s.kind {
	case slotSettlement:
		code := SettlementAccount(e.PaymentMethod)
		return code, accounts.DefaultName(code)
	case slotExpense:
		code := strings.TrimSpace(e.ExpenseCode)
		if code == "" {
			return accounts.CodeMiscExpense, accounts.DefaultName(accounts.CodeMiscExpense)
		}
		name := e.ExpenseName
		if name == "" {
			name = accounts.DefaultName(code)
		}
		return code, name
	default:
		return s.code, accounts.DefaultName(s.code)
	}
}

// lines builds the journal lines for the event under this rule.
func (r rule) lines(e Event) []journals.PostingLineInput {
	debitCode, debitName := r.debit.resolve(e)
	creditCode, creditName := r.credit.resolve(e)
	out := []journals.PostingLineInput{
		{AccountCode: debitCode, AccountName: debitName, Debit: e.Amount},
		{AccountCode: creditCode, AccountName: creditName, Credit: e.Amount},
	}
	if r.withCost && e.Cost.IsPositive() {
		out = append(out,
			journals.PostingLineInput{AccountCode: accounts.CodeCostOfGoodsSold, AccountName: accounts.DefaultName(accounts.CodeCostOfGoodsSold), Debit: e.Cost},
			journals.PostingLineInput{AccountCode: accounts.CodeInventory, AccountName: accounts.DefaultName(accounts.CodeInventory), Credit: e.Cost},
		)
	}
	return out
}

// ledgerInput builds the sub-ledger movement, or ok=false when the rule has none.
func (r rule) ledgerInput(e Event) (subledger.RecordInput, bool) {
	if r.counterparty == "" {
		return subledger.RecordInput{}, false
	}
	in := subledger.RecordInput{
		Kind:           r.counterparty,
		CounterpartyID: e.CounterpartyID,
		Name:           e.CounterpartyName,
		Date:           e.Date,
		Description:    r.ledgerMessage(e),
		ReferenceType:  string(r.refType),
		ReferenceID:    e.ReferenceID,
	}
	if r.ledgerSide == sideDebit {
		in.Debit = e.Amount
	} else {
		in.Credit = e.Amount
	}
	return in, true
}
