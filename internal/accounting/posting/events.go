package posting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
)

// EventKind names a business event that produces ledger postings.
type EventKind string

const (
	EventCashSale        EventKind = "cash_sale"
	EventCreditSale      EventKind = "credit_sale"
	EventPaymentReceived EventKind = "payment_received"
	EventCreditPurchase  EventKind = "credit_purchase"
	EventCashPurchase    EventKind = "cash_purchase"
	EventPaymentMade     EventKind = "payment_made"
	EventExpense         EventKind = "expense"
)

// Event carries the already-validated business facts for one posting.
// Amount is the sale total, purchase total, payment, or expense amount. Cost
// is the cost of goods sold for sales; zero skips the COGS pair. Document is
// the receipt or purchase-order number. PaymentMethod "bank" settles through
// Bank, anything else through Cash.
type Event struct {
	Kind             EventKind       `json:"kind" validate:"required"`
	Date             time.Time       `json:"date"`
	Amount           decimal.Decimal `json:"amount"`
	Cost             decimal.Decimal `json:"cost"`
	Document         string          `json:"document" validate:"max=120"`
	ReferenceID      *int64          `json:"reference_id"`
	CounterpartyID   int64           `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name" validate:"max=200"`
	PaymentMethod    string          `json:"payment_method"`
	ExpenseCode      string          `json:"expense_code"`
	ExpenseName      string          `json:"expense_name"`
	Description      string          `json:"description" validate:"max=500"`
	Actor            string          `json:"-"`
}

// Status summarises how far a posting got.
type Status string

const (
	StatusPosted      Status = "posted"
	StatusJournalOnly Status = "journal_only"
	StatusFailed      Status = "failed"
)

// Outcome is the typed result of posting one business event.
type Outcome struct {
	Event     EventKind              `json:"event"`
	Status    Status                 `json:"status"`
	Entry     *journals.JournalEntry `json:"entry,omitempty"`
	Subledger *subledger.Entry       `json:"subledger,omitempty"`
}
