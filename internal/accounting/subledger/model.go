package subledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind selects the customer or vendor sub-ledger.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindVendor   Kind = "vendor"
)

// ParseKind accepts the path names used by the HTTP adapter.
func ParseKind(raw string) (Kind, error) {
	switch raw {
	case "customer", "customers":
		return KindCustomer, nil
	case "vendor", "vendors", "supplier", "suppliers":
		return KindVendor, nil
	}
	return "", fmt.Errorf("subledger: unknown kind %q", raw)
}

// Delta is the counterparty balance change for a debit/credit pair.
// Customers owe us debit-credit; we owe vendors credit-debit.
func (k Kind) Delta(debit, credit decimal.Decimal) decimal.Decimal {
	if k == KindVendor {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// Entry is an append-only movement on a counterparty account.
type Entry struct {
	ID             uuid.UUID       `json:"id"`
	Kind           Kind            `json:"kind"`
	CounterpartyID int64           `json:"counterparty_id"`
	Name           string          `json:"name"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    *int64          `json:"reference_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Counterparty is the customer or supplier row holding the running balance.
type Counterparty struct {
	ID      int64           `json:"id"`
	Kind    Kind            `json:"kind"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// RecordInput describes one sub-ledger movement.
type RecordInput struct {
	Kind           Kind
	CounterpartyID int64
	Name           string
	Date           time.Time
	Description    string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	ReferenceType  string
	ReferenceID    *int64
}

// Statement is a counterparty's balance with its movements.
type Statement struct {
	Counterparty Counterparty `json:"counterparty"`
	Entries      []Entry      `json:"entries"`
}
