package journals

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalStatus enumerates journal lifecycle values.
type JournalStatus string

const (
	JournalStatusPosted JournalStatus = "posted"
	JournalStatusVoided JournalStatus = "voided"
)

// ReferenceType names the business document behind an entry.
type ReferenceType string

const (
	RefSale            ReferenceType = "sale"
	RefPurchase        ReferenceType = "purchase"
	RefPaymentReceived ReferenceType = "payment_received"
	RefPaymentMade     ReferenceType = "payment_made"
	RefExpense         ReferenceType = "expense"
	RefManual          ReferenceType = "manual"
)

// Valid reports whether t is empty or a known reference type.
func (t ReferenceType) Valid() bool {
	switch t {
	case "", RefSale, RefPurchase, RefPaymentReceived, RefPaymentMade, RefExpense, RefManual:
		return true
	}
	return false
}

// JournalEntry captures posting metadata.
type JournalEntry struct {
	ID            uuid.UUID       `json:"id"`
	EntryNumber   string          `json:"entry_number"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference"`
	ReferenceType ReferenceType   `json:"reference_type,omitempty"`
	ReferenceID   *int64          `json:"reference_id,omitempty"`
	Lines         []JournalLine   `json:"lines"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	Status        JournalStatus   `json:"status"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedBy     string          `json:"updated_by,omitempty"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

// JournalLine stores debit or credit amount for an account.
// AccountID is nil when the code did not resolve at posting time; such lines
// are kept for the record but never move a balance.
type JournalLine struct {
	AccountID   *uuid.UUID      `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Linked reports whether the line is attached to a chart account.
func (l JournalLine) Linked() bool {
	return l.AccountID != nil
}

// Delta is the signed balance change the line applies: debit minus credit.
func (l JournalLine) Delta() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// FormatEntryNumber renders a sequence value as "JE-000007".
func FormatEntryNumber(seq int64) string {
	return fmt.Sprintf("JE-%06d", seq)
}
