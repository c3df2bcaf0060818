package journals

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// PostingLineInput describes a journal line for posting request.
type PostingLineInput struct {
	AccountCode string          `json:"account_code" validate:"required"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// PostingInput groups fields required to create a journal entry.
type PostingInput struct {
	Date          time.Time          `json:"date"`
	Description   string             `json:"description" validate:"max=500"`
	Reference     string             `json:"reference" validate:"max=120"`
	ReferenceType ReferenceType      `json:"reference_type"`
	ReferenceID   *int64             `json:"reference_id"`
	Lines         []PostingLineInput `json:"lines" validate:"dive"`
	PostedBy      string             `json:"-"`
}

// Validate ensures posting input meets minimum criteria.
func (in PostingInput) Validate() error {
	if !in.ReferenceType.Valid() {
		return fmt.Errorf("%w: unknown reference type %q", shared.ErrInvalidLine, in.ReferenceType)
	}
	return validateLines(in.Lines)
}

// UpdateInput replaces an entry's lines and optionally its header fields.
type UpdateInput struct {
	Date        *time.Time         `json:"date"`
	Description *string            `json:"description" validate:"omitempty,max=500"`
	Reference   *string            `json:"reference" validate:"omitempty,max=120"`
	Lines       []PostingLineInput `json:"lines" validate:"dive"`
	UpdatedBy   string             `json:"-"`
}

// Validate applies the same line rules as a new posting.
func (in UpdateInput) Validate() error {
	return validateLines(in.Lines)
}

// ListFilter narrows journal listings.
type ListFilter struct {
	From          *time.Time
	To            *time.Time
	ReferenceType ReferenceType
}

func validateLines(lines []PostingLineInput) error {
	if len(lines) < 2 {
		return shared.ErrTooFewLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range lines {
		if strings.TrimSpace(line.AccountCode) == "" {
			return shared.LineError(shared.ErrInvalidLine, idx, "missing account code")
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.LineError(shared.ErrInvalidAmount, idx, "negative amount")
		}
		debit = debit.Add(shared.Round2(line.Debit))
		credit = credit.Add(shared.Round2(line.Credit))
	}
	// Lines are stored at cent precision, so the stored totals must balance.
	if !shared.WithinTolerance(debit, credit) {
		return fmt.Errorf("%w: debit %s credit %s", shared.ErrUnbalanced, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}

func totals(lines []JournalLine) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return shared.Round2(debit), shared.Round2(credit)
}
