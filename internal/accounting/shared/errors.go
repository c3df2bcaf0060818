package shared

import (
	"errors"
	"fmt"

	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrInvalidAmount indicates a negative or otherwise unusable amount.
	ErrInvalidAmount = errors.New("accounting: invalid amount")
	// ErrInvalidLine indicates a malformed journal line.
	ErrInvalidLine = errors.New("accounting: invalid journal line")
	// ErrInvalidAccountType indicates an unknown account classification.
	ErrInvalidAccountType = errors.New("accounting: invalid account type")
	// ErrInvalidEvent indicates an unknown or incomplete business event.
	ErrInvalidEvent = errors.New("accounting: invalid business event")
	// ErrDuplicateCode indicates the account code already exists in the scope.
	ErrDuplicateCode = errors.New("accounting: account code already exists")
	// ErrJournalNotFound indicates missing entry.
	ErrJournalNotFound = notFound("accounting: journal entry not found")
	// ErrAccountNotFound indicates missing account.
	ErrAccountNotFound = notFound("accounting: account not found")
	// ErrCounterpartyNotFound indicates the customer or vendor is unknown.
	ErrCounterpartyNotFound = notFound("accounting: counterparty not found")
)

type notFoundError struct {
	msg string
}

func notFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string { return e.msg }

// Is lets errors.Is(err, shared.ErrNotFound) match every ledger not-found.
func (e *notFoundError) Is(target error) bool {
	return target == internalShared.ErrNotFound
}

// IsValidation reports whether err is a caller mistake rather than a storage failure.
func IsValidation(err error) bool {
	for _, target := range []error{ErrUnbalanced, ErrTooFewLines, ErrInvalidAmount, ErrInvalidLine, ErrInvalidAccountType, ErrInvalidEvent} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// LineError wraps a validation failure with the offending line index.
func LineError(kind error, idx int, detail string) error {
	return fmt.Errorf("%w: line %d %s", kind, idx, detail)
}
