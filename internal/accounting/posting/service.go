package posting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Ledger posts journal entries.
type Ledger interface {
	Post(ctx context.Context, scope internalShared.Scope, input journals.PostingInput) (journals.JournalEntry, error)
}

// Subledger records counterparty movements.
type Subledger interface {
	Record(ctx context.Context, scope internalShared.Scope, in subledger.RecordInput) (subledger.Entry, error)
}

// Recorder counts posting outcomes.
type Recorder interface {
	RecordPosting(event, outcome string)
}

// Service turns business events into journal entries and sub-ledger rows
// following the posting rule table.
type Service struct {
	ledger    Ledger
	subledger Subledger
	metrics   Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(ledger Ledger, sub Subledger, metrics Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, subledger: sub, metrics: metrics, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post applies the rule for evt.Kind. Any error is a *shared.PostingFailure;
// when its stage is StageSubledger the journal entry in the outcome is
// already committed.
func (s *Service) Post(ctx context.Context, scope internalShared.Scope, evt Event) (Outcome, error) {
	out := Outcome{Event: evt.Kind, Status: StatusFailed}
	r, ok := rules[evt.Kind]
	if !ok {
		return out, s.fail(ctx, evt, shared.StageValidation, "", fmt.Errorf("%w: unknown event %q", shared.ErrInvalidEvent, evt.Kind))
	}
	if err := validateEvent(r, evt); err != nil {
		return out, s.fail(ctx, evt, shared.StageValidation, "", err)
	}
	if evt.Date.IsZero() {
		evt.Date = s.now().UTC()
	}
	entry, err := s.ledger.Post(ctx, scope, journals.PostingInput{
		Date:          evt.Date,
		Description:   r.describe(evt),
		Reference:     evt.Document,
		ReferenceType: r.refType,
		ReferenceID:   evt.ReferenceID,
		Lines:         r.lines(evt),
		PostedBy:      evt.Actor,
	})
	if err != nil {
		return out, s.fail(ctx, evt, shared.StageJournal, "", err)
	}
	out.Entry = &entry
	out.Status = StatusJournalOnly

	if in, ok := r.ledgerInput(evt); ok {
		row, err := s.subledger.Record(ctx, scope, in)
		if err != nil {
			return out, s.fail(ctx, evt, shared.StageSubledger, entry.EntryNumber, err)
		}
		out.Subledger = &row
	}
	out.Status = StatusPosted
	s.record(evt.Kind, StatusPosted)
	return out, nil
}

// PostCashSale records Dr Cash / Cr Sales Revenue plus COGS when cost > 0.
func (s *Service) PostCashSale(ctx context.Context, scope internalShared.Scope, receipt string, total, cost decimal.Decimal, saleID *int64) (Outcome, error) {
	return s.Post(ctx, scope, Event{Kind: EventCashSale, Document: receipt, Amount: total, Cost: cost, ReferenceID: saleID})
}

// PostCreditSale records Dr Accounts Receivable / Cr Sales Revenue and debits the customer.
func (s *Service) PostCreditSale(ctx context.Context, scope internalShared.Scope, customerID int64, customerName, receipt string, total, cost decimal.Decimal, saleID *int64) (Outcome, error) {
	return s.Post(ctx, scope, Event{
		Kind:             EventCreditSale,
		Document:         receipt,
		Amount:           total,
		Cost:             cost,
		ReferenceID:      saleID,
		CounterpartyID:   customerID,
		CounterpartyName: customerName,
	})
}

// PostPaymentReceived records Dr Cash or Bank / Cr Accounts Receivable and credits the customer.
func (s *Service) PostPaymentReceived(ctx context.Context, scope internalShared.Scope, customerID int64, customerName string, amount decimal.Decimal, method string, saleID *int64) (Outcome, error) {
	return s.Post(ctx, scope, Event{
		Kind:             EventPaymentReceived,
		Amount:           amount,
		PaymentMethod:    method,
		ReferenceID:      saleID,
		CounterpartyID:   customerID,
		CounterpartyName: customerName,
	})
}

// PostPurchase records a purchase order. paymentType "credit" posts through
// Accounts Payable and the vendor sub-ledger; anything else is paid in cash.
func (s *Service) PostPurchase(ctx context.Context, scope internalShared.Scope, vendorID int64, vendorName, poNumber string, total decimal.Decimal, paymentType string, poID *int64) (Outcome, error) {
	kind := EventCashPurchase
	if paymentType == "credit" {
		kind = EventCreditPurchase
	}
	return s.Post(ctx, scope, Event{
		Kind:             kind,
		Document:         poNumber,
		Amount:           total,
		ReferenceID:      poID,
		CounterpartyID:   vendorID,
		CounterpartyName: vendorName,
	})
}

// PostPaymentMade records Dr Accounts Payable / Cr Cash or Bank and debits the vendor.
func (s *Service) PostPaymentMade(ctx context.Context, scope internalShared.Scope, vendorID int64, vendorName string, amount decimal.Decimal, method string, poID *int64) (Outcome, error) {
	return s.Post(ctx, scope, Event{
		Kind:             EventPaymentMade,
		Amount:           amount,
		PaymentMethod:    method,
		ReferenceID:      poID,
		CounterpartyID:   vendorID,
		CounterpartyName: vendorName,
	})
}

// PostExpense records Dr expense account / Cr Cash or Bank.
func (s *Service) PostExpense(ctx context.Context, scope internalShared.Scope, expenseCode, expenseName, description string, amount decimal.Decimal, method string) (Outcome, error) {
	return s.Post(ctx, scope, Event{
		Kind:          EventExpense,
		Amount:        amount,
		PaymentMethod: method,
		ExpenseCode:   expenseCode,
		ExpenseName:   expenseName,
		Description:   description,
	})
}

func (s *Service) fail(ctx context.Context, evt Event, stage shared.PostingStage, entryNumber string, err error) error {
	status := StatusFailed
	if stage == shared.StageSubledger {
		status = StatusJournalOnly
	}
	s.record(evt.Kind, status)
	failure := &shared.PostingFailure{Event: string(evt.Kind), Stage: stage, EntryNumber: entryNumber, Err: err}
	level := slog.LevelError
	if stage == shared.StageValidation || errors.Is(err, internalShared.ErrScopeRequired) {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "ledger posting failed",
		slog.String("event", string(evt.Kind)),
		slog.String("stage", string(stage)),
		slog.String("entry_number", entryNumber),
		slog.Any("error", err))
	return failure
}

func (s *Service) record(kind EventKind, status Status) {
	if s.metrics != nil {
		s.metrics.RecordPosting(string(kind), string(status))
	}
}

func validateEvent(r rule, evt Event) error {
	if !evt.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", shared.ErrInvalidAmount)
	}
	if evt.Cost.IsNegative() {
		return fmt.Errorf("%w: cost must not be negative", shared.ErrInvalidAmount)
	}
	if r.counterparty != "" {
		if evt.CounterpartyID <= 0 {
			return fmt.Errorf("%w: %s requires a counterparty", shared.ErrInvalidEvent, evt.Kind)
		}
	}
	return nil
}
