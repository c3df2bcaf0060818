package subledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Service maintains customer and vendor sub-ledgers alongside the counterparty
// running balance.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Record appends one movement and applies its balance effect in the same
// transaction. An unknown counterparty leaves nothing behind.
func (s *Service) Record(ctx context.Context, scope internalShared.Scope, in RecordInput) (Entry, error) {
	if err := scope.Validate(); err != nil {
		return Entry{}, err
	}
	if in.Kind != KindCustomer && in.Kind != KindVendor {
		return Entry{}, fmt.Errorf("%w: sub-ledger kind %q", shared.ErrInvalidEvent, in.Kind)
	}
	if in.CounterpartyID <= 0 {
		return Entry{}, shared.ErrCounterpartyNotFound
	}
	if in.Debit.IsNegative() || in.Credit.IsNegative() {
		return Entry{}, fmt.Errorf("%w: negative sub-ledger amount", shared.ErrInvalidAmount)
	}
	now := s.now().UTC()
	entry := Entry{
		ID:             uuid.New(),
		Kind:           in.Kind,
		CounterpartyID: in.CounterpartyID,
		Name:           in.Name,
		Date:           in.Date,
		Description:    in.Description,
		Debit:          shared.Round2(in.Debit),
		Credit:         shared.Round2(in.Credit),
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		CreatedAt:      now,
	}
	if entry.Date.IsZero() {
		entry.Date = now
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		name, err := tx.AdjustCounterpartyBalance(ctx, scope, in.Kind, in.CounterpartyID, in.Kind.Delta(entry.Debit, entry.Credit))
		if err != nil {
			return err
		}
		if entry.Name == "" {
			entry.Name = name
		}
		return tx.InsertEntry(ctx, scope, entry)
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Balance returns the counterparty's running balance.
func (s *Service) Balance(ctx context.Context, scope internalShared.Scope, kind Kind, id int64) (Counterparty, error) {
	if err := scope.Validate(); err != nil {
		return Counterparty{}, err
	}
	return s.repo.GetCounterparty(ctx, scope, kind, id)
}

// Statement returns the counterparty balance and its movements.
func (s *Service) Statement(ctx context.Context, scope internalShared.Scope, kind Kind, id int64) (Statement, error) {
	party, err := s.Balance(ctx, scope, kind, id)
	if err != nil {
		return Statement{}, err
	}
	entries, err := s.repo.List(ctx, scope, kind, id)
	if err != nil {
		return Statement{}, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return Statement{Counterparty: party, Entries: entries}, nil
}

// Statements returns every counterparty of kind with its movements.
func (s *Service) Statements(ctx context.Context, scope internalShared.Scope, kind Kind) ([]Statement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	parties, err := s.repo.ListCounterparties(ctx, scope, kind)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.List(ctx, scope, kind, 0)
	if err != nil {
		return nil, err
	}
	byParty := make(map[int64][]Entry, len(parties))
	for _, e := range entries {
		byParty[e.CounterpartyID] = append(byParty[e.CounterpartyID], e)
	}
	out := make([]Statement, 0, len(parties))
	for _, p := range parties {
		rows := byParty[p.ID]
		if rows == nil {
			rows = []Entry{}
		}
		out = append(out, Statement{Counterparty: p, Entries: rows})
	}
	return out, nil
}
