package journals

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Invalidator drops cached reports derived from account balances.
type Invalidator interface {
	Bump(ctx context.Context, scope internalShared.Scope) error
}

// Service posts, updates, and deletes journal entries while keeping account
// balances equal to the sum of their linked lines.
type Service struct {
	repo   Repository
	audit  AuditPort
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, audit AuditPort, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cache: cache, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) Get(ctx context.Context, scope internalShared.Scope, id uuid.UUID) (JournalEntry, error) {
	if err := scope.Validate(); err != nil {
		return JournalEntry{}, err
	}
	return s.repo.Get(ctx, scope, id)
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, scope internalShared.Scope, filter ListFilter) ([]JournalEntry, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, scope, filter)
}

// Post validates and persists a new journal entry, then applies each linked
// line to its account balance.
func (s *Service) Post(ctx context.Context, scope internalShared.Scope, input PostingInput) (JournalEntry, error) {
	if err := scope.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	now := s.now().UTC()
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		lines, err := resolveLines(ctx, tx, scope, input.Lines)
		if err != nil {
			return err
		}
		seq, err := tx.NextEntryNumber(ctx, scope)
		if err != nil {
			return err
		}
		entry = JournalEntry{
			ID:            uuid.New(),
			EntryNumber:   FormatEntryNumber(seq),
			Date:          input.Date,
			Description:   input.Description,
			Reference:     input.Reference,
			ReferenceType: input.ReferenceType,
			ReferenceID:   input.ReferenceID,
			Lines:         lines,
			Status:        JournalStatusPosted,
			CreatedBy:     input.PostedBy,
			CreatedAt:     now,
		}
		if entry.Date.IsZero() {
			entry.Date = now
		}
		if strings.TrimSpace(entry.Reference) == "" {
			entry.Reference = entry.EntryNumber
		}
		entry.TotalDebit, entry.TotalCredit = totals(lines)
		if err := tx.InsertEntry(ctx, scope, entry); err != nil {
			return err
		}
		return applyLines(ctx, tx, scope, lines, false)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.afterMutation(ctx, scope, input.PostedBy, "journal.post", entry, map[string]any{
		"number":         entry.EntryNumber,
		"reference_type": string(entry.ReferenceType),
		"total":          entry.TotalDebit.StringFixed(2),
	})
	return entry, nil
}

// Update reverses every old line, applies the new lines, and replaces the
// entry contents in one transaction.
func (s *Service) Update(ctx context.Context, scope internalShared.Scope, id uuid.UUID, input UpdateInput) (JournalEntry, error) {
	if err := scope.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	now := s.now().UTC()
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, scope, id)
		if err != nil {
			return err
		}
		if err := applyLines(ctx, tx, scope, current.Lines, true); err != nil {
			return err
		}
		lines, err := resolveLines(ctx, tx, scope, input.Lines)
		if err != nil {
			return err
		}
		if err := applyLines(ctx, tx, scope, lines, false); err != nil {
			return err
		}
		entry = current
		entry.Lines = lines
		entry.TotalDebit, entry.TotalCredit = totals(lines)
		if input.Description != nil {
			entry.Description = *input.Description
		}
		if input.Reference != nil {
			entry.Reference = *input.Reference
		}
		if input.Date != nil {
			entry.Date = *input.Date
		}
		entry.UpdatedBy = input.UpdatedBy
		entry.UpdatedAt = &now
		return tx.ReplaceEntry(ctx, scope, entry)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.afterMutation(ctx, scope, input.UpdatedBy, "journal.update", entry, map[string]any{
		"number": entry.EntryNumber,
		"total":  entry.TotalDebit.StringFixed(2),
	})
	return entry, nil
}

// Delete reverses the entry's balance effects and removes it.
func (s *Service) Delete(ctx context.Context, scope internalShared.Scope, id uuid.UUID, actor string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	var removed JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, scope, id)
		if err != nil {
			return err
		}
		if err := applyLines(ctx, tx, scope, current.Lines, true); err != nil {
			return err
		}
		removed = current
		return tx.DeleteEntry(ctx, scope, id)
	})
	if err != nil {
		return err
	}
	s.afterMutation(ctx, scope, actor, "journal.delete", removed, map[string]any{
		"number": removed.EntryNumber,
	})
	return nil
}

func (s *Service) afterMutation(ctx context.Context, scope internalShared.Scope, actor, action string, entry JournalEntry, meta map[string]any) {
	if s.cache != nil {
		if err := s.cache.Bump(ctx, scope); err != nil {
			s.logger.Warn("report cache bump", slog.String("scope", scope.Key()), slog.Any("error", err))
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			Scope:    scope,
			ActorID:  actor,
			Action:   action,
			Entity:   "journal_entry",
			EntityID: entry.ID.String(),
			Meta:     meta,
			At:       s.now(),
		})
	}
}

// resolveLines links each line to its chart account. Unknown codes stay
// unlinked rather than failing the posting.
func resolveLines(ctx context.Context, tx TxRepository, scope internalShared.Scope, in []PostingLineInput) ([]JournalLine, error) {
	out := make([]JournalLine, 0, len(in))
	for _, line := range in {
		code := strings.TrimSpace(line.AccountCode)
		acc, ok, err := tx.ResolveAccount(ctx, scope, code)
		if err != nil {
			return nil, err
		}
		jl := JournalLine{
			AccountCode: code,
			AccountName: line.AccountName,
			Debit:       shared.Round2(line.Debit),
			Credit:      shared.Round2(line.Credit),
		}
		if ok {
			id := acc.ID
			jl.AccountID = &id
			if jl.AccountName == "" {
				jl.AccountName = acc.Name
			}
		}
		out = append(out, jl)
	}
	return out, nil
}

// applyLines moves balances by debit-credit per linked line, negated when reversing.
func applyLines(ctx context.Context, tx TxRepository, scope internalShared.Scope, lines []JournalLine, reverse bool) error {
	for _, line := range lines {
		if !line.Linked() {
			continue
		}
		delta := line.Delta()
		if reverse {
			delta = delta.Neg()
		}
		if err := tx.AdjustBalance(ctx, scope, line.AccountCode, delta); err != nil {
			return err
		}
	}
	return nil
}
