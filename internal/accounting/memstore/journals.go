package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type journalRepo struct {
	store *Store
}

func (r journalRepo) Get(_ context.Context, scope internalShared.Scope, id uuid.UUID) (journals.JournalEntry, error) {
	var entry journals.JournalEntry
	err := r.store.read(scope, func(d *scopeData) error {
		var err error
		entry, err = getEntry(d, id)
		return err
	})
	return entry, err
}

func (r journalRepo) List(_ context.Context, scope internalShared.Scope, filter journals.ListFilter) ([]journals.JournalEntry, error) {
	var out []journals.JournalEntry
	err := r.store.read(scope, func(d *scopeData) error {
		for _, e := range d.entries {
			if filter.From != nil && e.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && e.Date.After(*filter.To) {
				continue
			}
			if filter.ReferenceType != "" && e.ReferenceType != filter.ReferenceType {
				continue
			}
			e.Lines = append([]journals.JournalLine(nil), e.Lines...)
			out = append(out, e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].EntryNumber > out[j].EntryNumber
	})
	return out, err
}

func (r journalRepo) WithTx(ctx context.Context, fn func(context.Context, journals.TxRepository) error) error {
	return r.store.tx(func() error {
		return fn(ctx, &journalTx{store: r.store})
	})
}

type journalTx struct {
	store *Store
}

func (t *journalTx) NextEntryNumber(_ context.Context, scope internalShared.Scope) (int64, error) {
	d := t.store.data(scope)
	d.sequence++
	return d.sequence, nil
}

func (t *journalTx) ResolveAccount(_ context.Context, scope internalShared.Scope, code string) (accounts.Account, bool, error) {
	acc, ok := t.store.data(scope).accounts[code]
	return acc, ok, nil
}

func (t *journalTx) AdjustBalance(_ context.Context, scope internalShared.Scope, code string, delta decimal.Decimal) error {
	if err := t.store.fault("journals.AdjustBalance"); err != nil {
		return err
	}
	return adjustAccount(t.store.data(scope), code, delta)
}

func (t *journalTx) InsertEntry(_ context.Context, scope internalShared.Scope, entry journals.JournalEntry) error {
	if err := t.store.fault("journals.InsertEntry"); err != nil {
		return err
	}
	entry.Lines = append([]journals.JournalLine(nil), entry.Lines...)
	t.store.data(scope).entries[entry.ID] = entry
	return nil
}

func (t *journalTx) GetEntryForUpdate(_ context.Context, scope internalShared.Scope, id uuid.UUID) (journals.JournalEntry, error) {
	return getEntry(t.store.data(scope), id)
}

func (t *journalTx) ReplaceEntry(_ context.Context, scope internalShared.Scope, entry journals.JournalEntry) error {
	if err := t.store.fault("journals.ReplaceEntry"); err != nil {
		return err
	}
	d := t.store.data(scope)
	if _, ok := d.entries[entry.ID]; !ok {
		return shared.ErrJournalNotFound
	}
	entry.Lines = append([]journals.JournalLine(nil), entry.Lines...)
	d.entries[entry.ID] = entry
	return nil
}

func (t *journalTx) DeleteEntry(_ context.Context, scope internalShared.Scope, id uuid.UUID) error {
	if err := t.store.fault("journals.DeleteEntry"); err != nil {
		return err
	}
	d := t.store.data(scope)
	if _, ok := d.entries[id]; !ok {
		return shared.ErrJournalNotFound
	}
	delete(d.entries, id)
	return nil
}

func getEntry(d *scopeData, id uuid.UUID) (journals.JournalEntry, error) {
	entry, ok := d.entries[id]
	if !ok {
		return journals.JournalEntry{}, shared.ErrJournalNotFound
	}
	entry.Lines = append([]journals.JournalLine(nil), entry.Lines...)
	return entry, nil
}
