package memstore

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// AddCustomer registers a customer with a zero balance and returns its id.
func (s *Store) AddCustomer(scope internalShared.Scope, name string) int64 {
	return s.addCounterparty(scope, subledger.KindCustomer, name)
}

// AddSupplier registers a supplier with a zero balance and returns its id.
func (s *Store) AddSupplier(scope internalShared.Scope, name string) int64 {
	return s.addCounterparty(scope, subledger.KindVendor, name)
}

func (s *Store) addCounterparty(scope internalShared.Scope, kind subledger.Kind, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.allocID()
	parties(s.data(scope), kind)[id] = subledger.Counterparty{ID: id, Kind: kind, Name: name, Balance: decimal.Zero}
	return id
}

func parties(d *scopeData, kind subledger.Kind) map[int64]subledger.Counterparty {
	if kind == subledger.KindVendor {
		return d.suppliers
	}
	return d.customers
}

func ledger(d *scopeData, kind subledger.Kind) *[]subledger.Entry {
	if kind == subledger.KindVendor {
		return &d.vendorLedger
	}
	return &d.customerLedger
}

type subledgerRepo struct {
	store *Store
}

func (r subledgerRepo) WithTx(ctx context.Context, fn func(context.Context, subledger.TxRepository) error) error {
	return r.store.tx(func() error {
		return fn(ctx, &subledgerTx{store: r.store})
	})
}

func (r subledgerRepo) GetCounterparty(_ context.Context, scope internalShared.Scope, kind subledger.Kind, id int64) (subledger.Counterparty, error) {
	var c subledger.Counterparty
	err := r.store.read(scope, func(d *scopeData) error {
		var ok bool
		c, ok = parties(d, kind)[id]
		if !ok {
			return shared.ErrCounterpartyNotFound
		}
		return nil
	})
	return c, err
}

func (r subledgerRepo) ListCounterparties(_ context.Context, scope internalShared.Scope, kind subledger.Kind) ([]subledger.Counterparty, error) {
	var out []subledger.Counterparty
	err := r.store.read(scope, func(d *scopeData) error {
		for _, c := range parties(d, kind) {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r subledgerRepo) List(_ context.Context, scope internalShared.Scope, kind subledger.Kind, counterpartyID int64) ([]subledger.Entry, error) {
	var out []subledger.Entry
	err := r.store.read(scope, func(d *scopeData) error {
		for _, e := range *ledger(d, kind) {
			if counterpartyID == 0 || e.CounterpartyID == counterpartyID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

type subledgerTx struct {
	store *Store
}

func (t *subledgerTx) AdjustCounterpartyBalance(_ context.Context, scope internalShared.Scope, kind subledger.Kind, id int64, delta decimal.Decimal) (string, error) {
	if err := t.store.fault("subledger.AdjustCounterpartyBalance"); err != nil {
		return "", err
	}
	rows := parties(t.store.data(scope), kind)
	c, ok := rows[id]
	if !ok {
		return "", shared.ErrCounterpartyNotFound
	}
	c.Balance = c.Balance.Add(shared.Round2(delta))
	rows[id] = c
	return c.Name, nil
}

func (t *subledgerTx) InsertEntry(_ context.Context, scope internalShared.Scope, e subledger.Entry) error {
	if err := t.store.fault("subledger.InsertEntry"); err != nil {
		return err
	}
	rows := ledger(t.store.data(scope), e.Kind)
	*rows = append(*rows, e)
	return nil
}
