package memstore

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type accountRepo struct {
	store *Store
}

func (r accountRepo) Count(_ context.Context, scope internalShared.Scope) (int, error) {
	var n int
	err := r.store.read(scope, func(d *scopeData) error {
		n = len(d.accounts)
		return nil
	})
	return n, err
}

func (r accountRepo) InsertMany(_ context.Context, scope internalShared.Scope, rows []accounts.Account) error {
	return r.store.withTx(scope, func(d *scopeData) error {
		if err := r.store.fault("accounts.InsertMany"); err != nil {
			return err
		}
		for _, row := range rows {
			if _, exists := d.accounts[row.Code]; exists {
				continue
			}
			row.UpdatedAt = row.CreatedAt
			d.accounts[row.Code] = row
		}
		return nil
	})
}

func (r accountRepo) Insert(_ context.Context, scope internalShared.Scope, row accounts.Account) (accounts.Account, error) {
	err := r.store.withTx(scope, func(d *scopeData) error {
		if _, exists := d.accounts[row.Code]; exists {
			return shared.ErrDuplicateCode
		}
		row.UpdatedAt = row.CreatedAt
		d.accounts[row.Code] = row
		return nil
	})
	if err != nil {
		return accounts.Account{}, err
	}
	return row, nil
}

func (r accountRepo) FindByCode(_ context.Context, scope internalShared.Scope, code string) (accounts.Account, error) {
	var acc accounts.Account
	err := r.store.read(scope, func(d *scopeData) error {
		var ok bool
		acc, ok = d.accounts[code]
		if !ok {
			return shared.ErrAccountNotFound
		}
		return nil
	})
	return acc, err
}

func (r accountRepo) List(_ context.Context, scope internalShared.Scope) ([]accounts.Account, error) {
	var out []accounts.Account
	err := r.store.read(scope, func(d *scopeData) error {
		out = sortedAccounts(d)
		return nil
	})
	return out, err
}

func (r accountRepo) AdjustBalance(_ context.Context, scope internalShared.Scope, code string, delta decimal.Decimal) error {
	return r.store.withTx(scope, func(d *scopeData) error {
		return adjustAccount(d, code, delta)
	})
}

func (r accountRepo) ListScopes(context.Context) ([]internalShared.Scope, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	keys := make([]string, 0, len(r.store.scopes))
	for key, d := range r.store.scopes {
		if len(d.accounts) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	out := make([]internalShared.Scope, 0, len(keys))
	for _, key := range keys {
		scope, err := internalShared.ParseScopeKey(key)
		if err != nil {
			return nil, err
		}
		out = append(out, scope)
	}
	return out, nil
}

func adjustAccount(d *scopeData, code string, delta decimal.Decimal) error {
	acc, ok := d.accounts[code]
	if !ok {
		return shared.ErrAccountNotFound
	}
	acc.Balance = acc.Balance.Add(shared.Round2(delta))
	d.accounts[code] = acc
	return nil
}

func sortedAccounts(d *scopeData) []accounts.Account {
	out := make([]accounts.Account, 0, len(d.accounts))
	for _, acc := range d.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
