package memstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// AddSale stores a sale for reports and returns its id.
func (s *Store) AddSale(scope internalShared.Scope, sale reports.Sale) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale.ID == 0 {
		sale.ID = s.allocID()
	}
	d := s.data(scope)
	d.sales = append(d.sales, sale)
	return sale.ID
}

// AddPurchaseOrder stores a purchase order for reports and returns its id.
func (s *Store) AddPurchaseOrder(scope internalShared.Scope, po reports.PurchaseOrder) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if po.ID == 0 {
		po.ID = s.allocID()
	}
	d := s.data(scope)
	d.orders = append(d.orders, po)
	return po.ID
}

type sourceRepo struct {
	store *Store
}

func (r sourceRepo) SalesBetween(_ context.Context, scope internalShared.Scope, from, to time.Time) ([]reports.Sale, error) {
	var out []reports.Sale
	err := r.store.read(scope, func(d *scopeData) error {
		for _, sale := range d.sales {
			if sale.CreatedAt.Before(from) || sale.CreatedAt.After(to) {
				continue
			}
			out = append(out, sale)
		}
		return nil
	})
	sortSales(out)
	return out, err
}

func (r sourceRepo) OpenReceivables(_ context.Context, scope internalShared.Scope) ([]reports.Sale, error) {
	var out []reports.Sale
	err := r.store.read(scope, func(d *scopeData) error {
		for _, sale := range d.sales {
			if sale.IsOpenReceivable() {
				out = append(out, sale)
			}
		}
		return nil
	})
	sortSales(out)
	return out, err
}

func (r sourceRepo) OpenPayables(_ context.Context, scope internalShared.Scope) ([]reports.PurchaseOrder, error) {
	var out []reports.PurchaseOrder
	err := r.store.read(scope, func(d *scopeData) error {
		for _, po := range d.orders {
			if po.IsOpen() {
				out = append(out, po)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func sortSales(sales []reports.Sale) {
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].CreatedAt.Before(sales[j].CreatedAt) })
}

// IdempotencyStore keeps processed Idempotency-Key values per scope and module.
type IdempotencyStore struct {
	store *Store
}

func (s *IdempotencyStore) CheckAndInsert(_ context.Context, scope internalShared.Scope, key, module string) error {
	if key == "" || module == "" {
		return errors.New("idempotency key and module required")
	}
	return s.store.withTx(scope, func(d *scopeData) error {
		k := module + "|" + key
		if _, ok := d.idempotency[k]; ok {
			return internalShared.ErrIdempotencyConflict
		}
		d.idempotency[k] = struct{}{}
		return nil
	})
}

func (s *IdempotencyStore) Delete(_ context.Context, scope internalShared.Scope, key, module string) error {
	return s.store.withTx(scope, func(d *scopeData) error {
		delete(d.idempotency, module+"|"+key)
		return nil
	})
}

// AuditLog collects audit records in memory.
type AuditLog struct {
	store *Store
}

func (a *AuditLog) Record(_ context.Context, log internalShared.AuditLog) error {
	if err := log.Validate(); err != nil {
		return err
	}
	return a.store.withTx(log.Scope, func(d *scopeData) error {
		d.audit = append(d.audit, log)
		return nil
	})
}

// Entries returns the scope's audit records oldest first.
func (a *AuditLog) Entries(scope internalShared.Scope) []internalShared.AuditLog {
	var out []internalShared.AuditLog
	_ = a.store.read(scope, func(d *scopeData) error {
		out = append(out, d.audit...)
		return nil
	})
	return out
}
