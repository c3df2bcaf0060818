// Package memstore keeps the whole ledger in process memory. It backs the
// memory store driver and the service tests, and mirrors the Postgres
// repositories: balance increments are atomic, transactions roll back on
// error, and every scope is isolated.
package memstore

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type scopeData struct {
	accounts       map[string]accounts.Account
	entries        map[uuid.UUID]journals.JournalEntry
	sequence       int64
	customers      map[int64]subledger.Counterparty
	suppliers      map[int64]subledger.Counterparty
	customerLedger []subledger.Entry
	vendorLedger   []subledger.Entry
	sales          []reports.Sale
	orders         []reports.PurchaseOrder
	idempotency    map[string]struct{}
	audit          []internalShared.AuditLog
}

func newScopeData() *scopeData {
	return &scopeData{
		accounts:    make(map[string]accounts.Account),
		entries:     make(map[uuid.UUID]journals.JournalEntry),
		customers:   make(map[int64]subledger.Counterparty),
		suppliers:   make(map[int64]subledger.Counterparty),
		idempotency: make(map[string]struct{}),
	}
}

func (d *scopeData) clone() *scopeData {
	out := newScopeData()
	for k, v := range d.accounts {
		out.accounts[k] = v
	}
	for k, v := range d.entries {
		v.Lines = append([]journals.JournalLine(nil), v.Lines...)
		out.entries[k] = v
	}
	out.sequence = d.sequence
	for k, v := range d.customers {
		out.customers[k] = v
	}
	for k, v := range d.suppliers {
		out.suppliers[k] = v
	}
	out.customerLedger = append([]subledger.Entry(nil), d.customerLedger...)
	out.vendorLedger = append([]subledger.Entry(nil), d.vendorLedger...)
	out.sales = append([]reports.Sale(nil), d.sales...)
	out.orders = append([]reports.PurchaseOrder(nil), d.orders...)
	for k := range d.idempotency {
		out.idempotency[k] = struct{}{}
	}
	out.audit = append([]internalShared.AuditLog(nil), d.audit...)
	return out
}

// Store is a mutex-guarded ledger. A transaction holds the lock for its
// whole duration, so concurrent postings serialise.
type Store struct {
	mu     sync.Mutex
	scopes map[string]*scopeData
	nextID int64
	faults map[string]error
	// undo holds the pre-transaction copy of each scope the open
	// transaction has touched. A nil copy marks a scope the transaction
	// created. It is nil outside a transaction.
	undo map[string]*scopeData
}

func New() *Store {
	return &Store{scopes: make(map[string]*scopeData), faults: make(map[string]error)}
}

// data returns the scope's state, creating it on first use. Callers hold mu.
func (s *Store) data(scope internalShared.Scope) *scopeData {
	key := scope.Key()
	d, ok := s.scopes[key]
	if s.undo != nil {
		if _, seen := s.undo[key]; !seen {
			if ok {
				s.undo[key] = d.clone()
			} else {
				s.undo[key] = nil
			}
		}
	}
	if !ok {
		d = newScopeData()
		s.scopes[key] = d
	}
	return d
}

// FailNext makes the next call of op return err. Op names are
// "<port>.<Method>", for example "subledger.InsertEntry".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// fault consumes an injected failure. Callers hold mu.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// tx runs fn with the lock held. Scopes are copied the first time fn reaches
// them through data, and those copies are restored when fn fails or panics.
// Scopes fn never touches are not copied.
func (s *Store) tx(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = make(map[string]*scopeData)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("memstore: transaction panic: %v", p)
		}
		if err != nil {
			for key, prior := range s.undo {
				if prior == nil {
					delete(s.scopes, key)
					continue
				}
				s.scopes[key] = prior
			}
		}
		s.undo = nil
	}()
	return fn()
}

// withTx is tx narrowed to one scope.
func (s *Store) withTx(scope internalShared.Scope, fn func(d *scopeData) error) error {
	return s.tx(func() error {
		return fn(s.data(scope))
	})
}

// read runs fn with the lock held.
func (s *Store) read(scope internalShared.Scope, fn func(d *scopeData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data(scope))
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

// Accounts returns the chart of accounts port.
func (s *Store) Accounts() accounts.Repository { return accountRepo{store: s} }

// Journals returns the journal port.
func (s *Store) Journals() journals.Repository { return journalRepo{store: s} }

// Subledger returns the counterparty ledger port.
func (s *Store) Subledger() subledger.Repository { return subledgerRepo{store: s} }

// Sources returns the report source port.
func (s *Store) Sources() reports.SourceRepository { return sourceRepo{store: s} }

// Idempotency returns the Idempotency-Key store.
func (s *Store) Idempotency() *IdempotencyStore { return &IdempotencyStore{store: s} }

// Audit returns the audit log sink.
func (s *Store) Audit() *AuditLog { return &AuditLog{store: s} }
