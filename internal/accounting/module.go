// Package accounting assembles the ledger engine: chart of accounts, journals,
// counterparty sub-ledgers, posting rules, reports and integrity checks over
// one set of storage ports.
package accounting

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/integrity"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/memstore"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/posting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Stores groups the persistence ports one deployment uses.
type Stores struct {
	Accounts    accounts.Repository
	Journals    journals.Repository
	Subledger   subledger.Repository
	Sources     reports.SourceRepository
	Idempotency posting.IdempotencyPort
	Audit       journals.AuditPort
}

// PostgresStores backs every port with the pgx pool.
func PostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Accounts:    accounts.NewRepository(pool),
		Journals:    journals.NewRepository(pool),
		Subledger:   subledger.NewRepository(pool),
		Sources:     reports.NewSourceRepository(pool),
		Idempotency: internalShared.NewIdempotencyStore(pool),
		Audit:       internalShared.NewAuditLogger(pool),
	}
}

// MemoryStores backs every port with an in-process store.
func MemoryStores(store *memstore.Store) Stores {
	return Stores{
		Accounts:    store.Accounts(),
		Journals:    store.Journals(),
		Subledger:   store.Subledger(),
		Sources:     store.Sources(),
		Idempotency: store.Idempotency(),
		Audit:       store.Audit(),
	}
}

// Options carries the optional collaborators of the module.
type Options struct {
	// Cache holds trial balance and balance sheet results; nil disables caching.
	Cache   *reports.Cache
	Metrics posting.Recorder
	Logger  *slog.Logger
}

// Module is the assembled set of ledger services.
type Module struct {
	Accounts  *accounts.Service
	Journals  *journals.Service
	Subledger *subledger.Service
	Posting   *posting.Service
	Reports   *reports.Service
	Integrity *integrity.Checker

	idempotency posting.IdempotencyPort
	logger      *slog.Logger
}

// NewModule wires the services over stores. Journal mutations bump the report
// cache version for their scope.
func NewModule(stores Stores, opts Options) *Module {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Module{
		Accounts:    accounts.NewService(stores.Accounts),
		Subledger:   subledger.NewService(stores.Subledger),
		idempotency: stores.Idempotency,
		logger:      logger,
	}
	m.Journals = journals.NewService(stores.Journals, stores.Audit, opts.Cache, logger.With(slog.String("module", "journals")))
	m.Posting = posting.NewService(m.Journals, m.Subledger, opts.Metrics, logger.With(slog.String("module", "posting")))
	m.Reports = reports.NewService(m.Accounts, stores.Sources, opts.Cache, logger.With(slog.String("module", "reports")))
	m.Integrity = integrity.NewChecker(m.Accounts, m.Journals, m.Subledger, logger.With(slog.String("module", "integrity")))
	return m
}
