package subledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Repository stores sub-ledger rows and counterparty balances.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetCounterparty(ctx context.Context, scope internalShared.Scope, kind Kind, id int64) (Counterparty, error)
	ListCounterparties(ctx context.Context, scope internalShared.Scope, kind Kind) ([]Counterparty, error)
	// List returns movements oldest first; counterpartyID 0 means all.
	List(ctx context.Context, scope internalShared.Scope, kind Kind, counterpartyID int64) ([]Entry, error)
}

// TxRepository writes one movement and its balance effect atomically.
type TxRepository interface {
	// AdjustCounterpartyBalance returns the counterparty name, or
	// shared.ErrCounterpartyNotFound when no row matched.
	AdjustCounterpartyBalance(ctx context.Context, scope internalShared.Scope, kind Kind, id int64, delta decimal.Decimal) (string, error)
	InsertEntry(ctx context.Context, scope internalShared.Scope, entry Entry) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func ledgerTable(kind Kind) string {
	if kind == KindVendor {
		return "vendor_ledger"
	}
	return "customer_ledger"
}

func partyTable(kind Kind) string {
	if kind == KindVendor {
		return "suppliers"
	}
	return "customers"
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) GetCounterparty(ctx context.Context, scope internalShared.Scope, kind Kind, id int64) (Counterparty, error) {
	c := Counterparty{ID: id, Kind: kind}
	err := r.pool.QueryRow(ctx, `SELECT name, balance FROM `+partyTable(kind)+` WHERE scope_key=$1 AND id=$2`, scope.Key(), id).
		Scan(&c.Name, &c.Balance)
	if err != nil {
		if db.IsNoRows(err) {
			return Counterparty{}, shared.ErrCounterpartyNotFound
		}
		return Counterparty{}, err
	}
	return c, nil
}

func (r *repository) ListCounterparties(ctx context.Context, scope internalShared.Scope, kind Kind) ([]Counterparty, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, balance FROM `+partyTable(kind)+` WHERE scope_key=$1 ORDER BY id`, scope.Key())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Counterparty
	for rows.Next() {
		c := Counterparty{Kind: kind}
		if err := rows.Scan(&c.ID, &c.Name, &c.Balance); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context, scope internalShared.Scope, kind Kind, counterpartyID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, counterparty_id, name, date, description, debit, credit, COALESCE(reference_type, ''), reference_id, created_at
FROM `+ledgerTable(kind)+` WHERE scope_key=$1 AND ($2::bigint = 0 OR counterparty_id = $2)
ORDER BY created_at, id`, scope.Key(), counterpartyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e := Entry{Kind: kind}
		if err := rows.Scan(&e.ID, &e.CounterpartyID, &e.Name, &e.Date, &e.Description, &e.Debit, &e.Credit, &e.ReferenceType, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) AdjustCounterpartyBalance(ctx context.Context, scope internalShared.Scope, kind Kind, id int64, delta decimal.Decimal) (string, error) {
	var name string
	err := r.tx.QueryRow(ctx, `UPDATE `+partyTable(kind)+` SET balance = balance + $3 WHERE scope_key=$1 AND id=$2 RETURNING name`,
		scope.Key(), id, shared.Round2(delta)).Scan(&name)
	if err != nil {
		if db.IsNoRows(err) {
			return "", shared.ErrCounterpartyNotFound
		}
		return "", err
	}
	return name, nil
}

func (r *txRepository) InsertEntry(ctx context.Context, scope internalShared.Scope, e Entry) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO `+ledgerTable(e.Kind)+` (id, scope_key, counterparty_id, name, date, description, debit, credit, reference_type, reference_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),$10,$11)`,
		e.ID, scope.Key(), e.CounterpartyID, e.Name, e.Date, e.Description, e.Debit, e.Credit, e.ReferenceType, e.ReferenceID, e.CreatedAt)
	return err
}
