package journals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	Get(ctx context.Context, scope internalShared.Scope, id uuid.UUID) (JournalEntry, error)
	List(ctx context.Context, scope internalShared.Scope, filter ListFilter) ([]JournalEntry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	NextEntryNumber(ctx context.Context, scope internalShared.Scope) (int64, error)
	// ResolveAccount returns ok=false when the code is not in the chart.
	ResolveAccount(ctx context.Context, scope internalShared.Scope, code string) (accounts.Account, bool, error)
	AdjustBalance(ctx context.Context, scope internalShared.Scope, code string, delta decimal.Decimal) error
	InsertEntry(ctx context.Context, scope internalShared.Scope, entry JournalEntry) error
	GetEntryForUpdate(ctx context.Context, scope internalShared.Scope, id uuid.UUID) (JournalEntry, error)
	ReplaceEntry(ctx context.Context, scope internalShared.Scope, entry JournalEntry) error
	DeleteEntry(ctx context.Context, scope internalShared.Scope, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const entryColumns = `id, entry_number, date, description, reference, COALESCE(reference_type, ''), reference_id, total_debit, total_credit, status, COALESCE(created_by, ''), created_at, COALESCE(updated_by, ''), updated_at`

func (r *repository) Get(ctx context.Context, scope internalShared.Scope, id uuid.UUID) (JournalEntry, error) {
	return getEntry(ctx, r.pool, scope, id, false)
}

func (r *repository) List(ctx context.Context, scope internalShared.Scope, filter ListFilter) ([]JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE scope_key=$1
  AND ($2::timestamptz IS NULL OR date >= $2)
  AND ($3::timestamptz IS NULL OR date <= $3)
  AND ($4::text = '' OR reference_type = $4)
ORDER BY date DESC, entry_number DESC`, scope.Key(), filter.From, filter.To, string(filter.ReferenceType))
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (JournalEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}
	ids := make([]uuid.UUID, 0, len(entries))
	index := make(map[uuid.UUID]int, len(entries))
	for i, e := range entries {
		ids = append(ids, e.ID)
		index[e.ID] = i
	}
	lineRows, err := r.pool.Query(ctx, `SELECT entry_id, account_id, account_code, account_name, debit, credit
FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_no`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var entryID uuid.UUID
		line, err := scanLine(lineRows, &entryID)
		if err != nil {
			return nil, err
		}
		i := index[entryID]
		entries[i].Lines = append(entries[i].Lines, line)
	}
	return entries, lineRows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, accounts: accounts.NewRepository(tx)})
	})
}

type txRepository struct {
	tx       pgx.Tx
	accounts accounts.Repository
}

func (r *txRepository) NextEntryNumber(ctx context.Context, scope internalShared.Scope) (int64, error) {
	var next int64
	err := r.tx.QueryRow(ctx, `INSERT INTO ledger_sequences (scope_key, name, last_value) VALUES ($1, 'journal_entry', 1)
ON CONFLICT (scope_key, name) DO UPDATE SET last_value = ledger_sequences.last_value + 1
RETURNING last_value`, scope.Key()).Scan(&next)
	return next, err
}

func (r *txRepository) ResolveAccount(ctx context.Context, scope internalShared.Scope, code string) (accounts.Account, bool, error) {
	acc, err := r.accounts.FindByCode(ctx, scope, code)
	if err != nil {
		if errors.Is(err, shared.ErrAccountNotFound) {
			return accounts.Account{}, false, nil
		}
		return accounts.Account{}, false, err
	}
	return acc, true, nil
}

func (r *txRepository) AdjustBalance(ctx context.Context, scope internalShared.Scope, code string, delta decimal.Decimal) error {
	return r.accounts.AdjustBalance(ctx, scope, code, delta)
}

func (r *txRepository) InsertEntry(ctx context.Context, scope internalShared.Scope, e JournalEntry) error {
	if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entries (id, scope_key, entry_number, date, description, reference, reference_type, reference_id, total_debit, total_credit, status, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10,$11,NULLIF($12,''),$13)`,
		e.ID, scope.Key(), e.EntryNumber, e.Date, e.Description, e.Reference, string(e.ReferenceType), e.ReferenceID, e.TotalDebit, e.TotalCredit, e.Status, e.CreatedBy, e.CreatedAt); err != nil {
		return err
	}
	return r.insertLines(ctx, e.ID, e.Lines)
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, scope internalShared.Scope, id uuid.UUID) (JournalEntry, error) {
	return getEntry(ctx, r.tx, scope, id, true)
}

func (r *txRepository) ReplaceEntry(ctx context.Context, scope internalShared.Scope, e JournalEntry) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries
SET date=$3, description=$4, reference=$5, total_debit=$6, total_credit=$7, updated_by=NULLIF($8,''), updated_at=$9
WHERE scope_key=$1 AND id=$2`,
		scope.Key(), e.ID, e.Date, e.Description, e.Reference, e.TotalDebit, e.TotalCredit, e.UpdatedBy, e.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, e.ID); err != nil {
		return err
	}
	return r.insertLines(ctx, e.ID, e.Lines)
}

func (r *txRepository) DeleteEntry(ctx context.Context, scope internalShared.Scope, id uuid.UUID) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE scope_key=$1 AND id=$2`, scope.Key(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	return nil
}

func (r *txRepository) insertLines(ctx context.Context, entryID uuid.UUID, lines []JournalLine) error {
	batch := &pgx.Batch{}
	for i, line := range lines {
		batch.Queue(`INSERT INTO journal_lines (entry_id, line_no, account_id, account_code, account_name, debit, credit)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, entryID, i+1, line.AccountID, line.AccountCode, line.AccountName, line.Debit, line.Credit)
	}
	return r.tx.SendBatch(ctx, batch).Close()
}

func getEntry(ctx context.Context, conn db.DBTX, scope internalShared.Scope, id uuid.UUID, lock bool) (JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE scope_key=$1 AND id=$2`
	if lock {
		query += ` FOR UPDATE`
	}
	entry, err := scanEntry(conn.QueryRow(ctx, query, scope.Key(), id))
	if err != nil {
		if db.IsNoRows(err) {
			return JournalEntry{}, shared.ErrJournalNotFound
		}
		return JournalEntry{}, err
	}
	rows, err := conn.Query(ctx, `SELECT entry_id, account_id, account_code, account_name, debit, credit
FROM journal_lines WHERE entry_id=$1 ORDER BY line_no`, id)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var entryID uuid.UUID
		line, err := scanLine(rows, &entryID)
		if err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (JournalEntry, error) {
	var (
		e         JournalEntry
		refType   string
		updatedAt *time.Time
	)
	err := row.Scan(&e.ID, &e.EntryNumber, &e.Date, &e.Description, &e.Reference, &refType, &e.ReferenceID,
		&e.TotalDebit, &e.TotalCredit, &e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedBy, &updatedAt)
	e.ReferenceType = ReferenceType(refType)
	e.UpdatedAt = updatedAt
	return e, err
}

func scanLine(row rowScanner, entryID *uuid.UUID) (JournalLine, error) {
	var line JournalLine
	err := row.Scan(entryID, &line.AccountID, &line.AccountCode, &line.AccountName, &line.Debit, &line.Credit)
	return line, err
}
