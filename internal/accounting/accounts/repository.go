package accounts

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Repository persists chart of accounts rows for a scope.
type Repository interface {
	Count(ctx context.Context, scope internalShared.Scope) (int, error)
	// InsertMany ignores rows whose code already exists in the scope.
	InsertMany(ctx context.Context, scope internalShared.Scope, rows []Account) error
	Insert(ctx context.Context, scope internalShared.Scope, row Account) (Account, error)
	FindByCode(ctx context.Context, scope internalShared.Scope, code string) (Account, error)
	List(ctx context.Context, scope internalShared.Scope) ([]Account, error)
	// AdjustBalance is the only way an account balance changes.
	AdjustBalance(ctx context.Context, scope internalShared.Scope, code string, delta decimal.Decimal) error
	ListScopes(ctx context.Context) ([]internalShared.Scope, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository builds a repository over a pool or an open transaction.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const accountColumns = `id, code, name, type, category, description, balance, is_system, is_active, COALESCE(created_by, ''), created_at, updated_at`

func (r *repository) Count(ctx context.Context, scope internalShared.Scope) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE scope_key=$1`, scope.Key()).Scan(&n)
	return n, err
}

func (r *repository) InsertMany(ctx context.Context, scope internalShared.Scope, rows []Account) error {
	for _, row := range rows {
		if _, err := r.db.Exec(ctx, `INSERT INTO accounts (id, scope_key, code, name, type, category, description, balance, is_system, is_active, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,''),$12,$12)
ON CONFLICT (scope_key, code) DO NOTHING`,
			row.ID, scope.Key(), row.Code, row.Name, row.Type, row.Category, row.Description, row.Balance, row.IsSystem, row.IsActive, row.CreatedBy, row.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Insert(ctx context.Context, scope internalShared.Scope, row Account) (Account, error) {
	_, err := r.db.Exec(ctx, `INSERT INTO accounts (id, scope_key, code, name, type, category, description, balance, is_system, is_active, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,''),$12,$12)`,
		row.ID, scope.Key(), row.Code, row.Name, row.Type, row.Category, row.Description, row.Balance, row.IsSystem, row.IsActive, row.CreatedBy, row.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	row.UpdatedAt = row.CreatedAt
	return row, nil
}

func (r *repository) FindByCode(ctx context.Context, scope internalShared.Scope, code string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE scope_key=$1 AND code=$2`, scope.Key(), code)
	acc, err := scanAccount(row)
	if err != nil {
		if db.IsNoRows(err) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return acc, nil
}

func (r *repository) List(ctx context.Context, scope internalShared.Scope) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE scope_key=$1 ORDER BY code`, scope.Key())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (r *repository) AdjustBalance(ctx context.Context, scope internalShared.Scope, code string, delta decimal.Decimal) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET balance = balance + $3, updated_at = NOW() WHERE scope_key=$1 AND code=$2`,
		scope.Key(), code, shared.Round2(delta))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) ListScopes(ctx context.Context) ([]internalShared.Scope, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT scope_key FROM accounts ORDER BY scope_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var scopes []internalShared.Scope
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		scope, err := internalShared.ParseScopeKey(key)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.Category, &a.Description, &a.Balance, &a.IsSystem, &a.IsActive, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
