package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// SourceRepository reads the business documents reports recompute from.
// Reads use the pool without a snapshot.
type SourceRepository interface {
	SalesBetween(ctx context.Context, scope internalShared.Scope, from, to time.Time) ([]Sale, error)
	OpenReceivables(ctx context.Context, scope internalShared.Scope) ([]Sale, error)
	OpenPayables(ctx context.Context, scope internalShared.Scope) ([]PurchaseOrder, error)
}

type sourceRepository struct {
	pool *pgxpool.Pool
}

func NewSourceRepository(pool *pgxpool.Pool) SourceRepository {
	return &sourceRepository{pool: pool}
}

const saleColumns = `id, receipt_number, customer_id, COALESCE(customer_name, ''), total_amount, amount_paid, amount_due, payment_type, payment_status, due_date, created_at`

func (r *sourceRepository) SalesBetween(ctx context.Context, scope internalShared.Scope, from, to time.Time) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales
WHERE scope_key=$1 AND created_at >= $2 AND created_at <= $3
ORDER BY created_at`, scope.Key(), from, to)
	if err != nil {
		return nil, err
	}
	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Sale, error) {
		return scanSale(row)
	})
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, sales)
}

func (r *sourceRepository) OpenReceivables(ctx context.Context, scope internalShared.Scope) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales
WHERE scope_key=$1 AND payment_type=$2 AND payment_status IN ($3, $4)
ORDER BY created_at`, scope.Key(), PaymentTypeCredit, PaymentStatusUnpaid, PaymentStatusPartial)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Sale, error) {
		return scanSale(row)
	})
}

func (r *sourceRepository) OpenPayables(ctx context.Context, scope internalShared.Scope) ([]PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, po_number, supplier_id, COALESCE(supplier_name, ''), total, amount_paid, amount_due, payment_status, due_date, created_at
FROM purchase_orders
WHERE scope_key=$1 AND payment_status IN ($2, $3)
ORDER BY created_at`, scope.Key(), PaymentStatusUnpaid, PaymentStatusPartial)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (PurchaseOrder, error) {
		var po PurchaseOrder
		err := row.Scan(&po.ID, &po.PONumber, &po.SupplierID, &po.SupplierName, &po.Total, &po.AmountPaid, &po.AmountDue, &po.PaymentStatus, &po.DueDate, &po.CreatedAt)
		return po, err
	})
}

func (r *sourceRepository) attachItems(ctx context.Context, sales []Sale) ([]Sale, error) {
	if len(sales) == 0 {
		return sales, nil
	}
	ids := make([]int64, len(sales))
	index := make(map[int64]int, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		index[s.ID] = i
	}
	rows, err := r.pool.Query(ctx, `SELECT sale_id, cost, quantity FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			saleID int64
			item   SaleItem
		)
		if err := rows.Scan(&saleID, &item.Cost, &item.Quantity); err != nil {
			return nil, err
		}
		i := index[saleID]
		sales[i].Items = append(sales[i].Items, item)
	}
	return sales, rows.Err()
}

func scanSale(row pgx.CollectableRow) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.ReceiptNumber, &s.CustomerID, &s.CustomerName, &s.TotalAmount, &s.AmountPaid, &s.AmountDue, &s.PaymentType, &s.PaymentStatus, &s.DueDate, &s.CreatedAt)
	return s, err
}
