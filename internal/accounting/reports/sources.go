package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem is the part of a sale line needed to recompute COGS.
type SaleItem struct {
	Cost     decimal.Decimal `json:"cost"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Sale is the read-only view of a POS sale used by reports.
type Sale struct {
	ID            int64           `json:"id"`
	ReceiptNumber string          `json:"receipt_number"`
	CustomerID    *int64          `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	PaymentType   string          `json:"payment_type"`
	PaymentStatus string          `json:"payment_status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []SaleItem      `json:"items"`
}

// Cost is Σ item cost × quantity.
func (s Sale) Cost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Cost.Mul(item.Quantity))
	}
	return total
}

// PurchaseOrder is the read-only view of a supplier order used by reports.
// AmountDue is nil when the order never recorded a payment.
type PurchaseOrder struct {
	ID            int64            `json:"id"`
	PONumber      string           `json:"po_number"`
	SupplierID    *int64           `json:"supplier_id,omitempty"`
	SupplierName  string           `json:"supplier_name"`
	Total         decimal.Decimal  `json:"total"`
	AmountPaid    decimal.Decimal  `json:"amount_paid"`
	AmountDue     *decimal.Decimal `json:"amount_due,omitempty"`
	PaymentStatus string           `json:"payment_status"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Due falls back to the order total when no amount due was recorded.
func (p PurchaseOrder) Due() decimal.Decimal {
	if p.AmountDue != nil {
		return *p.AmountDue
	}
	return p.Total
}

// Open payment statuses counted by aging and the summary.
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentTypeCredit    = "credit"
)

// IsOpenReceivable reports whether the sale is an unpaid or partially paid credit sale.
func (s Sale) IsOpenReceivable() bool {
	return s.PaymentType == PaymentTypeCredit && isOpen(s.PaymentStatus)
}

// IsOpen reports whether the order still has an amount outstanding.
func (p PurchaseOrder) IsOpen() bool {
	return isOpen(p.PaymentStatus)
}

func isOpen(status string) bool {
	return status == PaymentStatusUnpaid || status == PaymentStatusPartial
}
