package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// AgingItem is one open sale or purchase order in an aging report.
type AgingItem struct {
	Document         string          `json:"document"`
	CounterpartyID   *int64          `json:"counterparty_id,omitempty"`
	CounterpartyName string          `json:"counterparty_name"`
	Date             time.Time       `json:"date"`
	Total            decimal.Decimal `json:"total"`
	Paid             decimal.Decimal `json:"paid"`
	Due              decimal.Decimal `json:"due"`
	DaysOld          int             `json:"days_old"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
}

// AgingBucket sums the amount due of its items.
type AgingBucket struct {
	Items []AgingItem     `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Aging buckets open documents by whole days since creation.
type Aging struct {
	AsOf       time.Time       `json:"as_of"`
	Current    AgingBucket     `json:"current"`
	Days31To60 AgingBucket     `json:"days_31_60"`
	Days61To90 AgingBucket     `json:"days_61_90"`
	Over90     AgingBucket     `json:"over_90"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// ReceivableItems converts open credit sales into aging items.
func ReceivableItems(sales []Sale) []AgingItem {
	items := make([]AgingItem, 0, len(sales))
	for _, s := range sales {
		if !s.IsOpenReceivable() {
			continue
		}
		name := s.CustomerName
		if name == "" {
			name = "Unknown"
		}
		items = append(items, AgingItem{
			Document:         s.ReceiptNumber,
			CounterpartyID:   s.CustomerID,
			CounterpartyName: name,
			Date:             s.CreatedAt,
			Total:            s.TotalAmount,
			Paid:             s.AmountPaid,
			Due:              s.AmountDue,
			DueDate:          s.DueDate,
		})
	}
	return items
}

// PayableItems converts open purchase orders into aging items.
func PayableItems(orders []PurchaseOrder) []AgingItem {
	items := make([]AgingItem, 0, len(orders))
	for _, po := range orders {
		if !po.IsOpen() {
			continue
		}
		name := po.SupplierName
		if name == "" {
			name = "Unknown"
		}
		items = append(items, AgingItem{
			Document:         po.PONumber,
			CounterpartyID:   po.SupplierID,
			CounterpartyName: name,
			Date:             po.CreatedAt,
			Total:            po.Total,
			Paid:             po.AmountPaid,
			Due:              po.Due(),
			DueDate:          po.DueDate,
		})
	}
	return items
}

// BuildAging places items into 0-30, 31-60, 61-90 and 90+ day buckets.
func BuildAging(items []AgingItem, asOf time.Time) Aging {
	report := Aging{
		AsOf:       asOf,
		Current:    AgingBucket{Items: []AgingItem{}},
		Days31To60: AgingBucket{Items: []AgingItem{}},
		Days61To90: AgingBucket{Items: []AgingItem{}},
		Over90:     AgingBucket{Items: []AgingItem{}},
	}
	for _, item := range items {
		item.DaysOld = DaysBetween(item.Date, asOf)
		var bucket *AgingBucket
		switch {
		case item.DaysOld <= 30:
			bucket = &report.Current
		case item.DaysOld <= 60:
			bucket = &report.Days31To60
		case item.DaysOld <= 90:
			bucket = &report.Days61To90
		default:
			bucket = &report.Over90
		}
		bucket.Items = append(bucket.Items, item)
		bucket.Total = bucket.Total.Add(item.Due)
		report.GrandTotal = report.GrandTotal.Add(item.Due)
	}
	for _, bucket := range []*AgingBucket{&report.Current, &report.Days31To60, &report.Days61To90, &report.Over90} {
		bucket.Total = shared.Round2(bucket.Total)
	}
	report.GrandTotal = shared.Round2(report.GrandTotal)
	return report
}

// DaysBetween counts whole elapsed days, truncating partial days.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
