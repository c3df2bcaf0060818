package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Types lists every account type in reporting order.
var Types = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether the type carries a debit normal balance.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account models a chart of accounts node.
type Account struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	IsSystem    bool            `json:"is_system"`
	IsActive    bool            `json:"is_active"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateInput describes a user-defined account.
type CreateInput struct {
	Code        string      `json:"code" validate:"required,max=20"`
	Name        string      `json:"name" validate:"required,max=120"`
	Type        AccountType `json:"type" validate:"required"`
	Category    string      `json:"category" validate:"max=60"`
	Description string      `json:"description" validate:"max=255"`
}

// NormalBalance is the balance signed so that positive means the account's
// normal side. Stored balances are always debit minus credit.
func (a Account) NormalBalance() decimal.Decimal {
	if a.Type.DebitNormal() {
		return a.Balance
	}
	return a.Balance.Neg()
}
